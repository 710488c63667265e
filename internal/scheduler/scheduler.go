package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"casaleon/server/internal/catalog"
)

// JobType represents the different maintenance jobs
type JobType int

const (
	JobTypePurge JobType = iota
	JobTypeCatalogCheck
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypePurge:
		return "purge"
	case JobTypeCatalogCheck:
		return "catalog_check"
	default:
		return "unknown"
	}
}

// Purger deletes journal rows older than a cutoff
type Purger interface {
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

// Scheduler runs the lead-journal retention purge every night at PurgeHour
// and checks that the catalog still loads every hour
type Scheduler struct {
	purger    Purger
	source    catalog.Source
	retention time.Duration
	purgeHour int
	logger    *logrus.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	jobMutex  sync.Mutex // Ensures sequential job execution
	tick      time.Duration
	now       func() time.Time
}

// NewScheduler creates a new scheduler. A nil purger or a zero retention
// disables the purge; a nil source disables the catalog check.
func NewScheduler(purger Purger, source catalog.Source, retentionDays int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		purger:    purger,
		source:    source,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		purgeHour: 3,
		logger:    logger,
		stopChan:  make(chan struct{}),
		tick:      time.Minute,
		now:       time.Now,
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.logger.Info("Running startup maintenance jobs")
	s.runPurge()
	s.runCatalogCheck()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs that are scheduled for the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	if t.Minute() != 0 {
		return
	}

	if t.Hour() == s.purgeHour {
		s.runPurge()
	}
	s.runCatalogCheck()
}

func (s *Scheduler) runPurge() {
	if s.purger == nil || s.retention <= 0 {
		return
	}

	cutoff := s.now().Add(-s.retention)
	fields := logrus.Fields{
		"job_type": JobTypePurge.String(),
		"cutoff":   cutoff.Format(time.RFC3339),
	}

	purged, err := s.purger.PurgeOlderThan(cutoff)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Maintenance job failed")
		return
	}
	s.logger.WithFields(fields).WithField("purged", purged).Info("Maintenance job completed successfully")
}

func (s *Scheduler) runCatalogCheck() {
	if s.source == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fields := logrus.Fields{"job_type": JobTypeCatalogCheck.String()}
	properties, err := s.source.Load(ctx)
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Catalog cannot be loaded; detail pages will show the fallback")
		return
	}
	s.logger.WithFields(fields).WithField("properties", len(properties)).Info("Maintenance job completed successfully")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
