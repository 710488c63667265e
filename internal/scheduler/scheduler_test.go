package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"casaleon/server/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeOlderThan(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Load(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	props, _ := args.Get(0).([]models.Property)
	return props, args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestJobType_String(t *testing.T) {
	assert.Equal(t, "purge", JobTypePurge.String())
	assert.Equal(t, "catalog_check", JobTypeCatalogCheck.String())
	assert.Equal(t, "unknown", JobType(9).String())
}

func TestScheduler_ExecuteScheduledJobs(t *testing.T) {
	now := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)

	purger := &MockPurger{}
	purger.On("PurgeOlderThan", now.AddDate(0, 0, -180)).Return(int64(4), nil).Once()
	source := &MockSource{}
	source.On("Load", mock.Anything).Return([]models.Property{{ID: "1"}}, nil).Twice()

	s := NewScheduler(purger, source, 180, quietLogger())
	s.now = func() time.Time { return now }

	// purge hour: purge and catalog check
	s.executeScheduledJobs(now)
	// other hour: catalog check only
	s.executeScheduledJobs(now.Add(time.Hour))
	// not on the hour: nothing
	s.executeScheduledJobs(now.Add(90 * time.Minute))

	purger.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestScheduler_Failures(t *testing.T) {
	now := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)

	purger := &MockPurger{}
	purger.On("PurgeOlderThan", mock.Anything).Return(int64(0), errors.New("database is locked")).Once()
	source := &MockSource{}
	source.On("Load", mock.Anything).Return(nil, errors.New("status 500")).Once()

	s := NewScheduler(purger, source, 30, quietLogger())
	s.now = func() time.Time { return now }

	assert.NotPanics(t, func() { s.executeScheduledJobs(now) })
	purger.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestScheduler_ZeroRetentionDisablesPurge(t *testing.T) {
	purger := &MockPurger{}
	s := NewScheduler(purger, nil, 0, quietLogger())

	s.executeScheduledJobs(time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC))
	purger.AssertNotCalled(t, "PurgeOlderThan", mock.Anything)
}

func TestScheduler_StartStop(t *testing.T) {
	purger := &MockPurger{}
	purger.On("PurgeOlderThan", mock.Anything).Return(int64(0), nil)

	s := NewScheduler(purger, nil, 180, quietLogger())
	s.tick = 10 * time.Millisecond

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// startup run
	purger.AssertCalled(t, "PurgeOlderThan", mock.Anything)
}
