package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
	"casaleon/server/internal/queue"
)

// Notifier delivers a lead to one outside channel
type Notifier interface {
	Name() string
	Enabled() bool
	Notify(ctx context.Context, n models.Notification) error
}

// Journal stores accepted leads
type Journal interface {
	SaveLead(record *models.LeadRecord) error
	MarkDelivered(id string) error
}

// LeadProcessor takes notifications off the queue, journals them and fans
// them out to the notifiers. Failures are logged and never retried.
type LeadProcessor struct {
	journal   Journal
	notifiers []Notifier
	queue     *queue.NotificationQueue
	timeout   time.Duration
	logger    *logrus.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewLeadProcessor creates a processor. journal may be nil to skip the
// local journal.
func NewLeadProcessor(journal Journal, q *queue.NotificationQueue, notifiers []Notifier, timeout time.Duration, logger *logrus.Logger) *LeadProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &LeadProcessor{
		journal:   journal,
		notifiers: notifiers,
		queue:     q,
		timeout:   timeout,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start subscribes the processor to the queue
func (p *LeadProcessor) Start() {
	p.queue.Subscribe(p.Process)

	names := make([]string, 0, len(p.notifiers))
	for _, n := range p.notifiers {
		if n.Enabled() {
			names = append(names, n.Name())
		}
	}
	p.logger.WithFields(logrus.Fields{
		"notifiers": names,
		"journal":   p.journal != nil,
	}).Info("Lead processor started")
}

// Stop cancels in-flight deliveries
func (p *LeadProcessor) Stop() {
	p.cancel()
}

// Process handles a single notification
func (p *LeadProcessor) Process(n models.Notification) error {
	log := p.logger.WithFields(logrus.Fields{
		"lead_id": n.LeadID,
		"kind":    n.Kind,
	})

	if p.journal != nil {
		record, err := RecordFor(n)
		if err != nil {
			log.WithError(err).Error("Failed to build lead record")
		} else if err := p.journal.SaveLead(record); err != nil {
			log.WithError(err).Error("Failed to journal lead")
		}
	}

	delivered := false
	for _, notifier := range p.notifiers {
		if !notifier.Enabled() {
			continue
		}

		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		err := notifier.Notify(ctx, n)
		cancel()

		if err != nil {
			log.WithError(err).WithField("notifier", notifier.Name()).Warn("Lead notification failed")
			continue
		}
		delivered = true
		log.WithField("notifier", notifier.Name()).Info("Lead notification sent")
	}

	if delivered && p.journal != nil {
		if err := p.journal.MarkDelivered(n.LeadID); err != nil {
			log.WithError(err).Warn("Failed to mark lead delivered")
		}
	}
	return nil
}

// RecordFor builds the journal row of a notification
func RecordFor(n models.Notification) (*models.LeadRecord, error) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	createdAt := n.At
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &models.LeadRecord{
		ID:          n.LeadID,
		Kind:        n.Kind,
		Subject:     n.Subject,
		Name:        stringField(n.Payload, "name"),
		Phone:       stringField(n.Payload, "phone"),
		ContactTime: stringField(n.Payload, "contact_time"),
		PropertyID:  stringField(n.Payload, "property_id"),
		Payload:     string(payload),
		CreatedAt:   createdAt,
	}, nil
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
