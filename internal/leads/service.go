package leads

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
)

// Dispatcher hands notifications to background delivery without waiting.
type Dispatcher interface {
	Push(n models.Notification) error
}

// Receipt is returned for an accepted submission. Reset holds the values the
// form goes back to.
type Receipt struct {
	LeadID  string `json:"lead_id"`
	Kind    string `json:"kind"`
	Preview string `json:"preview"`
	Reset   any    `json:"reset"`
}

type Service struct {
	dispatcher Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

func NewService(dispatcher Dispatcher, logger *logrus.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitOwner validates the owner form. On success the lead is dispatched
// and the receipt carries the preview; delivery problems are only logged.
func (s *Service) SubmitOwner(form OwnerForm) (*Receipt, error) {
	f := form.Normalize()
	if err := f.Validate(); err != nil {
		s.logger.WithError(err).Debug("Owner lead rejected")
		return nil, err
	}

	preview := f.Preview()
	id := s.dispatch(models.LeadKindOwner, f.Subject(), preview, f.Payload())
	return &Receipt{
		LeadID:  id,
		Kind:    models.LeadKindOwner,
		Preview: preview,
		Reset:   DefaultOwnerForm(),
	}, nil
}

// SubmitVisit validates the visit form and dispatches it like SubmitOwner.
func (s *Service) SubmitVisit(form VisitForm) (*Receipt, error) {
	f := form.Normalize()
	if err := f.Validate(); err != nil {
		s.logger.WithError(err).Debug("Visit lead rejected")
		return nil, err
	}

	preview := f.Preview()
	id := s.dispatch(models.LeadKindVisit, f.Subject(), preview, f.Payload())
	return &Receipt{
		LeadID:  id,
		Kind:    models.LeadKindVisit,
		Preview: preview,
		Reset:   DefaultVisitForm(form.PropertyID, form.PropertyTitle),
	}, nil
}

func (s *Service) dispatch(kind, subject, summary string, payload map[string]any) string {
	n := models.Notification{
		LeadID:  uuid.NewString(),
		Kind:    kind,
		Subject: subject,
		Summary: summary,
		Payload: payload,
		At:      s.now(),
	}

	if err := s.dispatcher.Push(n); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"lead_id": n.LeadID,
			"kind":    kind,
		}).Warn("Failed to dispatch lead notification")
	} else {
		s.logger.WithFields(logrus.Fields{
			"lead_id": n.LeadID,
			"kind":    kind,
		}).Info("Lead accepted")
	}
	return n.LeadID
}
