package detail

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"casaleon/server/internal/catalog"
)

// Service resolves a property id into a view.
type Service struct {
	source   catalog.Source
	renderer *Renderer
	logger   *logrus.Logger
}

func NewService(source catalog.Source, renderer *Renderer, logger *logrus.Logger) *Service {
	return &Service{source: source, renderer: renderer, logger: logger}
}

func (s *Service) Renderer() *Renderer { return s.renderer }

// View always returns something displayable. When the lookup fails the
// fallback view is returned together with the cause, which callers may log
// but must not show.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	p, err := catalog.Find(ctx, s.source, id)
	if err != nil {
		entry := s.logger.WithError(err).WithField("property_id", id)
		if errors.Is(err, catalog.ErrMissingID) || errors.Is(err, catalog.ErrNotFound) {
			entry.Info("Property not available")
		} else {
			entry.Error("Failed to load catalog")
		}
		return s.renderer.NotAvailable(), err
	}
	return s.renderer.Render(p), nil
}
