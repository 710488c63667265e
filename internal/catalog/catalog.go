// Package catalog loads the static property catalog, a flat JSON array of
// records. Every load goes back to the origin; nothing is cached.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
)

var (
	ErrMissingID = errors.New("property id is missing")
	ErrNotFound  = errors.New("property not found")
)

// Catalogs larger than this are rejected.
const maxCatalogBytes = 8 << 20

// Source loads the full catalog.
type Source interface {
	Load(ctx context.Context) ([]models.Property, error)
}

// FileSource reads the catalog from a local file on every call.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]models.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return decode(f)
}

// HTTPSource fetches the catalog from a URL, asking every cache on the way to
// revalidate.
type HTTPSource struct {
	URL    string
	client *retryablehttp.Client
}

// NewHTTPSource builds a source that does not retry. Callers that want
// retries can raise Client().RetryMax.
func NewHTTPSource(url string, timeout time.Duration, logger *logrus.Logger) *HTTPSource {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	if logger != nil {
		rc.Logger = logger
	}

	return &HTTPSource{URL: url, client: rc}
}

func (s *HTTPSource) Client() *retryablehttp.Client { return s.client }

func (s *HTTPSource) Load(ctx context.Context) ([]models.Property, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
	}
	return decode(resp.Body)
}

func decode(r io.Reader) ([]models.Property, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(data) > maxCatalogBytes {
		return nil, errors.New("catalog payload too large")
	}

	var properties []models.Property
	if err := json.Unmarshal(data, &properties); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return properties, nil
}

// Find loads the catalog and returns the record whose id equals id when both
// are compared as text.
func Find(ctx context.Context, src Source, id string) (*models.Property, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}

	properties, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range properties {
		if properties[i].ID.String() == id {
			return &properties[i], nil
		}
	}
	return nil, ErrNotFound
}

// New picks the HTTP source when url is set, the file source otherwise.
func New(path, url string, timeout time.Duration, logger *logrus.Logger) Source {
	if url != "" {
		return NewHTTPSource(url, timeout, logger)
	}
	return NewFileSource(path)
}
