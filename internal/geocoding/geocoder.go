package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"casaleon/server/internal/models"
	"casaleon/server/internal/textnorm"
)

const (
	defaultEndpoint = "https://nominatim.openstreetmap.org/search"
	cacheFileName   = "geocode_cache.json"
	userAgent       = "CasaLeon Catalog Geocoder/1.0"
)

type Geocoder struct {
	logger    *logrus.Logger
	cacheDir  string
	cache     map[string][]float64
	cacheLock sync.RWMutex
	client    *retryablehttp.Client
	limiter   *rate.Limiter
	endpoint  string
}

func NewGeocoder(logger *logrus.Logger, cacheDir string) *Geocoder {
	// Create cache directory if it doesn't exist
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logger.WithError(err).Warn("Could not create geocode cache directory")
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = time.Second
	rc.RetryWaitMax = 3 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	g := &Geocoder{
		logger:   logger,
		cacheDir: cacheDir,
		cache:    make(map[string][]float64),
		client:   rc,
		// Nominatim usage policy: at most one request per second
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		endpoint: defaultEndpoint,
	}

	// Load cache from file
	g.loadCache()

	return g
}

// SetEndpoint points the geocoder at another Nominatim-compatible search URL
// and request rate
func (g *Geocoder) SetEndpoint(endpoint string, limit rate.Limit) {
	g.endpoint = endpoint
	g.limiter = rate.NewLimiter(limit, 1)
}

func (g *Geocoder) loadCache() {
	cacheFile := filepath.Join(g.cacheDir, cacheFileName)
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warnf("Could not load geocode cache: %v", err)
		}
		return
	}

	if err := json.Unmarshal(data, &g.cache); err != nil {
		g.logger.Errorf("Failed to parse geocode cache: %v", err)
		return
	}

	g.logger.Infof("Loaded %d cached addresses", len(g.cache))
}

// SaveCache writes the cache to disk
func (g *Geocoder) SaveCache() error {
	g.cacheLock.RLock()
	data, err := json.Marshal(g.cache)
	g.cacheLock.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal geocode cache: %w", err)
	}

	cacheFile := filepath.Join(g.cacheDir, cacheFileName)
	if err := os.WriteFile(cacheFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to save geocode cache: %w", err)
	}

	g.logger.Info("Saved geocode cache to disk")
	return nil
}

type nominatimResponse []struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GeocodeAddress resolves a free-text Mexican address to (lat, lng)
func (g *Geocoder) GeocodeAddress(ctx context.Context, address string) (float64, float64, error) {
	cacheKey := textnorm.Normalize(address)
	if cacheKey == "" {
		return 0, 0, fmt.Errorf("empty address")
	}

	// Check cache first
	g.cacheLock.RLock()
	coords, ok := g.cache[cacheKey]
	g.cacheLock.RUnlock()
	if ok {
		if len(coords) == 2 {
			g.logger.WithFields(logrus.Fields{
				"address":   address,
				"latitude":  coords[0],
				"longitude": coords[1],
				"source":    "cache",
			}).Debug("Found coordinates in cache")
			return coords[0], coords[1], nil
		}
		return 0, 0, fmt.Errorf("invalid cached coordinates")
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	g.logger.WithField("address", address).Info("Geocoding address with Nominatim")

	params := url.Values{
		"q":            []string{address + ", México"},
		"format":       []string{"json"},
		"limit":        []string{"1"},
		"countrycodes": []string{"mx"},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("address", address).Error("Geocoding request failed")
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read response: %w", err)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) == 0 {
		g.logger.WithField("address", address).Warn("No results found")
		return 0, 0, fmt.Errorf("no results found for address: %s", address)
	}

	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", result[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", result[0].Lon, err)
	}

	g.logger.WithFields(logrus.Fields{
		"address":   address,
		"latitude":  lat,
		"longitude": lon,
		"source":    "nominatim",
	}).Info("Successfully geocoded address")

	// Cache the result
	g.cacheLock.Lock()
	g.cache[cacheKey] = []float64{lat, lon}
	g.cacheLock.Unlock()

	return lat, lon, nil
}

// FillMissing geocodes every listing that has no coordinates, using its map
// query or else its address. It returns how many listings were updated;
// listings that fail are logged and left unchanged.
func (g *Geocoder) FillMissing(ctx context.Context, properties []models.Property) (int, error) {
	updated := 0
	for i := range properties {
		p := &properties[i]
		if p.HasCoordinates() {
			continue
		}

		query := strings.TrimSpace(p.MapQuery)
		if query == "" {
			query = strings.TrimSpace(p.Address)
		}
		if query == "" {
			continue
		}

		lat, lng, err := g.GeocodeAddress(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			g.logger.WithError(err).WithField("property_id", p.ID.String()).Warn("Could not geocode listing")
			continue
		}
		p.Latitude = &lat
		p.Longitude = &lng
		updated++
	}

	if updated > 0 {
		if err := g.SaveCache(); err != nil {
			g.logger.WithError(err).Error("Failed to save geocode cache")
		}
	}
	return updated, nil
}
