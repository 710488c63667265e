package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casaleon/server/config"
	"casaleon/server/internal/database"
	"casaleon/server/internal/detail"
	"casaleon/server/internal/models"
)

const testCatalog = `[
  {"id": 1, "title": "Casa Jardines", "address": "Paseo del Moral 145, León, Gto.", "operation": "comprar", "type": "casa", "price": 3850000},
  {"id": 2, "title": "Depa Zona Piel", "address": "Blvd. López Mateos 2010, León, Guanajuato", "operation": "rentar", "type": "departamento"}
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, writeCatalog(t, testCatalog), args...)
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "properties.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func executeWith(t *testing.T, catalogPath string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("CATALOG_PATH", catalogPath)
	t.Setenv("LOG_LEVEL", "panic")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFilterCommand(t *testing.T) {
	out, err := execute(t, "filter", "--want", "rent")
	require.NoError(t, err)

	var result struct {
		Mode  string `json:"mode"`
		Cards []struct {
			ID string `json:"id"`
		} `json:"cards"`
		HiddenCount int `json:"hidden_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "listings", result.Mode)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "2", result.Cards[0].ID)
	assert.Equal(t, 1, result.HiddenCount)
}

func TestDetailCommand(t *testing.T) {
	out, err := execute(t, "detail", "1")
	require.NoError(t, err)

	var view detail.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "Casa Jardines", view.Title)
	assert.Equal(t, "$3,850,000", view.Price)

	out, err = execute(t, "detail", "404")
	assert.Error(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "Propiedad no disponible", view.Title)
}

func TestGeocodeCommandWrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat": "21.15", "lon": "-101.7"}]`))
	}))
	t.Cleanup(server.Close)

	path := writeCatalog(t, `[
  {"id": 1, "slug": "casa-jardines", "title": "Casa Jardines", "lat": 21.12, "lng": -101.68},
  {"id": 2, "slug": "depto-centro", "title": "Depto Centro", "address": "Centro, León, Gto.", "video": "https://example.com/b.mp4"}
]`)

	_, err := executeWith(t, path, "geocode", "--write", "--endpoint", server.URL, "--cache-dir", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, float64(2), records[1]["id"])
	assert.Equal(t, "depto-centro", records[1]["slug"])
	assert.Equal(t, "https://example.com/b.mp4", records[1]["video"])
	assert.Equal(t, 21.15, records[1]["lat"])
	assert.Equal(t, -101.7, records[1]["lng"])
	assert.Equal(t, "casa-jardines", records[0]["slug"])
	assert.Equal(t, 21.12, records[0]["lat"])
}

func TestLeadsCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "leads.db")
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	now := time.Now()
	require.NoError(t, db.SaveLead(&models.LeadRecord{ID: "a", Kind: models.LeadKindOwner, Name: "Ana", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, db.SaveLead(&models.LeadRecord{ID: "b", Kind: models.LeadKindVisit, Name: "Luis", PropertyID: "7", CreatedAt: now}))
	require.NoError(t, db.Close())
	t.Setenv("LEADS_DB_PATH", dbPath)

	var result struct {
		Total int64               `json:"total"`
		Leads []models.LeadRecord `json:"leads"`
	}

	out, err := execute(t, "leads", "--limit", "0", "--kind", "")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Leads, 2)
	assert.Equal(t, "b", result.Leads[0].ID)

	out, err = execute(t, "leads", "--kind", "owner", "--limit", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Ana", result.Leads[0].Name)

	_, err = execute(t, "leads", "--kind", "spam")
	assert.ErrorContains(t, err, "unknown lead kind")
}

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"

	l := newLogger(cfg)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	cfg.Log.Level = "verbose"
	cfg.Log.Format = "json"
	l = newLogger(cfg)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}
