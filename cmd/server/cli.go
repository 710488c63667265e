package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"casaleon/server/internal/catalog"
	"casaleon/server/internal/contact"
	"casaleon/server/internal/database"
	"casaleon/server/internal/deeplink"
	"casaleon/server/internal/detail"
	"casaleon/server/internal/filter"
	"casaleon/server/internal/geocoding"
	"casaleon/server/internal/models"
)

var (
	filterWant     string
	filterType     string
	filterLocation string
	filterGo       string

	geocodeWrite    bool
	geocodeCacheDir string
	geocodeEndpoint string

	leadsLimit int
	leadsKind  string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the listings visible for a search",
	RunE:  runFilter,
}

var detailCmd = &cobra.Command{
	Use:   "detail <id>",
	Short: "Print the detail view of a property",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Fill missing coordinates of the catalog file",
	Long: `Geocodes every listing of CATALOG_PATH that has no lat/lng, using its
map_query or its address. Without --write the updated catalog is printed;
with --write only lat/lng of the geocoded records change in the file.`,
	RunE: runGeocode,
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Print the newest leads of the local journal",
	RunE:  runLeads,
}

func init() {
	filterCmd.Flags().StringVar(&filterWant, "want", "", "buy, rent or sell (default buy)")
	filterCmd.Flags().StringVar(&filterType, "type", "", "property type (default any)")
	filterCmd.Flags().StringVar(&filterLocation, "location", "", "free-text location")
	filterCmd.Flags().StringVar(&filterGo, "go", "", "deep-link operation, overrides --want")

	geocodeCmd.Flags().BoolVar(&geocodeWrite, "write", false, "write the catalog file in place")
	geocodeCmd.Flags().StringVar(&geocodeCacheDir, "cache-dir", filepath.Join(os.TempDir(), "casaleon", "geocode_cache"), "geocode cache directory")
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 20, "maximum leads to print, 0 for all")
	leadsCmd.Flags().StringVar(&leadsKind, "kind", "", "owner or visit (default both)")

	geocodeCmd.Flags().StringVar(&geocodeEndpoint, "endpoint", "", "Nominatim-compatible search URL (default OpenStreetMap)")
}

func runFilter(cmd *cobra.Command, args []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	properties, err := newSource().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	criteria := deeplink.Resolve("", filterGo).Apply(filter.ParseCriteria(filterWant, filterType, filterLocation))
	decision := filter.New(rules).Decide(criteria, models.CardsFor(properties))
	linker := contact.NewLinker(cfg.Contact.WhatsAppNumber)

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"mode":         decision.Mode,
		"criteria":     decision.Criteria,
		"cards":        decision.VisibleCards(),
		"hidden_count": decision.HiddenCount(),
		"contact_url":  linker.ForSearch(string(criteria.Want), criteria.Type, criteria.Location),
	})
}

// runDetail prints the view; an unavailable property prints the fallback
// and fails the command
func runDetail(cmd *cobra.Command, args []string) error {
	linker := contact.NewLinker(cfg.Contact.WhatsAppNumber)
	service := detail.NewService(newSource(), newRenderer(linker), logger)

	view, viewErr := service.View(cmd.Context(), args[0])
	if err := printJSON(cmd.OutOrStdout(), view); err != nil {
		return err
	}
	if viewErr != nil {
		return fmt.Errorf("property %q not available: %w", args[0], viewErr)
	}
	return nil
}

func runGeocode(cmd *cobra.Command, args []string) error {
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}

	properties, err := catalog.NewFileSource(cfg.Catalog.Path).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	geocoder := geocoding.NewGeocoder(logger, geocodeCacheDir)
	if geocodeEndpoint != "" {
		geocoder.SetEndpoint(geocodeEndpoint, rate.Every(time.Second))
	}
	updated, err := geocoder.FillMissing(cmd.Context(), properties)
	if err != nil {
		return fmt.Errorf("geocoding interrupted: %w", err)
	}
	logger.WithField("updated", updated).Info("Geocoding finished")

	if !geocodeWrite {
		return printJSON(cmd.OutOrStdout(), properties)
	}
	if updated == 0 {
		return nil
	}

	original, err := os.ReadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	data, err := geocoding.PatchCoordinates(original, properties)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Catalog.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func runLeads(cmd *cobra.Command, args []string) error {
	if cfg.Leads.DatabasePath == "" {
		return fmt.Errorf("LEADS_DB_PATH is required")
	}
	switch leadsKind {
	case "", models.LeadKindOwner, models.LeadKindVisit:
	default:
		return fmt.Errorf("unknown lead kind %q", leadsKind)
	}

	db, err := database.NewDatabase(cfg.Leads.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	records, err := db.RecentLeads(leadsLimit, leadsKind)
	if err != nil {
		return err
	}
	total, err := db.CountLeads()
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), map[string]any{
		"total": total,
		"leads": records,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
