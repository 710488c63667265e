package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"casaleon/server/config"
	"casaleon/server/internal/catalog"
	"casaleon/server/internal/contact"
	"casaleon/server/internal/detail"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "casaleon",
	Short:         "Casa León property listings server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		logger = newLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, filterCmd, detailCmd, geocodeCmd, leadsCmd)
}

func main() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("Failed to load .env file")
	}

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.Log.Format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		l.WithError(err).Warnf("Unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

func loadRules() (config.LocationRules, error) {
	rules, err := config.LoadLocationRules(cfg.Catalog.RulesPath)
	if err != nil {
		return rules, fmt.Errorf("failed to load location rules: %w", err)
	}
	return rules, nil
}

func newSource() catalog.Source {
	return catalog.New(cfg.Catalog.Path, cfg.Catalog.URL, cfg.Catalog.Timeout, logger)
}

func newRenderer(linker *contact.Linker) *detail.Renderer {
	return detail.NewRenderer(detail.Settings{
		ImageBase:    cfg.Detail.ImageBase,
		HeroFallback: cfg.Detail.HeroFallback,
		GallerySize:  cfg.Detail.GallerySize,
		MapZoom:      cfg.Detail.MapZoom,
	}, linker)
}
