package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		Port string `env:"PORT" envDefault:"5250"`

		// Comma separated list of origins allowed by CORS
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		// Lead submissions allowed per client IP per minute
		LeadsPerMinute int `env:"LEADS_PER_MINUTE" envDefault:"10"`

		// Served under /assets when the directory exists
		AssetsDir string `env:"ASSETS_DIR" envDefault:"assets"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	Catalog struct {
		// Local JSON file, re-read on every lookup
		Path string `env:"CATALOG_PATH" envDefault:"data/properties.json"`

		// Remote JSON document; takes precedence over Path when set
		URL string `env:"CATALOG_URL"`

		Timeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`

		// Location rules override file (synonyms, short tokens, city/state tags)
		RulesPath string `env:"LOCATION_RULES_PATH"`
	}

	Detail struct {
		ImageBase    string `env:"IMAGE_BASE" envDefault:"/assets/images"`
		HeroFallback string `env:"HERO_FALLBACK" envDefault:"/assets/images/property-1.jpg"`
		GallerySize  int    `env:"GALLERY_SIZE" envDefault:"5"`
		MapZoom      int    `env:"MAP_ZOOM" envDefault:"15"`
	}

	Contact struct {
		// Country code + area code + number, digits only
		WhatsAppNumber string `env:"WHATSAPP_NUMBER" envDefault:"5214793139842"`
	}

	Webhook struct {
		URL     string        `env:"WEBHOOK_URL"`
		Secret  string        `env:"WEBHOOK_SECRET"`
		Timeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	}

	Telegram struct {
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	Leads struct {
		// Empty disables the local lead journal
		DatabasePath string `env:"LEADS_DB_PATH" envDefault:"database/leads.db"`

		// Buffered notifications; a full queue drops the notification
		QueueSize int `env:"LEADS_QUEUE_SIZE" envDefault:"64"`

		// Time allowed to each notifier per lead
		NotifyTimeout time.Duration `env:"LEADS_NOTIFY_TIMEOUT" envDefault:"15s"`

		// Journal entries older than this are purged; 0 keeps everything
		RetentionDays int `env:"LEADS_RETENTION_DAYS" envDefault:"180"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Detail.GallerySize <= 0 {
		return nil, fmt.Errorf("GALLERY_SIZE must be positive, got %d", cfg.Detail.GallerySize)
	}
	if cfg.Leads.QueueSize <= 0 {
		return nil, fmt.Errorf("LEADS_QUEUE_SIZE must be positive, got %d", cfg.Leads.QueueSize)
	}
	return cfg, nil
}
