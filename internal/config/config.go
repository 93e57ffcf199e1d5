// Package config resolves all process configuration once at startup.
// Components receive explicit structs and never read ambient environment
// state themselves.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/duyuru-hq/haber-sentry/pkg/notify"
)

// Config is the fully resolved process configuration.
type Config struct {
	Brevo  notify.BrevoConfig
	Routes *notify.Routes

	FetchTimeout time.Duration
	SendTimeout  time.Duration

	EnrichArticles bool
	LedgerPath     string

	LogLevel string
	LogJSON  bool
}

// Load reads the environment and, when ROUTES_FILE is set, the routes file.
// Without a routes file a single-recipient fallback routing table is built
// from MONITORED_KEYWORDS and ALERT_RECIPIENT.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SENDER_NAME", "News Monitor")
	v.SetDefault("BREVO_API_URL", notify.DefaultBrevoEndpoint)
	v.SetDefault("NEWS_LANGUAGE", "en")
	v.SetDefault("MONITORED_KEYWORDS", "ilkyar")
	v.SetDefault("FETCH_TIMEOUT_SECONDS", 30)
	v.SetDefault("SEND_TIMEOUT_SECONDS", 15)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)

	cfg := Config{
		Brevo: notify.BrevoConfig{
			APIKey:      v.GetString("BREVO_API_KEY"),
			Endpoint:    v.GetString("BREVO_API_URL"),
			SenderName:  v.GetString("SENDER_NAME"),
			SenderEmail: v.GetString("SENDER_EMAIL"),
			Timeout:     time.Duration(v.GetInt("SEND_TIMEOUT_SECONDS")) * time.Second,
		},
		FetchTimeout:   time.Duration(v.GetInt("FETCH_TIMEOUT_SECONDS")) * time.Second,
		SendTimeout:    time.Duration(v.GetInt("SEND_TIMEOUT_SECONDS")) * time.Second,
		EnrichArticles: v.GetBool("ENRICH_ARTICLES"),
		LedgerPath:     strings.TrimSpace(v.GetString("LEDGER_PATH")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogJSON:        v.GetBool("LOG_JSON"),
	}

	if strings.TrimSpace(cfg.Brevo.APIKey) == "" {
		return Config{}, errors.New("BREVO_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Brevo.SenderEmail) == "" {
		return Config{}, errors.New("SENDER_EMAIL is required")
	}
	if cfg.FetchTimeout <= 0 {
		return Config{}, errors.New("FETCH_TIMEOUT_SECONDS must be > 0")
	}
	if cfg.SendTimeout <= 0 {
		return Config{}, errors.New("SEND_TIMEOUT_SECONDS must be > 0")
	}

	routes, err := loadRoutes(v)
	if err != nil {
		return Config{}, err
	}
	cfg.Routes = routes

	return cfg, nil
}

func loadRoutes(v *viper.Viper) (*notify.Routes, error) {
	digestRecipient := strings.TrimSpace(v.GetString("DAILY_NEWS_RECIPIENT"))
	if digestRecipient == "" {
		return nil, errors.New("DAILY_NEWS_RECIPIENT is required")
	}

	if path := strings.TrimSpace(v.GetString("ROUTES_FILE")); path != "" {
		routes, err := notify.LoadRoutes(path)
		if err != nil {
			return nil, fmt.Errorf("load routes file: %w", err)
		}
		if routes.Digest.Recipient == "" {
			routes.Digest.Recipient = digestRecipient
		}
		if routes.Digest.Language == "" {
			routes.Digest.Language = v.GetString("NEWS_LANGUAGE")
		}
		return routes, nil
	}

	alertRecipient := strings.TrimSpace(v.GetString("ALERT_RECIPIENT"))
	if alertRecipient == "" {
		alertRecipient = digestRecipient
	}

	var keywords []notify.Route
	for _, kw := range strings.Split(v.GetString("MONITORED_KEYWORDS"), ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		keywords = append(keywords, notify.Route{
			Keyword:   kw,
			Recipient: alertRecipient,
		})
	}
	if len(keywords) == 0 {
		return nil, errors.New("MONITORED_KEYWORDS contains no keywords")
	}

	return &notify.Routes{
		Digest: notify.DigestRoute{
			Recipient: digestRecipient,
			Language:  v.GetString("NEWS_LANGUAGE"),
		},
		Keywords: keywords,
	}, nil
}
