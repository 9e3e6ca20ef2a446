//nolint:mnd //no magic number
package config

import (
	"log/slog"

	"github.com/xdoubleu/essentia/v2/pkg/config"
)

type Config struct {
	Env            string
	Port           int
	WebURL         string
	SentryDsn      string
	SampleRate     float64
	DBDsn          string
	Release        string
	SessionExpiry  string
	MaxDays        int
	LookbackPeriod int
}

func New(logger *slog.Logger) Config {
	var cfg Config

	parser := config.New(logger)

	cfg.Env = parser.EnvStr("ENV", config.ProdEnv)
	cfg.Port = parser.EnvInt("PORT", 8000)
	cfg.WebURL = parser.EnvStr("WEB_URL", "http://localhost:8000")
	cfg.SentryDsn = parser.EnvStr("SENTRY_DSN", "")
	cfg.SampleRate = parser.EnvFloat("SAMPLE_RATE", 1.0)
	cfg.DBDsn = parser.EnvStr("DB_DSN", "postgres://postgres@localhost/postgres")
	cfg.Release = parser.EnvStr("RELEASE", config.DevEnv)

	cfg.SessionExpiry = parser.EnvStr("SESSION_EXPIRY", "365d")

	cfg.MaxDays = parser.EnvInt("MAX_DAYS", 42)
	cfg.LookbackPeriod = parser.EnvInt("LOOKBACK_PERIOD", 180)

	return cfg
}
