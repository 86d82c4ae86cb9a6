package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/pkg/linkedin"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig       `yaml:"store" mapstructure:"store"`
	LinkedIn linkedin.Config   `yaml:"linkedin" mapstructure:"linkedin"`
	SMTP     mailer.SMTPConfig `yaml:"smtp" mapstructure:"smtp"`
	Mail     MailConfig        `yaml:"mail" mapstructure:"mail"`
	Panel    PanelConfig       `yaml:"panel" mapstructure:"panel"`
	Auth     AuthConfig        `yaml:"auth" mapstructure:"auth"`
	Server   ServerConfig      `yaml:"server" mapstructure:"server"`
	Log      LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MailConfig tunes the bulk verification send.
type MailConfig struct {
	FrontendBaseURL string  `yaml:"frontend_base_url" mapstructure:"frontend_base_url"`
	RatePerSecond   float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	MaxConcurrent   int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// PanelConfig configures the respondent source. Driver is "mock" or "http".
type PanelConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	VocabPath   string `yaml:"vocab_path" mapstructure:"vocab_path"`
	MockCount   int    `yaml:"mock_count" mapstructure:"mock_count"`
	MockSeed    uint64 `yaml:"mock_seed" mapstructure:"mock_seed"`
	AnchorEvery int    `yaml:"anchor_every" mapstructure:"anchor_every"`
}

// AuthConfig configures account sessions.
type AuthConfig struct {
	SigningKey      string `yaml:"signing_key" mapstructure:"signing_key"`
	SessionTTLHours int    `yaml:"session_ttl_hours" mapstructure:"session_ttl_hours"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROOFPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "proofpanel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("mail.frontend_base_url", "http://localhost:3000")
	v.SetDefault("mail.rate_per_second", 5)
	v.SetDefault("mail.max_concurrent", 4)
	v.SetDefault("mail.max_retries", 3)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("panel.driver", "mock")
	v.SetDefault("panel.mock_count", 50)
	v.SetDefault("panel.mock_seed", 1)
	v.SetDefault("panel.anchor_every", 10)
	v.SetDefault("auth.session_ttl_hours", 24)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
