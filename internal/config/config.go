// Package config loads settings from defaults, an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/terraincognita07/periodical/internal/services"
)

const EnvPrefix = "PERIODICAL"

var (
	ErrSecretKeyMissing     = errors.New("auth.secret_key is required")
	ErrSecretKeyTooShort    = errors.New("auth.secret_key must be at least 32 characters")
	ErrSecretKeyPlaceholder = errors.New("auth.secret_key uses a placeholder value")
)

const minSecretKeyLength = 32

var placeholderSecrets = []string{
	"change_me_in_production",
	"replace_with_at_least_32_random_characters",
}

var validate = validator.New()

type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Calendar  CalendarConfig  `mapstructure:"calendar" validate:"required"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type AuthConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gte=0"`
}

type CalendarConfig struct {
	PeriodLength       int           `mapstructure:"period_length" validate:"gte=1,lte=14"`
	LutealLength       int           `mapstructure:"luteal_length" validate:"gte=1"`
	MaximumCycleLength int           `mapstructure:"maximum_cycle_length" validate:"gte=60"`
	PruneEmptyEntries  bool          `mapstructure:"prune_empty_entries"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type RemindersConfig struct {
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   string `mapstructure:"telegram_chat_id"`
	PeriodDaysAhead  int    `mapstructure:"period_days_ahead" validate:"gte=0"`
	Fertility        bool   `mapstructure:"fertility"`
}

// Preferences are the configured calculation defaults; stored options override them.
func (cfg CalendarConfig) Preferences() services.Preferences {
	return services.Preferences{
		PeriodLength:       cfg.PeriodLength,
		LutealLength:       cfg.LutealLength,
		MaximumCycleLength: cfg.MaximumCycleLength,
	}
}

func (cfg RemindersConfig) Enabled() bool {
	return cfg.TelegramBotToken != "" && cfg.TelegramChatID != ""
}

func (cfg ServerConfig) Location() (*time.Location, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timezone %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

// legacyEnv maps keys to the environment names older deployments used.
var legacyEnv = map[string]string{
	"server.port":                  "PORT",
	"server.timezone":              "TZ",
	"database.path":                "DB_PATH",
	"auth.secret_key":              "SECRET_KEY",
	"reminders.telegram_bot_token": "TELEGRAM_BOT_TOKEN",
	"reminders.telegram_chat_id":   "TELEGRAM_CHAT_ID",
}

func setDefaults(v *viper.Viper) {
	defaults := services.DefaultPreferences()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("database.path", filepath.Join("data", "periodical.db"))
	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("calendar.period_length", defaults.PeriodLength)
	v.SetDefault("calendar.luteal_length", defaults.LutealLength)
	v.SetDefault("calendar.maximum_cycle_length", defaults.MaximumCycleLength)
	v.SetDefault("calendar.prune_empty_entries", false)
	v.SetDefault("calendar.cache_ttl", 5*time.Minute)
	v.SetDefault("reminders.telegram_bot_token", "")
	v.SetDefault("reminders.telegram_chat_id", "")
	v.SetDefault("reminders.period_days_ahead", 2)
	v.SetDefault("reminders.fertility", true)
}

// New returns a viper instance with defaults and environment bindings. When
// configFile is empty, config.yaml is looked up in the working directory and ./data.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("data")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration. The secret key is checked separately
// by the commands that sign tokens.
func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Auth.SecretKey = strings.TrimSpace(cfg.Auth.SecretKey)
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Server.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg AuthConfig) ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	for _, placeholder := range placeholderSecrets {
		if strings.EqualFold(secret, placeholder) {
			return "", ErrSecretKeyPlaceholder
		}
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}
