// Package config loads the datadesk configuration from defaults, an optional
// YAML file, an optional .env file and DATADESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DATADESK_"

// ErrMissingToken is returned by RequireTelegram when no bot token is set.
var ErrMissingToken = errors.New("telegram bot token not configured (set " + EnvPrefix + "TELEGRAM_TOKEN)")

// Config is the full service configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Limits   LimitsConfig   `yaml:"limits"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	// Workers bounds how many updates are handled at once.
	Workers     int `yaml:"workers" validate:"min=1,max=256"`
	PollTimeout int `yaml:"poll_timeout" validate:"min=0,max=600"` // seconds
}

type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// SessionAdmin exposes the /v1/sessions routes. Anyone who can reach the
	// listener can then read every user's data.
	SessionAdmin bool `yaml:"session_admin"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory redis"`
	// TTL is the idle time after which a session is dropped. Zero keeps sessions forever.
	TTL        time.Duration    `yaml:"ttl" validate:"min=0"`
	Redis      RedisConfig      `yaml:"redis"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0,max=15"`
	Prefix   string `yaml:"prefix"`
}

// EncryptionConfig enables AES-256 encryption of stored sessions. Keys are
// base64-encoded 32-byte values; an empty Key stores sessions in the clear.
type EncryptionConfig struct {
	Key          string   `yaml:"key" validate:"omitempty,base64"`
	FallbackKeys []string `yaml:"fallback_keys" validate:"dive,base64"`
}

type LogConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

type LimitsConfig struct {
	MaxInputSize  int `yaml:"max_input_size" validate:"gt=0"`
	MaxUploadSize int `yaml:"max_upload_size" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Workers:     8,
			PollTimeout: 60,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "datadesk:session:",
			},
		},
		Log: LogConfig{
			Level:   "info",
			File:    "var/datadesk.log",
			Console: true,
		},
		Limits: LimitsConfig{
			MaxInputSize:  4096,
			MaxUploadSize: 20 << 20,
		},
	}
}

// Load builds the configuration. A missing file at path is not an error; an
// empty path skips the file. envFiles are passed to godotenv; with none, a
// .env file in the working directory is read if present. Variables already
// set in the process environment win over .env entries.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"TELEGRAM_TOKEN": &c.Telegram.Token,
		"HTTP_ADDR":      &c.HTTP.Addr,
		"STORE_BACKEND":  &c.Store.Backend,
		"REDIS_ADDR":     &c.Store.Redis.Addr,
		"REDIS_PASSWORD": &c.Store.Redis.Password,
		"REDIS_PREFIX":   &c.Store.Redis.Prefix,
		"ENCRYPTION_KEY": &c.Store.Encryption.Key,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FILE":       &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"TELEGRAM_WORKERS":      &c.Telegram.Workers,
		"TELEGRAM_POLL_TIMEOUT": &c.Telegram.PollTimeout,
		"REDIS_DB":              &c.Store.Redis.DB,
		"MAX_INPUT_SIZE":        &c.Limits.MaxInputSize,
		"MAX_UPLOAD_SIZE":       &c.Limits.MaxUploadSize,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "STORE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTORE_TTL: %w", EnvPrefix, err)
		}
		c.Store.TTL = d
	}

	bools := map[string]*bool{
		"HTTP_SESSION_ADMIN": &c.HTTP.SessionAdmin,
		"LOG_CONSOLE":        &c.Log.Console,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return errors.New("invalid config: store.redis.addr is required for the redis backend")
	}
	return nil
}

// RequireTelegram reports whether the bot can be started.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	return nil
}
