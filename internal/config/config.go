package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		Token            string `yaml:"token"`
		WebhookPublicURL string `yaml:"webhook_public_url" validate:"omitempty,url"`
	} `yaml:"telegram"`
	OpenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model" default:"gpt-4o-mini"`
	} `yaml:"openai"`
	Server struct {
		Port            string        `yaml:"port" default:"9095" validate:"required,numeric"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	DB struct {
		Path string `yaml:"path" default:"/app/data/chat.db" validate:"required"`
	} `yaml:"db"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	} `yaml:"log"`
	Yahoo struct {
		Timeout       time.Duration `yaml:"timeout" default:"20s" validate:"gt=0"`
		RatePerSecond float64       `yaml:"rate_per_second" default:"4" validate:"gt=0"`
		Burst         int           `yaml:"burst" default:"2" validate:"gte=1"`
	} `yaml:"yahoo"`
	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis none"`
		TTL     time.Duration `yaml:"ttl" default:"15m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"rtb:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Benchmark string `yaml:"benchmark" default:"^GSPC" validate:"required"`
}

var validate = validator.New()

// Load applies defaults, then the YAML file at path (optional), then environment overrides.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.Token,
		"WEBHOOK_PUBLIC_URL": &c.Telegram.WebhookPublicURL,
		"OPENAI_API_KEY":     &c.OpenAI.APIKey,
		"OPENAI_MODEL":       &c.OpenAI.Model,
		"PORT":               &c.Server.Port,
		"DB_PATH":            &c.DB.Path,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FORMAT":         &c.Log.Format,
		"CACHE_BACKEND":      &c.Cache.Backend,
		"REDIS_ADDR":         &c.Cache.Redis.Addr,
		"REDIS_PASSWORD":     &c.Cache.Redis.Password,
		"BENCHMARK_SYMBOL":   &c.Benchmark,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("YAHOO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("YAHOO_TIMEOUT: %w", err)
		}
		c.Yahoo.Timeout = d
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Cache.Redis.DB = n
	}
	return nil
}

// RequireBot checks the settings the Telegram webhook server cannot run without.
func (c *Config) RequireBot() error {
	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("missing env TELEGRAM_BOT_TOKEN"))
	}
	if c.Telegram.WebhookPublicURL == "" {
		errs = append(errs, errors.New("missing env WEBHOOK_PUBLIC_URL"))
	}
	return errors.Join(errs...)
}
