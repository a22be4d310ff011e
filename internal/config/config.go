// Package config loads the Concierge settings from a YAML file, CONCIERGE_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "concierge"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	Addr    string        `mapstructure:"addr"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	CTS     CTSConfig     `mapstructure:"cts"`
	Prompts PromptsConfig `mapstructure:"prompts"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Session SessionConfig `mapstructure:"session"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Locale  domain.Locale `mapstructure:"locale"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Kind    string        `mapstructure:"kind"`
	Dir     string        `mapstructure:"dir"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Protect ProtectConfig `mapstructure:"protect"`
}

// ProtectConfig applies to every store kind. Keys are base64 AES-256 keys.
type ProtectConfig struct {
	EncryptionKey  string   `mapstructure:"encryption_key"`
	FallbackKeys   []string `mapstructure:"fallback_keys"`
	MaskedPatterns []string `mapstructure:"masked_patterns"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// CTSConfig points at the travel API. Empty URLs leave the tool catalogue unregistered.
type CTSConfig struct {
	APIV1     string        `mapstructure:"api_v1"`
	APIV2     string        `mapstructure:"api_v2"`
	CityURL   string        `mapstructure:"city_url"`
	FrontHost string        `mapstructure:"front_host"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

type EngineConfig struct {
	MaxSteps        int `mapstructure:"max_steps"`
	ToolConcurrency int `mapstructure:"tool_concurrency"`
}

type SessionConfig struct {
	DiscardOnClose bool `mapstructure:"discard_on_close"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var defaults = map[string]any{
	"addr":                          ":8100",
	"log.level":                     "info",
	"log.format":                    "text",
	"store.kind":                    StoreMemory,
	"store.dir":                     ".concierge/sessions",
	"store.redis.addr":              "localhost:6379",
	"store.redis.password":          "",
	"store.redis.db":                0,
	"store.redis.prefix":            "concierge:session:",
	"store.redis.ttl":               "0s",
	"store.protect.encryption_key":  "",
	"store.protect.fallback_keys":   []string{},
	"store.protect.masked_patterns": []string{},
	"openai.api_key":                "",
	"openai.base_url":               "",
	"openai.model":                  "gpt-4o-mini",
	"openai.temperature":            1.0,
	"cts.api_v1":                    "",
	"cts.api_v2":                    "",
	"cts.city_url":                  "https://cts.cl/wp-json/wp/v2/ciudad?per_page=100",
	"cts.front_host":                "",
	"cts.timeout":                   "30s",
	"prompts.dir":                   "",
	"engine.max_steps":              25,
	"engine.tool_concurrency":       4,
	"session.discard_on_close":      false,
	"metrics.enabled":               true,
	"locale.language":               domain.DefaultLocale.Language,
	"locale.currency":               domain.DefaultLocale.Currency,
}

// legacyEnv are the variable names of earlier deployments, consulted after CONCIERGE_*.
var legacyEnv = map[string]string{
	"openai.api_key": "OPENAI_API_KEY",
	"cts.api_v1":     "CTS_API_V1",
	"cts.api_v2":     "CTS_API_V2",
	"cts.front_host": "FRONT_HOST",
}

// New returns a viper instance with every key defaulted and bound to its environment variable.
// Callers bind their flags on it before Load.
func New() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix("concierge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, envName(key), legacy)
	}
	return v
}

func envName(key string) string {
	return "CONCIERGE_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
}

// Load reads the config file into v and decodes the result. An explicit path must exist;
// the default file is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultFile)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings no component could start with.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid store.kind %q (want memory, file or redis)", c.Store.Kind)
	}
	if c.Engine.MaxSteps <= 0 {
		return fmt.Errorf("engine.max_steps must be positive, got %d", c.Engine.MaxSteps)
	}
	if c.Engine.ToolConcurrency <= 0 {
		return fmt.Errorf("engine.tool_concurrency must be positive, got %d", c.Engine.ToolConcurrency)
	}
	return nil
}

// CTSEnabled reports whether the travel API is configured.
func (c *Config) CTSEnabled() bool {
	return c.CTS.APIV1 != "" && c.CTS.APIV2 != ""
}
