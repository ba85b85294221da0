// Package config loads runtime configuration: defaults, then an optional YAML
// file, then environment variables (highest precedence).
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Config holds runtime configuration for Grounded Growth.
type Config struct {
	Server   ServerConfig   `koanf:"server" yaml:"server"`
	Database DatabaseConfig `koanf:"database" yaml:"database"`
	Auth     AuthConfig     `koanf:"auth" yaml:"auth"`
	Log      LogConfig      `koanf:"log" yaml:"log"`
	AI       AIConfig       `koanf:"ai" yaml:"ai"`
	OpenAI   OpenAIConfig   `koanf:"openai" yaml:"openai"`
	Gemini   GeminiConfig   `koanf:"gemini" yaml:"gemini"`
	LLM      LLMConfig      `koanf:"llm" yaml:"llm"`
}

type ServerConfig struct {
	Host string `koanf:"host" yaml:"host"`
	Port int    `koanf:"port" yaml:"port"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" yaml:"path"`
}

type AuthConfig struct {
	JWTSecret      string `koanf:"jwt_secret" yaml:"jwt_secret"`
	JWTExpiryHours int    `koanf:"jwt_expiry_hours" yaml:"jwt_expiry_hours"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`   // debug | info | warn | error
	Format string `koanf:"format" yaml:"format"` // json | console
}

// AIConfig controls backend selection and the per-user analyze limiter.
type AIConfig struct {
	PreferredProvider string  `koanf:"preferred_provider" yaml:"preferred_provider"` // auto | openai | gemini
	RateLimitPerMin   float64 `koanf:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	RateBurst         int     `koanf:"rate_burst" yaml:"rate_burst"`
}

type OpenAIConfig struct {
	APIKey         string `koanf:"api_key" yaml:"api_key"`
	BaseURL        string `koanf:"base_url" yaml:"base_url"`
	Model          string `koanf:"model" yaml:"model"`
	AlternateModel string `koanf:"alternate_model" yaml:"alternate_model"`
}

type GeminiConfig struct {
	APIKey         string `koanf:"api_key" yaml:"api_key"`
	Model          string `koanf:"model" yaml:"model"`
	AlternateModel string `koanf:"alternate_model" yaml:"alternate_model"`
}

type LLMConfig struct {
	TimeoutSeconds int     `koanf:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTokens      int     `koanf:"max_tokens" yaml:"max_tokens"`
	Temperature    float64 `koanf:"temperature" yaml:"temperature"`
}

// Timeout returns the vendor HTTP client timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// JWTExpiry returns the session token lifetime.
func (c AuthConfig) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// Defaults.
const (
	DefaultHost              = "0.0.0.0"
	DefaultPort              = 3000
	DefaultDatabasePath      = "data/groundedgrowth.db"
	DefaultJWTExpiryHours    = 168
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultPreferredProvider = "auto"
	DefaultRatePerMinute     = 10
	DefaultRateBurst         = 3
	DefaultOpenAIModel       = "gpt-3.5-turbo"
	DefaultGeminiModel       = "models/gemini-1.5-flash"
	DefaultGeminiAlternate   = "gemini-1.5-flash-latest"
	DefaultTimeoutSeconds    = 30
	DefaultMaxTokens         = 800
	DefaultTemperature       = 0.7
)

// placeholderKeys are sample values shipped in example env files. They count as "no key".
var placeholderKeys = map[string]bool{
	"TU_API_KEY_AQUI":          true,
	"TU_OPENAI_API_KEY_AQUI":   true,
	"TU_GEMINI_API_KEY_AQUI":   true,
	"your_openai_api_key_here": true,
	"your_gemini_api_key_here": true,
}

// knownSections restricts which environment variables are mapped into the config tree.
var knownSections = map[string]bool{
	"server": true, "database": true, "auth": true, "log": true,
	"ai": true, "openai": true, "gemini": true, "llm": true,
}

// envAliases maps legacy flat variable names onto config keys.
var envAliases = map[string]string{
	"PORT":       "server.port",
	"JWT_SECRET": "auth.jwt_secret",
	"JWT_EXPIRY": "auth.jwt_expiry_hours",
}

// Load reads configuration from the YAML file at path (skipped when path is
// empty) and the environment, then applies defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps SECTION_FIELD_NAME to section.field_name. Variables outside the
// known sections are dropped.
//
//	OPENAI_API_KEY        -> openai.api_key
//	AI_PREFERRED_PROVIDER -> ai.preferred_provider
//	JWT_SECRET            -> auth.jwt_secret
func envKey(s string) string {
	if alias, ok := envAliases[s]; ok {
		return alias
	}
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !knownSections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.Server.Host, DefaultHost)
	setDefaultInt(&cfg.Server.Port, DefaultPort)
	setDefault(&cfg.Database.Path, DefaultDatabasePath)
	setDefaultInt(&cfg.Auth.JWTExpiryHours, DefaultJWTExpiryHours)
	setDefault(&cfg.Log.Level, DefaultLogLevel)
	setDefault(&cfg.Log.Format, DefaultLogFormat)

	cfg.AI.PreferredProvider = strings.ToLower(strings.TrimSpace(cfg.AI.PreferredProvider))
	setDefault(&cfg.AI.PreferredProvider, DefaultPreferredProvider)
	if cfg.AI.RateLimitPerMin <= 0 {
		cfg.AI.RateLimitPerMin = DefaultRatePerMinute
	}
	setDefaultInt(&cfg.AI.RateBurst, DefaultRateBurst)

	cfg.OpenAI.APIKey = normalizeAPIKey(cfg.OpenAI.APIKey)
	setDefault(&cfg.OpenAI.Model, DefaultOpenAIModel)

	cfg.Gemini.APIKey = normalizeAPIKey(cfg.Gemini.APIKey)
	setDefault(&cfg.Gemini.Model, DefaultGeminiModel)
	setDefault(&cfg.Gemini.AlternateModel, DefaultGeminiAlternate)

	setDefaultInt(&cfg.LLM.TimeoutSeconds, DefaultTimeoutSeconds)
	setDefaultInt(&cfg.LLM.MaxTokens, DefaultMaxTokens)
	if cfg.LLM.Temperature <= 0 {
		cfg.LLM.Temperature = DefaultTemperature
	}
}

func setDefault(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

func setDefaultInt(field *int, fallback int) {
	if *field <= 0 {
		*field = fallback
	}
}

// normalizeAPIKey trims the key and blanks out known placeholders.
func normalizeAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if placeholderKeys[key] {
		return ""
	}
	return key
}

// Validate checks value ranges. It does not require secrets; commands that
// need them check on their own.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.AI.PreferredProvider {
	case "auto", "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("ai.preferred_provider %q must be auto, openai or gemini", c.AI.PreferredProvider))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Redacted returns a copy with secrets masked, safe to print.
func (c Config) Redacted() Config {
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.OpenAI.APIKey = mask(c.OpenAI.APIKey)
	c.Gemini.APIKey = mask(c.Gemini.APIKey)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
