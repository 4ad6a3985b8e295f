// Package config loads nextpress settings.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables (NEXTPRESS_* and a few provider-native names), then command-line
// flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/nextpress/core/cost"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NEXTPRESS"

// Config is the full configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider" env:"PROVIDER"`
	Server   ServerConfig   `yaml:"server" env:"SERVER"`
	Log      LogConfig      `yaml:"log" env:"LOG"`
}

// ProviderConfig selects and tunes the model backend.
type ProviderConfig struct {
	// Name is compat, openai, gemini or anthropic.
	Name    string `yaml:"name" env:"NAME"`
	Model   string `yaml:"model" env:"MODEL"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// APIKey overrides the provider-native variable (OPENAI_API_KEY,
	// GEMINI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY).
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// Timeout bounds one provider call. Zero means no bound besides the
	// caller's context.
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Temperature     float64       `yaml:"temperature" env:"TEMPERATURE"`
	MaxOutputTokens int           `yaml:"max_output_tokens" env:"MAX_OUTPUT_TOKENS"`
	// LogDetail is minimal, standard or verbose; verbose logs prompt text.
	LogDetail string `yaml:"log_detail" env:"LOG_DETAIL"`
	// InputCostPerMillion and OutputCostPerMillion price reported tokens in
	// USD. Zero disables cost reporting.
	InputCostPerMillion  float64 `yaml:"input_cost_per_million" env:"INPUT_COST_PER_MILLION"`
	OutputCostPerMillion float64 `yaml:"output_cost_per_million" env:"OUTPUT_COST_PER_MILLION"`
}

// ModelCost returns the configured token prices.
func (p ProviderConfig) ModelCost() cost.ModelCost {
	return cost.ModelCost{
		InputCostPerMillion:  p.InputCostPerMillion,
		OutputCostPerMillion: p.OutputCostPerMillion,
	}
}

// ServerConfig configures `nextpress serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"RATE_BURST"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Provider names.
const (
	ProviderCompat    = "compat"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:      ProviderOpenAI,
			LogDetail: "standard",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			RateLimit:       5,
			RateBurst:       10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "compact",
		},
	}
}

// Loader reads configuration (builder style).
type Loader struct {
	configPath string
	envPrefix  string
	lookup     func(string) (string, bool)
}

// NewLoader returns a loader that reads the process environment.
func NewLoader() *Loader {
	return &Loader{
		envPrefix: EnvPrefix,
		lookup:    os.LookupEnv,
	}
}

// WithConfigPath sets the YAML file. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithLookup replaces the environment lookup, for tests.
func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	l.lookup = lookup
	return l
}

// Load builds the configuration: defaults, then file, then environment.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	l.applyFallbacks(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyFallbacks reads the unprefixed LOG_LEVEL and LOG_FORMAT when the
// prefixed variables are absent.
func (l *Loader) applyFallbacks(cfg *Config) {
	pairs := []struct {
		prefixed, plain string
		dst             *string
	}{
		{l.envPrefix + "_LOG_LEVEL", "LOG_LEVEL", &cfg.Log.Level},
		{l.envPrefix + "_LOG_FORMAT", "LOG_FORMAT", &cfg.Log.Format},
	}
	for _, p := range pairs {
		if v, ok := l.lookup(p.prefixed); ok && v != "" {
			continue
		}
		if v, ok := l.lookup(p.plain); ok && v != "" {
			*p.dst = v
		}
	}
}

// setFieldsFromEnv walks v and sets every field whose env tag, joined to
// prefix with "_", names a non-empty variable.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue, ok := l.lookup(envKey)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Provider.Name {
	case ProviderCompat, ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("unknown provider %q (want compat, openai, gemini or anthropic)", c.Provider.Name))
	}
	if c.Provider.Timeout < 0 {
		errs = append(errs, "provider timeout must not be negative")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "temperature must be between 0 and 2")
	}
	if c.Provider.InputCostPerMillion < 0 || c.Provider.OutputCostPerMillion < 0 {
		errs = append(errs, "token prices must not be negative")
	}
	if c.Provider.MaxOutputTokens < 0 {
		errs = append(errs, "max_output_tokens must not be negative")
	}
	switch c.Provider.LogDetail {
	case "minimal", "standard", "verbose":
	default:
		errs = append(errs, fmt.Sprintf("unknown log_detail %q", c.Provider.LogDetail))
	}

	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server request_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server max_body_bytes must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		errs = append(errs, "server rate_burst must be positive when rate_limit is set")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win, and missing files are skipped. With no paths, ".env"
// in the working directory is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
