package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/FranksOps/yelpleads/internal/export"
	"github.com/FranksOps/yelpleads/internal/summarize"
	"github.com/FranksOps/yelpleads/internal/yelp"
	"github.com/FranksOps/yelpleads/pkg/ratelimit"
)

// EnvPrefix namespaces the tunables read from the environment.
const EnvPrefix = "YELPLEADS"

// ErrMissingCredentials is returned when the Yelp credentials are absent.
var ErrMissingCredentials = errors.New("yelp API credentials are not set in the environment or .env file")

type Config struct {
	Credentials Credentials
	Settings    Settings
}

// Credentials are secrets read from the process environment.
type Credentials struct {
	YelpClientID string `env:"YELP_CLIENT_ID,required,notEmpty"`
	YelpAPIKey   string `env:"YELP_API_KEY,required,notEmpty"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

// Settings are tunables resolved by viper from flags, YELPLEADS_* variables
// and an optional config file.
type Settings struct {
	Output        string        `mapstructure:"output" validate:"required"`
	PageDelay     time.Duration `mapstructure:"page-delay" validate:"gte=0"`
	PageJitter    float64       `mapstructure:"page-jitter" validate:"gte=0,lte=1"`
	Model         string        `mapstructure:"model" validate:"required"`
	MaxTokens     int           `mapstructure:"max-tokens" validate:"gt=0"`
	Temperature   float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	YelpBaseURL   string        `mapstructure:"yelp-base-url" validate:"required,url"`
	OpenAIBaseURL string        `mapstructure:"openai-base-url" validate:"omitempty,url"`
	TLSProfile    string        `mapstructure:"tls-profile" validate:"oneof=go chrome firefox safari random"`
	Proxies       []string      `mapstructure:"proxy" validate:"dive,required"`
	ProxyFile     string        `mapstructure:"proxy-file"`
	LogLevel      string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	MetricsFile   string        `mapstructure:"metrics-file"`
	ReportFormat  string        `mapstructure:"report" validate:"oneof=text json html none"`
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", export.DefaultDestination)
	v.SetDefault("page-delay", ratelimit.DefaultPageDelay)
	v.SetDefault("page-jitter", 0.0)
	v.SetDefault("model", summarize.DefaultModel)
	v.SetDefault("max-tokens", summarize.DefaultMaxTokens)
	v.SetDefault("temperature", summarize.DefaultTemperature)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("yelp-base-url", yelp.DefaultBaseURL)
	v.SetDefault("openai-base-url", "")
	v.SetDefault("tls-profile", "go")
	v.SetDefault("proxy", []string{})
	v.SetDefault("proxy-file", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("metrics-file", "")
	v.SetDefault("report", "text")
}

// NewViper returns a viper instance with defaults and YELPLEADS_* environment
// lookup. configFile is read when non-empty.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	return v, nil
}

// LoadCredentials reads .env if present, then parses the credentials.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("config: %w: %w", ErrMissingCredentials, err)
	}
	return creds, nil
}

// Load resolves credentials and settings and validates the result. It does
// not touch the network.
func Load(v *viper.Viper) (Config, error) {
	creds, err := LoadCredentials()
	if err != nil {
		return Config{}, err
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Config{}, fmt.Errorf("config: decode settings: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(settings); err != nil {
		return Config{}, fmt.Errorf("config: invalid settings: %w", err)
	}

	return Config{Credentials: creds, Settings: settings}, nil
}

// ParsePages converts the operator's page count answer. Non-numeric input
// yields (1, false) so the caller can warn; numbers below 1 are raised to 1.
func ParsePages(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 1, false
	}
	return max(1, n), true
}
