package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Jamef holds the carrier integration configuration.
	Jamef JamefConfig `mapstructure:",squash"`

	// Jobs holds the async job lifecycle configuration.
	Jobs JobsConfig `mapstructure:",squash"`

	// Cache holds the optional result cache configuration.
	Cache CacheConfig `mapstructure:",squash"`

	// Proxy holds the outbound proxy configuration for the browser strategy.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// JamefConfig holds everything needed to talk to the Jamef carrier.
type JamefConfig struct {
	// Strategy selects the fetch implementation: "api" or "browser".
	Strategy string `mapstructure:"JAMEF_STRATEGY" default:"api"`
	// APIURL is the base URL of the Jamef REST API.
	APIURL string `mapstructure:"JAMEF_API_URL" default:"https://api.jamef.com.br"`
	// AuthURL is the token endpoint for the Jamef REST API.
	AuthURL string `mapstructure:"JAMEF_AUTH_URL" default:"https://api.jamef.com.br/auth/v1/login"`
	// Username is the API credential. Required for the "api" strategy only,
	// so it is checked in validateStrategy rather than via the required tag.
	Username string `mapstructure:"JAMEF_USERNAME"`
	// Password is the API credential.
	Password string `mapstructure:"JAMEF_PASSWORD"`
	// SiteURL is the public tracking site driven by the browser strategy.
	SiteURL string `mapstructure:"JAMEF_SITE_URL" default:"https://www.jamef.com.br/"`
	// DefaultCNPJ is the payer document used when a request omits ?cnpj=.
	DefaultCNPJ string `mapstructure:"DEFAULT_CNPJ" default:"48775191000190"`
	// FetchTimeoutSeconds bounds one complete fetch attempt (auth + query,
	// or the whole browser navigation).
	FetchTimeoutSeconds int `mapstructure:"FETCH_TIMEOUT_SECONDS" default:"90"`
	// TokenSafetyMarginSeconds is the lead time before token expiry at
	// which a refresh is forced.
	TokenSafetyMarginSeconds int `mapstructure:"TOKEN_SAFETY_MARGIN_SECONDS" default:"300"`
}

// JobsConfig holds the job registry retention settings.
type JobsConfig struct {
	// RetentionMinutes is how long a finished or abandoned job stays
	// visible before eviction removes it.
	RetentionMinutes int `mapstructure:"JOB_RETENTION_MINUTES" default:"60"`
}

// CacheConfig holds the optional Redis-backed result cache settings.
type CacheConfig struct {
	// RedisURL enables the result cache when non-empty.
	// Format: redis://[:password@]host[:port][/database]
	RedisURL string `mapstructure:"REDIS_URL"`
	// ResultTTLSeconds is how long a completed lookup is served from cache.
	ResultTTLSeconds int `mapstructure:"RESULT_CACHE_TTL_SECONDS" default:"600"`
}

// ProxyConfig holds outbound proxy details for the headless browser.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateStrategy(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateStrategy enforces the cross-field rules the tag mechanism cannot
// express: credentials are mandatory for the API strategy only.
func validateStrategy(config *AppConfig) error {
	switch config.Jamef.Strategy {
	case "api":
		if config.Jamef.Username == "" || config.Jamef.Password == "" {
			return errors.New("JAMEF_USERNAME and JAMEF_PASSWORD are required when JAMEF_STRATEGY=api")
		}
	case "browser":
		// The public site needs no credentials.
	default:
		return fmt.Errorf("invalid JAMEF_STRATEGY %q: must be \"api\" or \"browser\"", config.Jamef.Strategy)
	}
	return nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
