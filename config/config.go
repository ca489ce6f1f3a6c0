package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrMissingAPIKey = errors.New("openweather api key is required")

// ConfigurationError is returned for missing or invalid startup configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type Config struct {
	ServiceName string
	PackageName string `validate:"required"`
	HostAPIKey  string `validate:"required"`
	Port        string `validate:"required,numeric"`

	Env         string
	LogLevel    string
	HTTPTimeout int32 `validate:"gt=0"`

	OpenWeatherAPIKey  string `validate:"required"`
	OpenWeatherBaseURL string `validate:"required,url"`
	OpenWeatherGeoURL  string `validate:"required,url"`

	DefaultCity     string        `validate:"required"`
	LocationTimeout time.Duration `validate:"gt=0"`
	GeocodeCacheTTL time.Duration
	ShutdownTimeout time.Duration

	ZipkinURL string `validate:"omitempty,url"`
}

var validate = validator.New()

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "weather-glasses")

	v.SetDefault("PORT", "3000")
	v.SetDefault("HTTP_TIMEOUT", 10)
	v.SetDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0")
	v.SetDefault("DEFAULT_CITY", "San Francisco, CA")
	v.SetDefault("LOCATION_TIMEOUT", 10*time.Second)
	v.SetDefault("GEOCODE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Msg("No .env file found, using environment variables only")
		} else {
			return nil, &ConfigurationError{Err: fmt.Errorf("error reading config file: %w", err)}
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	config := &Config{
		ServiceName:        v.GetString("SERVICE_NAME"),
		PackageName:        v.GetString("PACKAGE_NAME"),
		HostAPIKey:         v.GetString("HOST_API_KEY"),
		Port:               v.GetString("PORT"),
		Env:                v.GetString("ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		HTTPTimeout:        v.GetInt32("HTTP_TIMEOUT"),
		OpenWeatherAPIKey:  v.GetString("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: v.GetString("OPENWEATHER_BASE_URL"),
		OpenWeatherGeoURL:  v.GetString("OPENWEATHER_GEO_URL"),
		DefaultCity:        v.GetString("DEFAULT_CITY"),
		LocationTimeout:    v.GetDuration("LOCATION_TIMEOUT"),
		GeocodeCacheTTL:    v.GetDuration("GEOCODE_CACHE_TTL"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		ZipkinURL:          v.GetString("ZIPKIN_URL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports the first class of problem found as a ConfigurationError.
func (c *Config) Validate() error {
	if c.OpenWeatherAPIKey == "" {
		return &ConfigurationError{Err: ErrMissingAPIKey}
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigurationError{Err: fmt.Errorf("invalid %s: failed %q check", verrs[0].Field(), verrs[0].Tag())}
		}
		return &ConfigurationError{Err: err}
	}

	return nil
}

func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

func (c *Config) ServerAddress() string {
	return "0.0.0.0:" + c.Port
}
