// Package config loads the console configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/damacus/bucket-console/internal/logger"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	// Address is the listen address.
	Address string `mapstructure:"address" default:":8080"`
	// SecretKey seals flash cookies. Empty generates an ephemeral key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// SecureCookies marks cookies Secure.
	SecureCookies bool `mapstructure:"secure_cookies" default:"false"`
}

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig         `mapstructure:"server"`
	Storage services.StoreConfig `mapstructure:"storage"`
	Log     logger.Config        `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and the .env
// file in dir, if any.
func LoadConfig(dir string) (*Config, error) {
	envPath := dir + "/.env"
	if dir == "." || dir == "" {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// SERVER_ADDRESS -> server.address
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the console cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case services.DriverS3, services.DriverMinio, services.DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of s3, minio, memory; got %q", c.Storage.Driver)
	}
	if c.Storage.PageSize < 1 || c.Storage.PageSize > services.MaxDeleteBatch {
		return fmt.Errorf("storage.page_size must be between 1 and %d; got %d", services.MaxDeleteBatch, c.Storage.PageSize)
	}
	if c.Storage.Driver == services.DriverMinio && c.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required for the minio driver")
	}
	return nil
}

// bindValues walks the struct and registers every 'mapstructure' key with
// its 'default' tag, so AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
