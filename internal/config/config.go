package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when no Tenor API key was provided.
var ErrMissingAPIKey = errors.New("tenor api key is required (set API_KEY)")

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Tenor   TenorConfig   `mapstructure:"tenor"`
	Image   ImageConfig   `mapstructure:"image"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	StaticDir   string `mapstructure:"static_dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// StorageConfig selects where filtered images are written.
// Type "local" writes into <server.static_dir>/images; anything else is an
// S3-compatible backend.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type TenorConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	ClientKey    string        `mapstructure:"client_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DefaultLimit int           `mapstructure:"default_limit"`
}

type ImageConfig struct {
	MaxDimension int   `mapstructure:"max_dimension"`
	MaxPixels    int64 `mapstructure:"max_pixels"`
}

// ImagesDir is the directory local storage writes artifacts to.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Server.StaticDir, "images")
}

// MaxUploadBytes returns the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tenor.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Image.MaxDimension <= 0 {
		return fmt.Errorf("image.max_dimension must be positive, got %d", c.Image.MaxDimension)
	}
	if c.Image.MaxPixels <= 0 {
		return fmt.Errorf("image.max_pixels must be positive, got %d", c.Image.MaxPixels)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "funpages")
	v.SetDefault("tenor.base_url", "https://tenor.googleapis.com/v2/search")
	v.SetDefault("tenor.client_key", "Module-3")
	v.SetDefault("tenor.timeout", 10*time.Second)
	v.SetDefault("tenor.default_limit", 5)
	v.SetDefault("image.max_dimension", 500)
	v.SetDefault("image.max_pixels", 89478485)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets come from the environment
	v.BindEnv("tenor.api_key", "API_KEY", "TENOR_API_KEY")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
