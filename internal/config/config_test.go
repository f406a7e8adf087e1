package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("TENOR_API_KEY", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Tenor.APIKey != "test-key" {
		t.Errorf("expected api key from API_KEY, got %q", cfg.Tenor.APIKey)
	}
	if cfg.Tenor.BaseURL != "https://tenor.googleapis.com/v2/search" {
		t.Errorf("unexpected tenor base url %q", cfg.Tenor.BaseURL)
	}
	if cfg.Tenor.ClientKey != "Module-3" {
		t.Errorf("unexpected client key %q", cfg.Tenor.ClientKey)
	}
	if cfg.Tenor.Timeout != 10*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Tenor.Timeout)
	}
	if cfg.Tenor.DefaultLimit != 5 {
		t.Errorf("unexpected default limit %d", cfg.Tenor.DefaultLimit)
	}
	if cfg.Image.MaxDimension != 500 {
		t.Errorf("unexpected max dimension %d", cfg.Image.MaxDimension)
	}
	if cfg.Image.MaxPixels != 89478485 {
		t.Errorf("unexpected max pixels %d", cfg.Image.MaxPixels)
	}
	if cfg.Storage.Type != "local" {
		t.Errorf("unexpected storage type %q", cfg.Storage.Type)
	}
	if got, want := cfg.ImagesDir(), filepath.Join("static", "images"); got != want {
		t.Errorf("ImagesDir() = %q, want %q", got, want)
	}
	if got := cfg.MaxUploadBytes(); got != 16<<20 {
		t.Errorf("MaxUploadBytes() = %d", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("TENOR_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`server:
  port: 9090
  static_dir: /srv/static
tenor:
  client_key: demo
  timeout: 3s
image:
  max_dimension: 200
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.StaticDir != "/srv/static" {
		t.Errorf("unexpected static dir %q", cfg.Server.StaticDir)
	}
	if cfg.Tenor.ClientKey != "demo" {
		t.Errorf("unexpected client key %q", cfg.Tenor.ClientKey)
	}
	if cfg.Tenor.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Tenor.Timeout)
	}
	if cfg.Tenor.APIKey != "from-env" {
		t.Errorf("expected api key from TENOR_API_KEY, got %q", cfg.Tenor.APIKey)
	}
	if cfg.Image.MaxDimension != 200 {
		t.Errorf("unexpected max dimension %d", cfg.Image.MaxDimension)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{MaxUploadMB: 1},
			Tenor:  TenorConfig{APIKey: "k"},
			Image:  ImageConfig{MaxDimension: 500, MaxPixels: 1 << 20},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		is      error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Tenor.APIKey = "  " }, wantErr: true, is: ErrMissingAPIKey},
		{name: "zero dimension", mutate: func(c *Config) { c.Image.MaxDimension = 0 }, wantErr: true},
		{name: "zero pixel limit", mutate: func(c *Config) { c.Image.MaxPixels = 0 }, wantErr: true},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadMB = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}
