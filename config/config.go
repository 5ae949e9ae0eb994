package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server `yaml:"server"`
	Office Office `yaml:"office"`
	Public Public `yaml:"public"`
	Mirror Mirror `yaml:"mirror"`
	Vision Vision `yaml:"vision"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Port int `yaml:"port"`
}

// Office identifies the municipal office this instance publishes for.
// One ledger file exists per office.
type Office struct {
	Name string `yaml:"name"`
}

// Public holds the externally visible URLs and the artifact output
// directory served under /public.
type Public struct {
	BaseURL       string `yaml:"base_url"`
	ViewerBaseURL string `yaml:"viewer_base_url"`
	OutputDir     string `yaml:"output_dir"`
}

// Mirror configures optional replication of published artifacts to an
// object-storage bucket consumed by the open-data catalog.
type Mirror struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Vision configures the image-analysis model behind /api/analyze-image.
// The endpoint is disabled when no API key is supplied.
type Vision struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var GlobalConfig *Config

// Load reads the YAML config file, applies defaults and then
// environment overrides. A missing file is not an error: deployments
// that configure everything through the environment run without one.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment only.
	default:
		return nil, err
	}

	cfg.applyEnv()

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Office.Name == "" {
		cfg.Office.Name = "Biuro Rzeczy Znalezionych"
	}
	if cfg.Public.BaseURL == "" {
		cfg.Public.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Public.ViewerBaseURL == "" {
		cfg.Public.ViewerBaseURL = "https://dane.gov.pl/zguby/podglad/"
	}
	if cfg.Public.OutputDir == "" {
		cfg.Public.OutputDir = "public_data"
	}
	if cfg.Vision.Model == "" {
		cfg.Vision.Model = "claude-sonnet-4-20250514"
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// applyEnv overrides file values with environment variables so the
// service can be configured entirely from the process environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("OFFICE_NAME"); v != "" {
		c.Office.Name = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		c.Public.BaseURL = v
	}
	if v := os.Getenv("VIEWER_BASE_URL"); v != "" {
		c.Public.ViewerBaseURL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Public.OutputDir = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Vision.APIKey = v
	}
	if v := os.Getenv("MIRROR_ENDPOINT"); v != "" {
		c.Mirror.Enabled = true
		c.Mirror.Endpoint = v
	}
	if v := os.Getenv("MIRROR_ACCESS_KEY"); v != "" {
		c.Mirror.AccessKey = v
	}
	if v := os.Getenv("MIRROR_SECRET_KEY"); v != "" {
		c.Mirror.SecretKey = v
	}
	if v := os.Getenv("MIRROR_BUCKET"); v != "" {
		c.Mirror.Bucket = v
	}
}

// LedgerDir is where per-office CSV registries are written.
func (c *Config) LedgerDir() string {
	return filepath.Join(c.Public.OutputDir, "rejestry")
}

// MetadataDir is where per-item XML records are written.
func (c *Config) MetadataDir() string {
	return filepath.Join(c.Public.OutputDir, "zgloszenia")
}

// QRDir is where QR code images are written.
func (c *Config) QRDir() string {
	return filepath.Join(c.Public.OutputDir, "qr_images")
}
