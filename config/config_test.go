package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8090
office:
  name: "Urząd Miasta Gdynia"
public:
  base_url: "https://zguby.gdynia.pl"
  viewer_base_url: "https://dane.gov.pl/zguby/podglad/"
  output_dir: "/var/lib/zguby"
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Expected port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Office.Name != "Urząd Miasta Gdynia" {
		t.Errorf("Unexpected office name: %s", cfg.Office.Name)
	}
	if cfg.Public.BaseURL != "https://zguby.gdynia.pl" {
		t.Errorf("Unexpected base URL: %s", cfg.Public.BaseURL)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, `
office:
  name: "Urząd Testowy"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 3001 {
		t.Errorf("Expected default port 3001, got %d", cfg.Server.Port)
	}
	if cfg.Public.BaseURL != "http://localhost:3001" {
		t.Errorf("Expected default base URL, got %s", cfg.Public.BaseURL)
	}
	if cfg.Public.ViewerBaseURL != "https://dane.gov.pl/zguby/podglad/" {
		t.Errorf("Expected default viewer URL, got %s", cfg.Public.ViewerBaseURL)
	}
	if cfg.Public.OutputDir != "public_data" {
		t.Errorf("Expected default output dir, got %s", cfg.Public.OutputDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected missing file to be tolerated, got %v", err)
	}

	if cfg.Office.Name != "Biuro Rzeczy Znalezionych" {
		t.Errorf("Expected default office name, got %s", cfg.Office.Name)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("OFFICE_NAME", "Urząd ze Środowiska")
	t.Setenv("PUBLIC_BASE_URL", "https://env.example.gov.pl")
	t.Setenv("OUTPUT_DIR", "/tmp/env_output")

	path := writeConfigFile(t, `
server:
  port: 8090
office:
  name: "Urząd z Pliku"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected env port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Office.Name != "Urząd ze Środowiska" {
		t.Errorf("Expected env office name, got %s", cfg.Office.Name)
	}
	if cfg.Public.BaseURL != "https://env.example.gov.pl" {
		t.Errorf("Expected env base URL, got %s", cfg.Public.BaseURL)
	}
	if cfg.Public.OutputDir != "/tmp/env_output" {
		t.Errorf("Expected env output dir, got %s", cfg.Public.OutputDir)
	}
}

func TestMirrorEnabledByEndpointEnv(t *testing.T) {
	t.Setenv("MIRROR_ENDPOINT", "minio.local:9000")
	t.Setenv("MIRROR_BUCKET", "zguby-artifacts")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Mirror.Enabled {
		t.Error("Expected mirror to be enabled when MIRROR_ENDPOINT is set")
	}
	if cfg.Mirror.Bucket != "zguby-artifacts" {
		t.Errorf("Unexpected mirror bucket: %s", cfg.Mirror.Bucket)
	}
}

func TestOutputSubdirectories(t *testing.T) {
	cfg := &Config{Public: Public{OutputDir: "out"}}

	if cfg.LedgerDir() != filepath.Join("out", "rejestry") {
		t.Errorf("Unexpected ledger dir: %s", cfg.LedgerDir())
	}
	if cfg.MetadataDir() != filepath.Join("out", "zgloszenia") {
		t.Errorf("Unexpected metadata dir: %s", cfg.MetadataDir())
	}
	if cfg.QRDir() != filepath.Join("out", "qr_images") {
		t.Errorf("Unexpected QR dir: %s", cfg.QRDir())
	}
}
