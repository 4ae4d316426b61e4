package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/scanview/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != "8888" {
		t.Errorf("Expected port 8888, got %s", cfg.Server.Port)
	}
	if cfg.Service.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected default service URL, got %s", cfg.Service.BaseURL)
	}
	if cfg.MaxUploadSizeBytes() != 25*1000*1000 {
		t.Errorf("Expected 25MB limit, got %d", cfg.MaxUploadSizeBytes())
	}
	flags := cfg.Flags()
	if !flags.ShowZoomControls || !flags.EnableCompare {
		t.Errorf("Expected all features enabled, got %+v", flags)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "scanview.yaml", `
server:
  port: "9000"
  shutdown_timeout: 10s
service:
  base_url: http://backend:5000
storage:
  max_upload_size: 2MB
logging:
  level: debug
viewer:
  enable_compare: false
locale: zh-CN
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("Expected 10s, got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Service.BaseURL != "http://backend:5000" {
		t.Errorf("Unexpected base URL %s", cfg.Service.BaseURL)
	}
	if cfg.MaxUploadSizeBytes() != 2*1000*1000 {
		t.Errorf("Expected 2MB, got %d", cfg.MaxUploadSizeBytes())
	}
	if cfg.Logging.Level != logging.LevelDebug {
		t.Errorf("Expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Flags().EnableCompare {
		t.Error("Expected compare disabled")
	}
	if !cfg.Flags().ShowZoomControls {
		t.Error("Expected zoom controls to default on")
	}
	if cfg.Locale != "zh-CN" {
		t.Errorf("Expected zh-CN, got %s", cfg.Locale)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "scanview.toml", `
locale = "en"

[service]
base_url = "https://imaging.example.edu"

[viewer]
show_zoom_controls = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.BaseURL != "https://imaging.example.edu" {
		t.Errorf("Unexpected base URL %s", cfg.Service.BaseURL)
	}
	if cfg.Flags().ShowZoomControls {
		t.Error("Expected zoom controls disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "7777")
	t.Setenv(EnvServiceURL, "http://backend:5000")
	t.Setenv(EnvMaxUploadSize, "1KB")

	cfg, err := Load(writeFile(t, "scanview.yaml", "server:\n  port: \"9000\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("Expected env port, got %s", cfg.Server.Port)
	}
	if cfg.Service.BaseURL != "http://backend:5000" {
		t.Errorf("Expected env URL, got %s", cfg.Service.BaseURL)
	}
	if cfg.MaxUploadSizeBytes() != 1000 {
		t.Errorf("Expected 1000 bytes, got %d", cfg.MaxUploadSizeBytes())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "bad size", file: "a.yaml", body: "storage:\n  max_upload_size: lots\n"},
		{name: "bad url", file: "b.yaml", body: "service:\n  base_url: backend:5000\n"},
		{name: "bad duration", file: "c.yaml", body: "server:\n  shutdown_timeout: soon\n"},
		{name: "bad yaml", file: "d.yaml", body: "server: [\n"},
		{name: "unknown format", file: "e.json", body: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.body)); err == nil {
				t.Error("Expected an error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing explicit path")
	}
}

func TestValidateAfterOverride(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "missing scheme", baseURL: "backend:5000", wantErr: true},
		{name: "no host", baseURL: "http://", wantErr: true},
		{name: "valid", baseURL: "http://backend:5000", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Service.BaseURL = tt.baseURL
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
