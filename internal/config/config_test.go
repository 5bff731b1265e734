package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Locale != "auto" {
		t.Errorf("Locale = %q, want auto", cfg.Locale)
	}
	if cfg.Bitrix.PHP != "php" {
		t.Errorf("PHP = %q, want php", cfg.Bitrix.PHP)
	}
	if cfg.Marketplace.Host != DefaultMarketplaceHost {
		t.Errorf("Host = %q, want %q", cfg.Marketplace.Host, DefaultMarketplaceHost)
	}
	if cfg.Marketplace.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Marketplace.Timeout)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.Locale = "ru-RU"
	cfg.Bitrix.DocumentRoot = "/var/www/site"
	cfg.Marketplace.Timeout = 5 * time.Second
	cfg.Trial.Timeout = 0

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Locale != "ru-RU" {
		t.Errorf("Locale = %q", loaded.Locale)
	}
	if loaded.Bitrix.DocumentRoot != "/var/www/site" {
		t.Errorf("DocumentRoot = %q", loaded.Bitrix.DocumentRoot)
	}
	if loaded.Marketplace.Timeout != 5*time.Second {
		t.Errorf("Marketplace.Timeout = %v", loaded.Marketplace.Timeout)
	}
	if loaded.Trial.Timeout != 0 {
		t.Errorf("Trial.Timeout = %v, want 0", loaded.Trial.Timeout)
	}
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("BXCONSOLE_BITRIX_DOCUMENTROOT", "/srv/bitrix")
	t.Setenv("BXCONSOLE_MARKETPLACE_TIMEOUT", "45s")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Bitrix.DocumentRoot != "/srv/bitrix" {
		t.Errorf("DocumentRoot = %q, want /srv/bitrix", cfg.Bitrix.DocumentRoot)
	}
	if cfg.Marketplace.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Marketplace.Timeout)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"locale", KeyLocale, "en-US", false},
		{"document root", KeyDocumentRoot, "/var/www", false},
		{"empty php", KeyPHPBinary, "", true},
		{"host", KeyMarketplaceHost, "marketplace.example.com", false},
		{"host with path", KeyMarketplaceHost, "example.com/search", true},
		{"timeout", KeyMarketplaceTimeout, "1m", false},
		{"bad timeout", KeyTrialTimeout, "soon", true},
		{"negative timeout", KeyTrialTimeout, "-1s", true},
		{"unknown", "nope", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(NewConfig(), tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Apply(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestApplyUnknownKey(t *testing.T) {
	err := Apply(NewConfig(), "bitrix.site", "s1")
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("error = %v, want ErrUnknownKey", err)
	}
}

func TestDetectDocumentRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "bitrix", "modules", "main"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "local", "php_interface")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got := DetectDocumentRoot(nested)
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("DetectDocumentRoot = %q, want %q", got, want)
	}

	if got := DetectDocumentRoot(t.TempDir()); got != "" {
		t.Errorf("DetectDocumentRoot outside a site = %q, want empty", got)
	}
}
