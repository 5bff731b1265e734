package config

import (
	"os"
	"path/filepath"
)

var (
	homeDir string
)

func init() {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
}

// AppDir returns the bitrix-console config directory path
// ~/.config/bitrix-console/
func AppDir() string {
	return filepath.Join(homeDir, ".config", "bitrix-console")
}

// ConfigPath returns the config.yaml file path
// ~/.config/bitrix-console/config.yaml
func ConfigPath() string {
	return filepath.Join(AppDir(), configName+"."+configType)
}

// PrologPath returns the Bitrix prolog file inside a document root.
// Every facade script includes it before touching the CMS API.
func PrologPath(documentRoot string) string {
	return filepath.Join(documentRoot, "bitrix", "modules", "main", "include", "prolog_before.php")
}

// DetectDocumentRoot walks up from dir looking for a directory that
// contains bitrix/modules/main. Returns empty string if none is found.
func DetectDocumentRoot(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "bitrix", "modules", "main")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
