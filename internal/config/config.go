package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "yaml"

	// EnvPrefix is prepended to every environment override,
	// e.g. BXCONSOLE_BITRIX_DOCUMENTROOT.
	EnvPrefix = "BXCONSOLE"

	// DefaultMarketplaceHost is the public Bitrix marketplace.
	DefaultMarketplaceHost = "marketplace.1c-bitrix.ru"
)

// Config keys accepted by Set and `config set`.
const (
	KeyLocale             = "locale"
	KeyDocumentRoot       = "bitrix.documentRoot"
	KeyPHPBinary          = "bitrix.php"
	KeyMarketplaceHost    = "marketplace.host"
	KeyMarketplaceTimeout = "marketplace.timeout"
	KeyTrialTimeout       = "trial.timeout"
)

// ErrUnknownKey is returned by Set for keys outside the known set.
var ErrUnknownKey = errors.New("unknown config key")

// Config represents the main configuration file structure
type Config struct {
	Locale      string            `mapstructure:"locale"` // "auto" or ISO format (e.g., "ru-RU", "en-US")
	Bitrix      BitrixConfig      `mapstructure:"bitrix"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Trial       TrialConfig       `mapstructure:"trial"`
}

// BitrixConfig locates the CMS installation the facade scripts run in
type BitrixConfig struct {
	DocumentRoot string `mapstructure:"documentRoot"`
	PHP          string `mapstructure:"php"` // php binary, looked up in PATH when relative
}

// MarketplaceConfig controls catalog fetching
type MarketplaceConfig struct {
	Host    string        `mapstructure:"host"`
	Timeout time.Duration `mapstructure:"timeout"` // per request
}

// TrialConfig controls module trials
type TrialConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // per module, 0 disables
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

var defaults = map[string]any{
	KeyLocale:             "auto",
	KeyDocumentRoot:       "",
	KeyPHPBinary:          "php",
	KeyMarketplaceHost:    DefaultMarketplaceHost,
	KeyMarketplaceTimeout: 30 * time.Second,
	KeyTrialTimeout:       10 * time.Minute,
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale: "auto",
		Bitrix: BitrixConfig{
			PHP: "php",
		},
		Marketplace: MarketplaceConfig{
			Host:    DefaultMarketplaceHost,
			Timeout: 30 * time.Second,
		},
		Trial: TrialConfig{
			Timeout: 10 * time.Minute,
		},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// LoadFile loads the configuration from path, applying defaults and
// environment overrides. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) && !errors.As(err, new(viper.ConfigFileNotFoundError)) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	config := NewConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	if config.Locale == "" {
		config.Locale = "auto"
	}
	if config.Bitrix.PHP == "" {
		config.Bitrix.PHP = "php"
	}
	if config.Marketplace.Host == "" {
		config.Marketplace.Host = DefaultMarketplaceHost
	}

	return config, nil
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return LoadFile(ConfigPath())
}

// SaveFile writes config to path as YAML
func SaveFile(path string, config *Config) error {
	v := viper.New()
	v.SetConfigType(configType)
	v.Set(KeyLocale, config.Locale)
	v.Set(KeyDocumentRoot, config.Bitrix.DocumentRoot)
	v.Set(KeyPHPBinary, config.Bitrix.PHP)
	v.Set(KeyMarketplaceHost, config.Marketplace.Host)
	v.Set(KeyMarketplaceTimeout, config.Marketplace.Timeout.String())
	v.Set(KeyTrialTimeout, config.Trial.Timeout.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Save saves the configuration to the default path
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(AppDir()); err != nil {
		return err
	}
	return SaveFile(ConfigPath(), config)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	return cfg
}

// Apply validates value and stores it under key in config.
func Apply(config *Config, key, value string) error {
	switch key {
	case KeyLocale:
		config.Locale = value
	case KeyDocumentRoot:
		config.Bitrix.DocumentRoot = value
	case KeyPHPBinary:
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		config.Bitrix.PHP = value
	case KeyMarketplaceHost:
		if value == "" || strings.Contains(value, "/") {
			return fmt.Errorf("invalid value '%s' for %s: expected a host name", value, key)
		}
		config.Marketplace.Host = value
	case KeyMarketplaceTimeout, KeyTrialTimeout:
		d, err := cast.ToDurationE(value)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid value '%s' for %s: expected a duration like 30s or 5m", value, key)
		}
		if key == KeyMarketplaceTimeout {
			config.Marketplace.Timeout = d
		} else {
			config.Trial.Timeout = d
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Set applies a key/value pair to the current configuration and saves it
func Set(key, value string) error {
	config := Get()
	if err := Apply(config, key, value); err != nil {
		return err
	}
	return Save(config)
}

// Keys lists every key accepted by Set, in display order
func Keys() []string {
	return []string{
		KeyLocale,
		KeyDocumentRoot,
		KeyPHPBinary,
		KeyMarketplaceHost,
		KeyMarketplaceTimeout,
		KeyTrialTimeout,
	}
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}
