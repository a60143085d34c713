package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultTimeoutSec     = 60
	defaultConsentVersion = 1
	defaultPollSec        = 5
)

// AIConfig holds settings for the generative flows.
type AIConfig struct {
	// Model is the Gemini model name used for every flow.
	Model string `mapstructure:"model" yaml:"model"`

	// TimeoutSec bounds a single flow run, including the external call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// PromptDir optionally overrides the embedded prompt templates with
	// files named <prompt>.v<version>.tmpl.
	PromptDir string `mapstructure:"prompt_dir" yaml:"prompt_dir"`
}

// StorageConfig holds the location of the local database.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// NotificationConfig holds the retention policy for notifications.
// Zero retention values leave retention unbounded.
type NotificationConfig struct {
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
	MaxCount      int `mapstructure:"max_count" yaml:"max_count"`

	// PollIntervalSec is how often the inbox UI checks for notifications
	// written by other processes.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// ConsentConfig selects the consent key version. Bumping the version
// asks every user again.
type ConsentConfig struct {
	Version int `mapstructure:"version" yaml:"version"`
}

// SecretsConfig selects where the session and API key are kept. An empty
// FileDir uses the system keyring.
type SecretsConfig struct {
	FileDir string `mapstructure:"file_dir" yaml:"file_dir"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	AI            AIConfig           `mapstructure:"ai" yaml:"ai"`
	Storage       StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Consent       ConsentConfig      `mapstructure:"consent" yaml:"consent"`
	Secrets       SecretsConfig      `mapstructure:"secrets" yaml:"secrets"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/noteflow, falling back to the working
// directory when the home directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "noteflow")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/noteflow/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDBPath returns the default SQLite database location.
func DefaultDBPath() string {
	return filepath.Join(configDir(), "noteflow.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		AI: AIConfig{
			Model:      defaultModel,
			TimeoutSec: defaultTimeoutSec,
		},
		Storage: StorageConfig{
			DBPath: DefaultDBPath(),
		},
		Notifications: NotificationConfig{
			PollIntervalSec: defaultPollSec,
		},
		Consent: ConsentConfig{
			Version: defaultConsentVersion,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration with
// environment overrides (NOTEFLOW_AI_MODEL, NOTEFLOW_STORAGE_DB_PATH, ...)
// applied.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("noteflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("ai.model", defaultModel)
	v.SetDefault("ai.timeout_sec", defaultTimeoutSec)
	v.SetDefault("ai.prompt_dir", "")
	v.SetDefault("storage.db_path", DefaultDBPath())
	v.SetDefault("notifications.retention_days", 0)
	v.SetDefault("notifications.max_count", 0)
	v.SetDefault("notifications.poll_interval_sec", defaultPollSec)
	v.SetDefault("consent.version", defaultConsentVersion)
	v.SetDefault("secrets.file_dir", "")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = defaultTimeoutSec
	}
	if cfg.Consent.Version <= 0 {
		cfg.Consent.Version = defaultConsentVersion
	}
	if cfg.Notifications.RetentionDays < 0 {
		cfg.Notifications.RetentionDays = 0
	}
	if cfg.Notifications.MaxCount < 0 {
		cfg.Notifications.MaxCount = 0
	}
	if cfg.Notifications.PollIntervalSec <= 0 {
		cfg.Notifications.PollIntervalSec = defaultPollSec
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("ai", cfg.AI)
	v.Set("storage", cfg.Storage)
	v.Set("notifications", cfg.Notifications)
	v.Set("consent", cfg.Consent)
	v.Set("secrets", cfg.Secrets)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// APIKeyFromEnv returns the Gemini API key from GEMINI_API_KEY or
// GOOGLE_API_KEY, in that order.
func APIKeyFromEnv() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
