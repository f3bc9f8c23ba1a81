package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/promptdeck/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int              `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string           `mapstructure:"state_dir" yaml:"state_dir"`
	Service       ServiceConfig    `mapstructure:"service" yaml:"service"`
	Providers     []ProviderConfig `mapstructure:"providers" yaml:"providers"`
	Logging       LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ServiceConfig controls core service behavior.
type ServiceConfig struct {
	MaxConcurrent         int    `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	ConflictWindowSeconds int    `mapstructure:"conflict_window_seconds" yaml:"conflict_window_seconds"`
	DefaultProvider       string `mapstructure:"default_provider" yaml:"default_provider"`
	SessionNameMax        int    `mapstructure:"session_name_max" yaml:"session_name_max"`
	HistoryMaxEntries     int    `mapstructure:"history_max_entries" yaml:"history_max_entries"`
}

// ProviderConfig configures one provider adapter.
type ProviderConfig struct {
	// Name is the identity sessions bind to.
	Name string `mapstructure:"name" yaml:"name"`
	// Kind selects the adapter: exec, ollama, scripted, or auto.
	Kind string `mapstructure:"kind" yaml:"kind"`
	// Command and Args apply to exec adapters; the prompt is fed on stdin.
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
	// Model and Endpoint apply to ollama adapters.
	Model    string `mapstructure:"model" yaml:"model"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// TimeoutSeconds bounds one prompt round-trip. Zero means no limit.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// ServiceSettings converts the service section to core settings.
func (c Config) ServiceSettings() schema.ServiceConfig {
	return schema.ServiceConfig{
		MaxConcurrent:     c.Service.MaxConcurrent,
		ConflictWindow:    time.Duration(c.Service.ConflictWindowSeconds) * time.Second,
		DefaultProvider:   schema.ProviderID(c.Service.DefaultProvider),
		SessionNameMax:    c.Service.SessionNameMax,
		HistoryMaxEntries: c.Service.HistoryMaxEntries,
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".promptdeck", "state"),
		Service: ServiceConfig{
			MaxConcurrent:         schema.DefaultMaxConcurrent,
			ConflictWindowSeconds: int(schema.DefaultConflictWindow / time.Second),
			DefaultProvider:       "ollama",
			SessionNameMax:        schema.DefaultSessionNameMax,
			HistoryMaxEntries:     schema.DefaultHistoryMaxEntries,
		},
		Providers: []ProviderConfig{
			{
				Name:     "ollama",
				Kind:     "ollama",
				Model:    "llama3.2",
				Endpoint: "http://localhost:11434",
			},
			{
				Name:    "codex",
				Kind:    "exec",
				Command: "codex",
				Args:    []string{"exec", "--json"},
			},
			{
				Name: "auto",
				Kind: "auto",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".promptdeck", "config.yaml"), nil
}
