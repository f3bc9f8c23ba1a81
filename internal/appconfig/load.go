package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("service.max_concurrent", cfg.Service.MaxConcurrent)
	v.SetDefault("service.conflict_window_seconds", cfg.Service.ConflictWindowSeconds)
	v.SetDefault("service.default_provider", cfg.Service.DefaultProvider)
	v.SetDefault("service.session_name_max", cfg.Service.SessionNameMax)
	v.SetDefault("service.history_max_entries", cfg.Service.HistoryMaxEntries)
	v.SetDefault("providers", cfg.Providers)
	v.SetDefault("logging.level", cfg.Logging.Level)

	// A missing config file is fine; defaults apply.
	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validateProviders(cfg.Providers); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Service.DefaultProvider) != "" {
		if !hasProvider(cfg.Providers, cfg.Service.DefaultProvider) {
			return Config{}, fmt.Errorf("service.default_provider %q is not a configured provider", cfg.Service.DefaultProvider)
		}
	}
	return cfg, nil
}

func hasProvider(providers []ProviderConfig, name string) bool {
	for _, p := range providers {
		if p.Name == name {
			return true
		}
	}
	return false
}

func validateProviders(providers []ProviderConfig) error {
	if len(providers) == 0 {
		return fmt.Errorf("at least one provider must be configured")
	}
	seen := make(map[string]struct{}, len(providers))
	for i, p := range providers {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("providers[%d]: duplicate provider %q", i, name)
		}
		seen[name] = struct{}{}
		switch p.Kind {
		case "exec":
			if strings.TrimSpace(p.Command) == "" {
				return fmt.Errorf("provider %q: command is required for kind exec", name)
			}
		case "ollama":
			if strings.TrimSpace(p.Model) == "" {
				return fmt.Errorf("provider %q: model is required for kind ollama", name)
			}
			endpoint := strings.TrimSpace(p.Endpoint)
			if endpoint != "" {
				parsed, err := url.Parse(endpoint)
				if err != nil || parsed.Scheme == "" || parsed.Host == "" {
					return fmt.Errorf("provider %q: endpoint must include scheme and host", name)
				}
			}
		case "auto", "scripted":
		default:
			return fmt.Errorf("provider %q: unsupported kind %q", name, p.Kind)
		}
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	for i := range cfg.Providers {
		cfg.Providers[i].Command = expandEnv(cfg.Providers[i].Command)
		cfg.Providers[i].Endpoint = expandEnv(cfg.Providers[i].Endpoint)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
