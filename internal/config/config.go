package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir        string `json:"data_dir"`
	LogLevel       string `json:"log_level"`
	StorageBackend string `json:"storage_backend"`
	Backend        struct {
		BaseURL string `json:"base_url"`
		APIKey  string `json:"api_key"`
	} `json:"backend"`
	Interpret struct {
		Language        string   `json:"language"`
		DiagramPrefs    []string `json:"diagram_prefs"`
		TimeoutSeconds  int      `json:"timeout_seconds"`
		DiagramTimeout  int      `json:"diagram_timeout_seconds"`
		MaxSourceTokens int      `json:"max_source_tokens"`
	} `json:"interpret"`
	Storage struct {
		QuotaBytes      int64 `json:"quota_bytes"`
		HistoryCapacity int   `json:"history_capacity"`
	} `json:"storage"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:        filepath.Join(os.Getenv("HOME"), ".docsight"),
		LogLevel:       "info",
		StorageBackend: "badger",
	}
	cfg.Backend.BaseURL = "http://localhost:8080"
	cfg.Interpret.Language = "en"
	cfg.Interpret.DiagramPrefs = []string{"mind_map", "table"}
	cfg.Interpret.TimeoutSeconds = 120
	cfg.Interpret.DiagramTimeout = 60
	cfg.Interpret.MaxSourceTokens = 32000
	cfg.Storage.QuotaBytes = 64 << 20
	cfg.Storage.HistoryCapacity = 10

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("DOCSIGHT_API_KEY"); apiKey != "" {
		cfg.Backend.APIKey = apiKey
	}
	if baseURL := os.Getenv("DOCSIGHT_BASE_URL"); baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	if lang := os.Getenv("DOCSIGHT_LANGUAGE"); lang != "" {
		cfg.Interpret.Language = lang
	}

	return cfg, nil
}

// Save writes the config atomically, creating the parent directory if
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts the config into its JSON map form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListValues returns the config as a flat key/value map, masking
// secrets when mask is true.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue reads one dot-separated key from the config file at path.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue updates one dot-separated key in the config file at path.
// Values that parse as JSON keep their type; everything else is stored
// as a string.
func SetValue(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	flat := Flatten(m)
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	flat[key] = parsed
	nested := Unflatten(flat)

	out, err := json.MarshalIndent(nested, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out = append(out, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, out, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
