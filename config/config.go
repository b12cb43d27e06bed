package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Config is the main configuration structure
type Config struct {
	Mode          string `json:"mode,omitempty"`
	MIDIInput     string `json:"midiInput,omitempty"`     // id of the chosen input
	Samples       string `json:"samples,omitempty"`       // sample root: URL or directory
	Palette       string `json:"palette,omitempty"`       // optional .gpl palette
	WaveformWidth int    `json:"waveformWidth,omitempty"` // columns per pad waveform

	// Settings holds persisted slot rules, serialized, by storage key
	Settings map[string]json.RawMessage `json:"settings,omitempty"`

	mu   sync.Mutex
	path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:          "default",
		Samples:       "sound",
		WaveformWidth: 28,
		Settings:      make(map[string]json.RawMessage),
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fractunes"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file gives defaults that
// will be saved to path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Settings == nil {
		cfg.Settings = make(map[string]json.RawMessage)
	}
	if cfg.WaveformWidth <= 0 {
		cfg.WaveformWidth = DefaultConfig().WaveformWidth
	}
	return cfg, nil
}

// Path is where Save writes
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Config) saveLocked() error {
	if c.path == "" {
		return nil
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0644)
}

// Get returns the stored value for key
func (c *Config) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Settings[key]
	return v, ok
}

// Put stores value under key and saves
func (c *Config) Put(key string, value json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Settings[key] = append(json.RawMessage(nil), value...)
	return c.saveLocked()
}

// SetMIDIInput remembers the chosen input and saves
func (c *Config) SetMIDIInput(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MIDIInput = id
	return c.saveLocked()
}

// SetMode remembers the active mode and saves
func (c *Config) SetMode(mode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Mode = mode
	return c.saveLocked()
}
