package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Env holds the ERASERPAD_* environment overrides. They are applied on top
// of whatever the RC file provided.
type Env struct {
	APIURL  string `envconfig:"API_URL"`
	Theme   string `envconfig:"THEME"`
	SaveDir string `envconfig:"SAVE_DIR"`
}

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Explicit config path, e.g. from a flag
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the RC file (defaults when none exists) and applies
// environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := New()

	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		parsed, perr := Parse(f)
		f.Close()
		if perr != nil {
			return nil, perr
		}
		cfg = parsed
	}

	var env Env
	if err := envconfig.Process("eraserpad", &env); err != nil {
		return nil, err
	}
	if env.APIURL != "" {
		cfg.API.BaseURL = env.APIURL
	}
	if env.Theme != "" {
		cfg.Theme = env.Theme
	}
	if env.SaveDir != "" {
		cfg.SaveDir = env.SaveDir
	}

	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string
// if none is found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// Local run directory in dev mode.
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".eraserpadrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	home, _ := os.UserHomeDir()
	for _, name := range []string{"config.rc", "eraserpad.rc"} {
		xdgPath := filepath.Join(home, ".config", "eraserpad", name)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	return ""
}
