// Package config loads and persists moonlight's user settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// Theme selects the colour palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Refresh intervals applied when streaming mode is toggled, in milliseconds.
const (
	StreamingInterval = 2000
	NormalInterval    = 1000
)

var (
	// ErrMalformed means the file could not be decoded; defaults were used.
	ErrMalformed = errors.New("config: malformed file")
	// ErrInvalid means some values were out of range and replaced by defaults.
	ErrInvalid = errors.New("config: invalid value")
)

// Config carries the persisted settings. Keys missing from the file keep
// their default values; unknown keys are ignored.
type Config struct {
	Theme           Theme  `json:"theme" yaml:"theme"`
	PrimaryColor    string `json:"primary_color" yaml:"primary_color"`
	RefreshInterval int    `json:"refresh_interval" yaml:"refresh_interval"` // milliseconds
	StreamingMode   bool   `json:"streaming_mode" yaml:"streaming_mode"`
	ShowGPU         bool   `json:"show_gpu" yaml:"show_gpu"`
	ShowTemp        bool   `json:"show_temp" yaml:"show_temp"`
	Autostart       bool   `json:"autostart" yaml:"autostart"`
}

func Default() Config {
	return Config{
		Theme:           ThemeDark,
		PrimaryColor:    "#4fc3f7",
		RefreshInterval: 2000,
		StreamingMode:   false,
		ShowGPU:         true,
		ShowTemp:        true,
		Autostart:       false,
	}
}

// DefaultPath returns ~/.config/moonlight/config.json (or the platform's
// user config directory).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(dir, "moonlight", "config.json"), nil
}

// Interval returns the refresh interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// SetStreamingMode toggles streaming mode; enabling it widens the refresh
// interval to reduce overhead while screen recording.
func (c *Config) SetStreamingMode(on bool) {
	c.StreamingMode = on
	if on {
		c.RefreshInterval = StreamingInterval
	} else {
		c.RefreshInterval = NormalInterval
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate reports every out-of-range value.
func (c Config) Validate() error {
	var errs []error
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		errs = append(errs, fmt.Errorf("%w: theme %q (want dark or light)", ErrInvalid, c.Theme))
	}
	if !hexColor.MatchString(c.PrimaryColor) {
		errs = append(errs, fmt.Errorf("%w: primary_color %q (want #rrggbb)", ErrInvalid, c.PrimaryColor))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: refresh_interval %d (want > 0)", ErrInvalid, c.RefreshInterval))
	}
	return errors.Join(errs...)
}

// sanitize replaces invalid values with defaults.
func (c Config) sanitize() Config {
	def := Default()
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		c.Theme = def.Theme
	}
	if !hexColor.MatchString(c.PrimaryColor) {
		c.PrimaryColor = def.PrimaryColor
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	return c
}

// Load reads the file at path and merges it over the defaults. The returned
// Config is always usable:
//   - a missing file is created with defaults;
//   - a malformed file yields defaults and an error wrapping ErrMalformed;
//   - out-of-range values are replaced and reported with ErrInvalid.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			def := Default()
			if err := Save(path, def); err != nil {
				return def, err
			}
			return def, nil
		}
		return Default(), fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg.sanitize(), err
	}
	return cfg, nil
}

// Save writes cfg atomically (temp file then rename) with 0600 permissions,
// creating the parent directory with 0700 if needed.
func Save(path string, cfg Config) error {
	encoded, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	encoded = append(encoded, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-config-*.json")
	if err != nil {
		return fmt.Errorf("config: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: chmod temp: %w", err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: rename temp: %w", err)
	}
	success = true
	return nil
}

// ApplyChanges copies onto base every key that differs between prev and
// next. It lets a caller persist only what the user changed in a config that
// also carries session overrides.
func ApplyChanges(base, prev, next Config) Config {
	if next.Theme != prev.Theme {
		base.Theme = next.Theme
	}
	if next.PrimaryColor != prev.PrimaryColor {
		base.PrimaryColor = next.PrimaryColor
	}
	if next.RefreshInterval != prev.RefreshInterval {
		base.RefreshInterval = next.RefreshInterval
	}
	if next.StreamingMode != prev.StreamingMode {
		base.StreamingMode = next.StreamingMode
	}
	if next.ShowGPU != prev.ShowGPU {
		base.ShowGPU = next.ShowGPU
	}
	if next.ShowTemp != prev.ShowTemp {
		base.ShowTemp = next.ShowTemp
	}
	if next.Autostart != prev.Autostart {
		base.Autostart = next.Autostart
	}
	return base
}

// ApplyEnv applies environment overrides:
//
//	MOONLIGHT_INTERVAL  duration ("1500ms", "2s") or bare milliseconds
//	MOONLIGHT_GPU=0     hide and stop sampling the GPU
//	MOONLIGHT_TEMP=0    hide and stop sampling temperature
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("MOONLIGHT_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			cfg.RefreshInterval = int(parsed / time.Millisecond)
		} else if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.RefreshInterval = ms
		}
	}
	if v := os.Getenv("MOONLIGHT_GPU"); v == "0" {
		cfg.ShowGPU = false
	}
	if v := os.Getenv("MOONLIGHT_TEMP"); v == "0" {
		cfg.ShowTemp = false
	}
	return cfg
}
