package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Theme != ThemeDark {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	if cfg.RefreshInterval != 2000 {
		t.Errorf("RefreshInterval = %d, want 2000", cfg.RefreshInterval)
	}
	if cfg.StreamingMode || cfg.Autostart {
		t.Error("expected streaming mode and autostart off")
	}
	if !cfg.ShowGPU || !cfg.ShowTemp {
		t.Error("expected GPU and temperature shown")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	if cfg.Interval() != 2*time.Second {
		t.Errorf("Interval = %v", cfg.Interval())
	}
}

func TestLoadMissingFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moonlight", "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
	raw, _ := os.ReadFile(path)
	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("created file is not JSON: %v", err)
	}
	for _, key := range []string{"theme", "primary_color", "refresh_interval", "streaming_mode", "show_gpu", "show_temp", "autostart"} {
		if _, ok := onDisk[key]; !ok {
			t.Errorf("created file missing key %q", key)
		}
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	tests := []struct {
		name string
		body string
		want func() Config
	}{
		{
			name: "only refresh interval",
			body: `{"refresh_interval": 500}`,
			want: func() Config {
				c := Default()
				c.RefreshInterval = 500
				return c
			},
		},
		{
			name: "theme missing",
			body: `{"primary_color": "#ff0000", "refresh_interval": 750, "streaming_mode": true, "show_gpu": false, "show_temp": false, "autostart": true}`,
			want: func() Config {
				return Config{
					Theme:           ThemeDark,
					PrimaryColor:    "#ff0000",
					RefreshInterval: 750,
					StreamingMode:   true,
					ShowGPU:         false,
					ShowTemp:        false,
					Autostart:       true,
				}
			},
		},
		{
			name: "unknown keys ignored",
			body: `{"theme": "light", "window_geometry": "850x650"}`,
			want: func() Config {
				c := Default()
				c.Theme = ThemeLight
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if want := tt.want(); got != want {
				t.Errorf("Load = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLoadRefreshIntervalOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"refresh_interval": 500}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 500 || cfg.Theme != "dark" || cfg.StreamingMode {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadMalformedFallsBack(t *testing.T) {
	for _, body := range []string{`{"theme": "dark",`, `[]`, `{"refresh_interval": "fast"}`} {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: err = %v, want ErrMalformed", body, err)
		}
		if cfg != Default() {
			t.Errorf("%s: cfg = %+v, want defaults", body, cfg)
		}
		raw, _ := os.ReadFile(path)
		if string(raw) != body {
			t.Errorf("%s: malformed file was rewritten", body)
		}
	}
}

func TestLoadInvalidValuesReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"theme": "solarized", "primary_color": "blue", "refresh_interval": -5, "show_gpu": false}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	want := Default()
	want.ShowGPU = false
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	in := Config{
		Theme:           ThemeLight,
		PrimaryColor:    "#abc",
		RefreshInterval: 1234,
		StreamingMode:   true,
		ShowGPU:         false,
		ShowTemp:        true,
		Autostart:       true,
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestSetStreamingMode(t *testing.T) {
	cfg := Default()
	cfg.SetStreamingMode(true)
	if !cfg.StreamingMode || cfg.RefreshInterval != StreamingInterval {
		t.Errorf("on: %+v", cfg)
	}
	cfg.SetStreamingMode(false)
	if cfg.StreamingMode || cfg.RefreshInterval != NormalInterval {
		t.Errorf("off: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		interval int
		gpu      bool
		temp     bool
	}{
		{"none", nil, 2000, true, true},
		{"duration", map[string]string{"MOONLIGHT_INTERVAL": "1500ms"}, 1500, true, true},
		{"bare millis", map[string]string{"MOONLIGHT_INTERVAL": "750"}, 750, true, true},
		{"garbage ignored", map[string]string{"MOONLIGHT_INTERVAL": "soon"}, 2000, true, true},
		{"negative ignored", map[string]string{"MOONLIGHT_INTERVAL": "-1s"}, 2000, true, true},
		{"toggles", map[string]string{"MOONLIGHT_GPU": "0", "MOONLIGHT_TEMP": "0"}, 2000, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"MOONLIGHT_INTERVAL", "MOONLIGHT_GPU", "MOONLIGHT_TEMP"} {
				t.Setenv(k, tt.env[k])
			}
			cfg := ApplyEnv(Default())
			if cfg.RefreshInterval != tt.interval || cfg.ShowGPU != tt.gpu || cfg.ShowTemp != tt.temp {
				t.Errorf("cfg = %+v", cfg)
			}
		})
	}
}

func TestWatchDeliversChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 8)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, nil, func(c Config) { got <- c }) }()

	want := Default()
	want.Theme = ThemeLight
	want.RefreshInterval = 900

	// The watcher registers asynchronously; keep saving until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c == want {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Watch: %v", err)
				}
				return
			}
		case <-tick.C:
			if err := Save(path, want); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 8)
	go func() { _ = Watch(ctx, path, nil, func(c Config) { got <- c }) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"theme":`), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		t.Errorf("malformed file delivered %+v", c)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestApplyChanges(t *testing.T) {
	base := Default()
	prev := Default()
	prev.RefreshInterval = 100
	prev.ShowGPU = false

	next := prev
	next.Theme = ThemeLight
	next.Autostart = true

	got := ApplyChanges(base, prev, next)
	want := Default()
	want.Theme = ThemeLight
	want.Autostart = true
	if got != want {
		t.Errorf("ApplyChanges = %+v, want %+v", got, want)
	}
	if got := ApplyChanges(base, prev, prev); got != base {
		t.Errorf("no changes altered base: %+v", got)
	}
}
