package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/moonlight/internal/config"
	"github.com/Dicklesworthstone/moonlight/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOONLIGHT_LOG_FILE", filepath.Join(t.TempDir(), "moonlight.log"))
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	out, err := run(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("path = %q, want %q", out, path)
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(path, []byte(`{"refresh_interval": 500}`), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "config", "show", "--config", path, "--no-gpu")
	if err != nil {
		t.Fatal(err)
	}
	var got config.Config
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.RefreshInterval != 500 || got.ShowGPU || !got.ShowTemp {
		t.Errorf("config = %+v", got)
	}

	out, err = run(t, "config", "show", "--config", path, "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"refresh_interval: 500", "theme: dark", "show_gpu: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "config", "show", "--config", path, "--format", "toml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestConfigReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(path, []byte(`{"theme": "light"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "config", "reset", "--config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != config.Default() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestOverride(t *testing.T) {
	t.Setenv("MOONLIGHT_TEMP", "0")
	s := &session{opts: &options{interval: 750 * time.Millisecond, noGPU: true}}
	got := s.override(config.Default())
	if got.RefreshInterval != 750 || got.ShowGPU || got.ShowTemp {
		t.Errorf("override = %+v", got)
	}
}

func TestPersistKeepsOverridesOffDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	file, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s := &session{
		opts: &options{interval: 100 * time.Millisecond, noGPU: true},
		path: path,
		file: file,
	}
	s.cfg = s.override(file)

	next := s.cfg
	next.Theme = config.ThemeLight
	got, err := s.persist(next)
	if err != nil {
		t.Fatal(err)
	}
	if got.Theme != config.ThemeLight || got.ShowGPU || got.RefreshInterval != 100 {
		t.Errorf("effective = %+v, want light theme with overrides kept", got)
	}

	onDisk, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := config.Default()
	want.Theme = config.ThemeLight
	if onDisk != want {
		t.Errorf("saved = %+v, want %+v", onDisk, want)
	}

	// Toggling an overridden key persists the user's choice but the
	// override still holds for this run.
	next = got
	next.ShowGPU = true
	got, err = s.persist(next)
	if err != nil {
		t.Fatal(err)
	}
	if got.ShowGPU {
		t.Error("--no-gpu lost for the running session")
	}
	if onDisk, _ = config.Load(path); !onDisk.ShowGPU {
		t.Error("show_gpu not persisted")
	}
}

func TestPrintSnapshot(t *testing.T) {
	snap := model.Snapshot{
		CPU:    model.CPU{Percent: model.Some(12.5), Load1: model.Some(0.25)},
		Disk:   model.Disk{Path: "/"},
		Self:   model.Self{PID: 42, CPUPercent: 0.01},
		Top:    []model.ProcessInfo{{PID: 7, Name: "postgres", CPUPercent: 3}},
		Status: model.StatusDegraded,
		Failed: []string{"memory"},
	}
	var buf bytes.Buffer
	printSnapshot(&buf, snap)
	out := buf.String()
	for _, want := range []string{"12.5%", "load 0.25", "degraded (memory)", "N/A", "pid 42", "mem N/A", "postgres"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "gpu") {
		t.Error("gpu row printed without a GPU")
	}
}
