// Package autostart keeps an XDG autostart entry in sync with the
// "autostart" setting.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const entryName = "moonlight.desktop"

const entryTemplate = `[Desktop Entry]
Type=Application
Name=Moonlight Monitor
Comment=Host and process resource monitor
Exec=%s
Terminal=true
X-GNOME-Autostart-enabled=true
`

// DefaultPath returns ~/.config/autostart/moonlight.desktop.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("autostart: locate user config dir: %w", err)
	}
	return filepath.Join(dir, "autostart", entryName), nil
}

// Entry renders the desktop entry launching exe.
func Entry(exe string) []byte {
	return []byte(fmt.Sprintf(entryTemplate, quoteExec(exe)))
}

// Exec arguments are double-quoted. Inside quotes the reserved characters
// take a backslash, and that backslash is escaped again by the string-value
// rules, so a literal backslash becomes four. Field codes start with %.
var execEscaper = strings.NewReplacer(
	`\`, `\\\\`,
	`"`, `\\"`,
	"`", "\\\\`",
	`$`, `\\$`,
	`%`, `%%`,
)

func quoteExec(arg string) string {
	return `"` + execEscaper.Replace(arg) + `"`
}

// Sync writes the entry at path when enabled and removes it otherwise. It
// reports whether anything on disk changed.
func Sync(path string, enabled bool, exe string) (bool, error) {
	if !enabled {
		err := os.Remove(path)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("autostart: remove %s: %w", path, err)
		}
		return true, nil
	}

	want := Entry(exe)
	if have, err := os.ReadFile(path); err == nil && bytes.Equal(have, want) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("autostart: create dir: %w", err)
	}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		return false, fmt.Errorf("autostart: write %s: %w", path, err)
	}
	return true, nil
}
