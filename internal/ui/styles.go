package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/moonlight/internal/config"
	"github.com/Dicklesworthstone/moonlight/internal/model"
)

type palette struct {
	text    lipgloss.Color
	subtle  lipgloss.Color
	border  lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	gpu     lipgloss.Color
}

var palettes = map[config.Theme]palette{
	config.ThemeDark: {
		text:    "#ffffff",
		subtle:  "244",
		border:  "60",
		success: "#69f0ae",
		warning: "#ffb74d",
		danger:  "#ff6b6b",
		gpu:     "#ba68c8",
	},
	config.ThemeLight: {
		text:    "#212121",
		subtle:  "#757575",
		border:  "#b0bec5",
		success: "#2e7d32",
		warning: "#ef6c00",
		danger:  "#c62828",
		gpu:     "#7b1fa2",
	},
}

type styles struct {
	palette
	accent lipgloss.Color
	title  lipgloss.Style
	label  lipgloss.Style
	subtle lipgloss.Style
	value  lipgloss.Style
	card   lipgloss.Style
}

func newStyles(cfg config.Config) styles {
	p, ok := palettes[cfg.Theme]
	if !ok {
		p = palettes[config.ThemeDark]
	}
	accent := lipgloss.Color(cfg.PrimaryColor)
	return styles{
		palette: p,
		accent:  accent,
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		label:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		subtle:  lipgloss.NewStyle().Foreground(p.subtle),
		value:   lipgloss.NewStyle().Foreground(p.text),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1).
			MarginRight(1),
	}
}

// levelColor buckets a percentage; GPU gauges use their own hue while
// below the warning threshold.
func (s styles) levelColor(pct float64, gpu bool) lipgloss.Color {
	switch model.LevelOf(pct) {
	case model.LevelCritical:
		return s.danger
	case model.LevelWarning:
		return s.warning
	}
	if gpu {
		return s.gpu
	}
	return s.success
}

func (s styles) statusColor(st model.Status) lipgloss.Color {
	switch st {
	case model.StatusDegraded:
		return s.danger
	case model.StatusHighLoad:
		return s.warning
	}
	return s.success
}
