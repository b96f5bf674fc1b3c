// Package ui renders sampler frames as a Bubble Tea dashboard and turns key
// presses into settings changes.
package ui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/moonlight/internal/config"
	"github.com/Dicklesworthstone/moonlight/internal/logging"
	"github.com/Dicklesworthstone/moonlight/internal/model"
	"github.com/Dicklesworthstone/moonlight/internal/sampler"
)

// Controller is the part of the sampler the dashboard drives.
type Controller interface {
	Refresh()
	Apply(sampler.Settings)
}

// SaveFunc persists a changed configuration and returns the configuration
// the session should run with afterwards.
type SaveFunc func(config.Config) (config.Config, error)

// Model renders live frames from the sampler.
type Model struct {
	cfg    config.Config
	ctrl   Controller
	frames <-chan model.Frame
	save   SaveFunc
	logger *slog.Logger

	latest  model.Frame
	ready   bool
	saveErr error

	keys   keyMap
	help   help.Model
	styles styles
	width  int
	height int
}

func New(cfg config.Config, ctrl Controller, frames <-chan model.Frame, save SaveFunc, logger *slog.Logger) *Model {
	return &Model{
		cfg:    cfg,
		ctrl:   ctrl,
		frames: frames,
		save:   save,
		logger: logging.OrDiscard(logger),
		keys:   keys,
		help:   help.New(),
		styles: newStyles(cfg),
		width:  120,
		height: 40,
	}
}

// Messages
type (
	frameMsg  model.Frame
	closedMsg struct{}
	savedMsg  struct {
		cfg config.Config
		err error
	}
)

// ConfigMsg carries a configuration reloaded from disk.
type ConfigMsg config.Config

func waitFrame(frames <-chan model.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return closedMsg{}
		}
		return frameMsg(f)
	}
}

func (m *Model) Init() tea.Cmd { return waitFrame(m.frames) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case frameMsg:
		m.latest = model.Frame(msg)
		m.ready = true
		return m, waitFrame(m.frames)
	case closedMsg:
		return m, tea.Quit
	case ConfigMsg:
		m.setConfig(config.Config(msg))
	case savedMsg:
		m.saveErr = msg.err
		if msg.err == nil && msg.cfg != m.cfg {
			m.setConfig(msg.cfg)
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	cfg := m.cfg
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.Refresh()
		return nil
	case key.Matches(msg, m.keys.Streaming):
		cfg.SetStreamingMode(!cfg.StreamingMode)
	case key.Matches(msg, m.keys.GPU):
		cfg.ShowGPU = !cfg.ShowGPU
	case key.Matches(msg, m.keys.Temp):
		cfg.ShowTemp = !cfg.ShowTemp
	case key.Matches(msg, m.keys.Theme):
		if cfg.Theme == config.ThemeDark {
			cfg.Theme = config.ThemeLight
		} else {
			cfg.Theme = config.ThemeDark
		}
	default:
		return nil
	}
	m.setConfig(cfg)
	return m.saveCmd(cfg)
}

// setConfig applies cfg to the view and the sampler.
func (m *Model) setConfig(cfg config.Config) {
	m.cfg = cfg
	m.styles = newStyles(cfg)
	m.ctrl.Apply(sampler.FromConfig(cfg))
	m.logger.Info("config applied", "theme", cfg.Theme, "refresh_interval", cfg.RefreshInterval,
		"streaming_mode", cfg.StreamingMode, "show_gpu", cfg.ShowGPU, "show_temp", cfg.ShowTemp)
}

func (m *Model) saveCmd(cfg config.Config) tea.Cmd {
	if m.save == nil {
		return nil
	}
	save, logger := m.save, m.logger
	return func() tea.Msg {
		effective, err := save(cfg)
		if err != nil {
			logger.Error("save config", "error", err)
		}
		return savedMsg{cfg: effective, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
// started, if set, receives the program before it runs so callers can
// inject messages such as ConfigMsg.
func Run(m *Model, started func(*tea.Program)) error {
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if started != nil {
		started(prog)
	}
	_, err := prog.Run()
	return err
}
