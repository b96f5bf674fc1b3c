package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"

	"github.com/Dicklesworthstone/moonlight/internal/model"
)

const (
	gaugeWidth = 24
	gaugeFill  = "█"
	gaugeEmpty = "░"
	na         = "N/A"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func (m *Model) View() string {
	st := m.styles
	if !m.ready {
		return st.subtle.Render("moonlight: collecting first sample…")
	}
	s := m.latest.Snapshot
	h := m.latest.History

	header := st.title.Render("Moonlight") + "  " +
		st.subtle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")) + "  " +
		m.statusLine(s)

	cpuBody := m.gauge(s.CPU.Percent, false) + "\n" +
		st.subtle.Render("load ") + orNA(s.CPU.Load1, "%.2f")
	memBody := m.gauge(s.Memory.Percent, false) + "\n" +
		st.subtle.Render(fmt.Sprintf("free %s / %s", bytesOr(s.Memory.FreeBytes), bytesOr(s.Memory.TotalBytes)))
	diskBody := m.gauge(s.Disk.Percent, false) + "\n" +
		st.subtle.Render(fmt.Sprintf("%s free %s", s.Disk.Path, bytesOr(s.Disk.FreeBytes)))

	columns := []string{
		m.card("CPU", cpuBody),
		m.card("Memory", memBody),
		m.card("Disk", diskBody),
	}
	if m.cfg.ShowGPU {
		name := s.GPU.Name
		if name == "" {
			name = "GPU"
		}
		gpuBody := m.gauge(s.GPU.Percent, true) + "\n" +
			st.subtle.Render(fmt.Sprintf("vram %s  %s", orNA(s.GPU.MemoryPercent, "%.0f%%"), orNA(s.GPU.TempC, "%.0f°C")))
		columns = append(columns, m.card(truncate(name, gaugeWidth), gpuBody))
	}
	if m.cfg.ShowTemp {
		columns = append(columns, m.card("Temp", m.tempValue(s.TempC)))
	}

	trend := m.card("History",
		st.subtle.Render("CPU ")+m.sparkline(h.CPU)+"\n"+
			st.subtle.Render("MEM ")+m.sparkline(h.Memory))
	netBody := fmt.Sprintf("↑ %s\n↓ %s", rateOr(s.Network.SentRate), rateOr(s.Network.RecvRate))
	selfBody := fmt.Sprintf("pid %d\ncpu %.3f%%  mem %s (%s)",
		s.Self.PID, s.Self.CPUPercent, orNA(s.Self.MemoryPercent, "%.3f%%"), units.BytesSize(float64(s.Self.MemoryBytes)))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, trend, m.card("Network", netBody), m.card("Moonlight", selfBody))
	line3 := m.card("Top processes", renderTable(s.Top))

	footer := m.help.View(m.keys)
	if m.cfg.StreamingMode {
		footer = st.subtle.Render("streaming mode  ") + footer
	}
	if m.saveErr != nil {
		footer += "\n" + lipgloss.NewStyle().Foreground(st.danger).Render("config not saved: "+m.saveErr.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, line1, line2, line3, footer)
}

func (m *Model) statusLine(s model.Snapshot) string {
	mark := "●"
	if s.Status != model.StatusMonitoring {
		mark = "▲"
	}
	text := mark + " " + s.Status.String()
	if len(s.Failed) > 0 {
		text += " (" + strings.Join(s.Failed, ", ") + ")"
	}
	return lipgloss.NewStyle().Foreground(m.styles.statusColor(s.Status)).Render(text)
}

func (m *Model) card(title, body string) string {
	return m.styles.card.Render(m.styles.label.Render(title) + "\n" + body)
}

func (m *Model) gauge(v model.Opt[float64], gpu bool) string {
	if !v.Valid {
		return m.styles.subtle.Render("[" + strings.Repeat(gaugeEmpty, gaugeWidth) + "]   " + na)
	}
	color := m.styles.levelColor(v.Value, gpu)
	return lipgloss.NewStyle().Foreground(color).Render(gaugeBar(v.Value, gaugeWidth))
}

func (m *Model) tempValue(v model.Opt[float64]) string {
	if !v.Valid {
		return m.styles.subtle.Render(na)
	}
	return lipgloss.NewStyle().Foreground(m.styles.levelColor(v.Value, false)).Render(fmt.Sprintf("%.1f°C", v.Value))
}

func (m *Model) sparkline(values []float64) string {
	if len(values) == 0 {
		return m.styles.subtle.Render("waiting for samples")
	}
	last := values[len(values)-1]
	return lipgloss.NewStyle().Foreground(m.styles.levelColor(last, false)).Render(sparkline(values))
}

// Helpers
func gaugeBar(pct float64, width int) string {
	pct = clamp(pct)
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

// sparkline draws one glyph per value on a fixed 0-100 scale.
func sparkline(values []float64) string {
	var b strings.Builder
	top := len(sparkRunes) - 1
	for _, v := range values {
		i := int(math.Round(clamp(v) / 100 * float64(top)))
		b.WriteRune(sparkRunes[i])
	}
	return b.String()
}

func renderTable(rows []model.ProcessInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %7s %6s %6s", "name", "pid", "cpu%", "mem%")
	if len(rows) == 0 {
		b.WriteString("\n" + na)
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%-25s %7d %6.1f %6.1f", r.Name, r.PID, r.CPUPercent, r.MemoryPercent)
	}
	return b.String()
}

func orNA(v model.Opt[float64], format string) string {
	if !v.Valid {
		return na
	}
	return fmt.Sprintf(format, v.Value)
}

func bytesOr(v model.Opt[uint64]) string {
	if !v.Valid {
		return na
	}
	return units.BytesSize(float64(v.Value))
}

func rateOr(v model.Opt[float64]) string {
	if !v.Valid {
		return na
	}
	return units.BytesSize(v.Value) + "/s"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func clamp(pct float64) float64 {
	switch {
	case math.IsNaN(pct) || pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
