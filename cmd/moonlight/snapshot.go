package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/moonlight/internal/model"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one measured sample and exit",
		Long: `Takes a baseline sample, waits one refresh interval so CPU and rate
figures cover a real window, then prints the second sample.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			frame, err := measure(cmd.Context(), s)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(frame)
			}
			printSnapshot(cmd.OutOrStdout(), frame.Snapshot)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the frame as JSON")
	return cmd
}

func measure(ctx context.Context, s *session) (model.Frame, error) {
	smp, err := s.newSampler(ctx)
	if err != nil {
		return model.Frame{}, err
	}
	if s.cfg.ShowGPU {
		smp.UpdateGPU(ctx)
	}
	smp.Tick(ctx)

	select {
	case <-ctx.Done():
		return model.Frame{}, ctx.Err()
	case <-time.After(smp.Settings().Interval):
	}
	frame, _ := smp.Tick(ctx)
	return frame, nil
}

func printSnapshot(w io.Writer, s model.Snapshot) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%-12s %s\n", bold(label), value)
	}
	fmt.Fprintf(w, "%s  %s\n", bold("moonlight"), statusText(s))
	row("cpu", pctText(s.CPU.Percent)+"  load "+optText(s.CPU.Load1, "%.2f"))
	row("memory", pctText(s.Memory.Percent)+fmt.Sprintf("  free %s / %s", sizeText(s.Memory.FreeBytes), sizeText(s.Memory.TotalBytes)))
	row("disk", pctText(s.Disk.Percent)+fmt.Sprintf("  %s free %s", s.Disk.Path, sizeText(s.Disk.FreeBytes)))
	row("network", fmt.Sprintf("up %s/s  down %s/s", rateText(s.Network.SentRate), rateText(s.Network.RecvRate)))
	if s.GPU.Name != "" || s.GPU.Percent.Valid {
		row("gpu", pctText(s.GPU.Percent)+"  "+s.GPU.Name)
	}
	row("temperature", optText(s.TempC, "%.1f°C"))
	row("self", fmt.Sprintf("pid %d  cpu %.3f%%  mem %s", s.Self.PID, s.Self.CPUPercent, optText(s.Self.MemoryPercent, "%.3f%%")))

	fmt.Fprintf(w, "\n%-25s %7s %6s %6s\n", bold("process"), "pid", "cpu%", "mem%")
	for _, p := range s.Top {
		fmt.Fprintf(w, "%-25s %7d %6.1f %6.1f\n", p.Name, p.PID, p.CPUPercent, p.MemoryPercent)
	}
}

func statusText(s model.Snapshot) string {
	switch s.Status {
	case model.StatusDegraded:
		return red(s.Status.String() + " (" + strings.Join(s.Failed, ", ") + ")")
	case model.StatusHighLoad:
		return yellow(s.Status.String())
	}
	return green(s.Status.String())
}

func pctText(v model.Opt[float64]) string {
	if !v.Valid {
		return yellow("N/A")
	}
	text := fmt.Sprintf("%5.1f%%", v.Value)
	switch model.LevelOf(v.Value) {
	case model.LevelCritical:
		return red(text)
	case model.LevelWarning:
		return yellow(text)
	}
	return green(text)
}

func optText(v model.Opt[float64], format string) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf(format, v.Value)
}

func sizeText(v model.Opt[uint64]) string {
	if !v.Valid {
		return "N/A"
	}
	return units.BytesSize(float64(v.Value))
}

func rateText(v model.Opt[float64]) string {
	if !v.Valid {
		return "N/A"
	}
	return units.BytesSize(v.Value)
}

