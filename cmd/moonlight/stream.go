package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newStreamCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Print one JSON frame per tick until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			smp, err := s.newSampler(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for frame := range smp.Stream(ctx) {
				if err := enc.Encode(frame); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
