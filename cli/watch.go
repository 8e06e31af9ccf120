package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "watch [EVENT...]",
		Short: "Subscribe to events and print them as they arrive, one JSON document per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp(cmd)
			ctx := cmd.Context()

			resp, err := a.client.Watch(ctx, args...)
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("watch: %s", resp.ErrorMessage())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for seen := 0; count <= 0 || seen < count; seen++ {
				ev, err := a.client.ReadNextEvent(ctx)
				if err != nil {
					if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
						return nil
					}
					return err
				}
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many events, 0 for no limit")
	return cmd
}
