package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wayfire-ipc/client"
)

// alphaToggler flips the focused view between its original opacity and fully
// opaque. The first opacity seen for a view is remembered as its default.
type alphaToggler struct {
	defaults map[int64]float64
}

func newAlphaToggler() *alphaToggler {
	return &alphaToggler{defaults: make(map[int64]float64)}
}

func (t *alphaToggler) toggle(ctx context.Context, c *client.Client) (int64, float64, error) {
	view, err := c.FocusedView(ctx)
	if err != nil {
		return 0, 0, err
	}
	current, err := c.ViewAlpha(ctx, view.ID)
	if err != nil {
		return view.ID, 0, err
	}

	def, ok := t.defaults[view.ID]
	if !ok {
		def = current.Alpha
		t.defaults[view.ID] = def
	}

	next := def
	if def == current.Alpha {
		next = 1
	}
	if _, err := c.SetViewAlpha(ctx, view.ID, next); err != nil {
		return view.ID, 0, err
	}
	return view.ID, next, nil
}

func newToggleAlphaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-alpha",
		Short: "Toggle the focused view's opacity each time SIGUSR1 arrives",
		Long: "Runs until interrupted. Trigger a toggle with:\n\n" +
			"  kill -USR1 $(pidof wfctl)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp(cmd)
			ctx := cmd.Context()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGUSR1)
			defer signal.Stop(sig)

			t := newAlphaToggler()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-sig:
					id, alpha, err := t.toggle(ctx, a.client)
					if err != nil {
						// A dead connection will not recover; anything else is per-view.
						if a.client.Err() != nil {
							return err
						}
						a.log.Warn("toggle alpha", zap.Int64("view", id), zap.Error(err))
						continue
					}
					a.log.Info("toggled alpha", zap.Int64("view", id), zap.Float64("alpha", alpha))
				}
			}
		},
	}
}
