package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wayfire-ipc/client"
)

// query builds a command that prints whatever fn returns.
func query(use, short string, args cobra.PositionalArgs, fn func(ctx context.Context, c *client.Client, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			a := getApp(cmd)
			v, err := fn(cmd.Context(), a.client, argv)
			if err != nil {
				return err
			}
			return a.print(cmd, v)
		},
	}
}

func newQueryCmds() []*cobra.Command {
	views := query("views", "List views", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
		return c.ListViews(ctx)
	})
	var toplevel bool
	views.Flags().BoolVar(&toplevel, "toplevel", false, "only views with role toplevel")
	views.RunE = func(cmd *cobra.Command, _ []string) error {
		a := getApp(cmd)
		all, err := a.client.ListViews(cmd.Context())
		if err != nil {
			return err
		}
		if toplevel {
			kept := all[:0]
			for _, v := range all {
				if v.Role == "toplevel" {
					kept = append(kept, v)
				}
			}
			all = kept
		}
		return a.print(cmd, all)
	}

	return []*cobra.Command{
		views,
		query("outputs", "List outputs", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ListOutputs(ctx)
		}),
		query("wsets", "List workspace sets", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ListWorkspaceSets(ctx)
		}),
		query("devices", "List input devices", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ListInputDevices(ctx)
		}),
		query("configuration", "Show compositor build configuration", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.Configuration(ctx)
		}),
		query("option NAME", "Read a config option, e.g. core/plugins", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			return c.OptionValue(ctx, args[0])
		}),
		query("output ID", "Show one output", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("output id", args[0])
			if err != nil {
				return nil, err
			}
			return c.Output(ctx, id)
		}),
		query("view ID", "Show one view", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			return c.View(ctx, id)
		}),
		query("wset ID", "Show one workspace set", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("wset id", args[0])
			if err != nil {
				return nil, err
			}
			return c.WorkspaceSetInfo(ctx, id)
		}),
		query("focused-view", "Show the focused view", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.FocusedView(ctx)
		}),
		query("focused-output", "Show the focused output", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.FocusedOutput(ctx)
		}),
		query("cursor", "Show the cursor position", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			x, y, err := c.CursorPosition(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]float64{"x": x, "y": y}, nil
		}),
		query("alpha VIEW", "Show the opacity of a view", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			return c.ViewAlpha(ctx, id)
		}),
		query("layout WSET X Y", "Show the simple-tile layout of a workspace", cobra.ExactArgs(3), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			ids, err := parseIDs([]string{"wset", "x", "y"}, args)
			if err != nil {
				return nil, err
			}
			return c.TilingLayout(ctx, ids[0], ids[1], ids[2])
		}),
		query("keyboard", "Show the keyboard layout state", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.KeyboardLayout(ctx)
		}),
		query("keyboard-set INDEX", "Switch to keyboard layout INDEX", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			idx, err := parseID("layout index", args[0])
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				return nil, fmt.Errorf("layout index must not be negative")
			}
			return c.SetKeyboardLayout(ctx, idx)
		}),
	}
}
