package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"wayfire-ipc/client"
	"wayfire-ipc/message"
)

type viewStateFunc func(c *client.Client, ctx context.Context, viewID int64, state bool) (message.Document, error)

func newActionCmds() []*cobra.Command {
	cmds := []*cobra.Command{
		query("expo", "Toggle expo", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ExpoToggle(ctx)
		}),
		query("scale", "Toggle scale", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ScaleToggle(ctx)
		}),
		query("scale-all", "Toggle scale across all workspaces", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ScaleToggleAll(ctx)
		}),
		query("cube", "Activate the desktop cube", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.CubeActivate(ctx)
		}),
		query("cube-left", "Rotate the cube left", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.CubeRotateLeft(ctx)
		}),
		query("cube-right", "Rotate the cube right", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.CubeRotateRight(ctx)
		}),
		query("showdesktop", "Toggle show desktop", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
			return c.ToggleShowDesktop(ctx)
		}),
		query("focus VIEW", "Focus a view", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			return c.FocusView(ctx, id)
		}),
		query("close VIEW", "Close a view", cobra.ExactArgs(1), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			return c.CloseView(ctx, id)
		}),
		query("set-alpha VIEW ALPHA", "Set the opacity of a view", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			var alpha float64
			if _, err := fmt.Sscanf(args[1], "%g", &alpha); err != nil {
				return nil, fmt.Errorf("alpha: %q is not a number", args[1])
			}
			return c.SetViewAlpha(ctx, id, alpha)
		}),
		query("slot VIEW SLOT", "Snap a view into a grid slot", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			return c.AssignSlot(ctx, id, args[1])
		}),
		query("input-device ID STATE", "Enable or disable an input device", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("device id", args[0])
			if err != nil {
				return nil, err
			}
			on, err := parseState(args[1])
			if err != nil {
				return nil, err
			}
			return c.ConfigureInputDevice(ctx, id, on)
		}),
		query("headless-create WIDTH HEIGHT", "Create a headless output", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			dims, err := parseIDs([]string{"width", "height"}, args)
			if err != nil {
				return nil, err
			}
			if dims[0] <= 0 || dims[1] <= 0 || dims[0] > 1<<16 || dims[1] > 1<<16 {
				return nil, fmt.Errorf("size %dx%d out of range", dims[0], dims[1])
			}
			return c.CreateHeadlessOutput(ctx, uint32(dims[0]), uint32(dims[1]))
		}),
		newHeadlessDestroyCmd(),
		newConfigureViewCmd(),
		newWorkspaceCmd(),
		newSendToWorkspaceCmd(),
	}

	states := []struct {
		name, short string
		fn          viewStateFunc
	}{
		{"sticky", "Make a view sticky", (*client.Client).SetViewSticky},
		{"fullscreen", "Fullscreen a view", (*client.Client).SetViewFullscreen},
		{"always-on-top", "Keep a view above others", (*client.Client).SetViewAlwaysOnTop},
		{"minimize", "Minimize a view", (*client.Client).SetViewMinimized},
		{"send-to-back", "Send a view to the back", (*client.Client).SendViewToBack},
	}
	for _, s := range states {
		fn := s.fn
		cmds = append(cmds, query(s.name+" VIEW STATE", s.short+" (STATE is on|off)", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
			id, err := parseID("view id", args[0])
			if err != nil {
				return nil, err
			}
			on, err := parseState(args[1])
			if err != nil {
				return nil, err
			}
			return fn(c, ctx, id, on)
		}))
	}
	return cmds
}

func newHeadlessDestroyCmd() *cobra.Command {
	var (
		name string
		id   int64
	)
	cmd := query("headless-destroy", "Destroy a headless output by --name or --id", cobra.NoArgs, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
		var idp *int64
		if id >= 0 {
			idp = &id
		}
		return c.DestroyHeadlessOutput(ctx, name, idp)
	})
	cmd.Flags().StringVar(&name, "name", "", "output name, e.g. HEADLESS-1")
	cmd.Flags().Int64Var(&id, "id", -1, "output id")
	return cmd
}

func newConfigureViewCmd() *cobra.Command {
	var output int64
	cmd := query("configure-view VIEW X Y W H", "Move and resize a view", cobra.ExactArgs(5), func(ctx context.Context, c *client.Client, args []string) (any, error) {
		n, err := parseIDs([]string{"view id", "x", "y", "width", "height"}, args)
		if err != nil {
			return nil, err
		}
		var outp *int64
		if output >= 0 {
			outp = &output
		}
		return c.ConfigureView(ctx, n[0], client.Geometry{X: n[1], Y: n[2], Width: n[3], Height: n[4]}, outp)
	})
	cmd.Flags().Int64Var(&output, "output", -1, "move the view to this output id")
	return cmd
}

// focusedOr returns id when set, otherwise the focused view.
func focusedOr(ctx context.Context, c *client.Client, id int64) (client.View, error) {
	if id >= 0 {
		return client.View{ID: id}, nil
	}
	return c.FocusedView(ctx)
}

func newWorkspaceCmd() *cobra.Command {
	var view, output int64
	cmd := query("workspace X Y", "Switch workspace, taking a view along", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
		xy, err := parseIDs([]string{"x", "y"}, args)
		if err != nil {
			return nil, err
		}
		v, err := focusedOr(ctx, c, view)
		if err != nil {
			return nil, err
		}
		out := output
		if out < 0 {
			if view >= 0 {
				full, err := c.View(ctx, view)
				if err != nil {
					return nil, err
				}
				out = full.OutputID
			} else {
				out = v.OutputID
			}
		}
		return c.SetWorkspace(ctx, xy[0], xy[1], v.ID, out)
	})
	cmd.Flags().Int64Var(&view, "view", -1, "view to take along (default focused view)")
	cmd.Flags().Int64Var(&output, "output", -1, "output id (default the view's output)")
	return cmd
}

func newSendToWorkspaceCmd() *cobra.Command {
	var view int64
	cmd := query("send-to-workspace X Y", "Move a view to another workspace without switching", cobra.ExactArgs(2), func(ctx context.Context, c *client.Client, args []string) (any, error) {
		xy, err := parseIDs([]string{"x", "y"}, args)
		if err != nil {
			return nil, err
		}
		v, err := focusedOr(ctx, c, view)
		if err != nil {
			return nil, err
		}
		return c.SendViewToWorkspace(ctx, v.ID, xy[0], xy[1])
	})
	cmd.Flags().Int64Var(&view, "view", -1, "view id (default focused view)")
	return cmd
}
