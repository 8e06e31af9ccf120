package client

import (
	"context"
	"fmt"

	"wayfire-ipc/message"
)

func (c *Client) ListViews(ctx context.Context) ([]View, error) {
	return callDecode[[]View](ctx, c, "window-rules/list-views", nil)
}

func (c *Client) ListOutputs(ctx context.Context) ([]Output, error) {
	return callDecode[[]Output](ctx, c, "window-rules/list-outputs", nil)
}

func (c *Client) ListWorkspaceSets(ctx context.Context) ([]WorkspaceSet, error) {
	return callDecode[[]WorkspaceSet](ctx, c, "window-rules/list-wsets", nil)
}

func (c *Client) ListInputDevices(ctx context.Context) ([]InputDevice, error) {
	return callDecode[[]InputDevice](ctx, c, "input/list-devices", nil)
}

func (c *Client) Configuration(ctx context.Context) (Configuration, error) {
	return callDecode[Configuration](ctx, c, "wayfire/configuration", nil)
}

// OptionValue reads a config option such as "core/plugins".
func (c *Client) OptionValue(ctx context.Context, option string) (OptionValue, error) {
	return callDecode[OptionValue](ctx, c, "wayfire/get-config-option", map[string]any{
		"option": option,
	})
}

func (c *Client) Output(ctx context.Context, outputID int64) (Output, error) {
	return callDecode[Output](ctx, c, "window-rules/output-info", map[string]any{
		"id": outputID,
	})
}

func (c *Client) View(ctx context.Context, viewID int64) (View, error) {
	return callField[View](ctx, c, "window-rules/view-info", map[string]any{
		"id": viewID,
	}, "info")
}

func (c *Client) FocusedView(ctx context.Context) (View, error) {
	return callField[View](ctx, c, "window-rules/get-focused-view", nil, "info")
}

func (c *Client) FocusedOutput(ctx context.Context) (Output, error) {
	return callField[Output](ctx, c, "window-rules/get-focused-output", nil, "info")
}

// CursorPosition returns the pointer position in layout coordinates. A missing
// coordinate reads as 0.
func (c *Client) CursorPosition(ctx context.Context) (x, y float64, err error) {
	// The compositor spells this one with underscores, unlike its neighbours.
	doc, err := c.Call(ctx, "window-rules/get_cursor_position", nil)
	if err != nil {
		return 0, 0, err
	}
	pos, err := doc.Field("pos")
	if err != nil {
		return 0, 0, err
	}
	x, _ = pos.Float("x")
	y, _ = pos.Float("y")
	return x, y, nil
}

func (c *Client) WorkspaceSetInfo(ctx context.Context, id int64) (message.Document, error) {
	return c.Call(ctx, "window-rules/wset-info", map[string]any{"id": id})
}

func (c *Client) ViewAlpha(ctx context.Context, viewID int64) (ViewAlpha, error) {
	return callDecode[ViewAlpha](ctx, c, "wf/alpha/get-view-alpha", map[string]any{
		"view-id": viewID,
	})
}

func (c *Client) SetViewAlpha(ctx context.Context, viewID int64, alpha float64) (message.Document, error) {
	return c.Call(ctx, "wf/alpha/set-view-alpha", map[string]any{
		"view-id": viewID,
		"alpha":   alpha,
	})
}

func tileTarget(wset, x, y int64) map[string]any {
	return map[string]any{
		"wset-index": wset,
		"workspace": map[string]any{
			"x": x,
			"y": y,
		},
	}
}

func (c *Client) TilingLayout(ctx context.Context, wset, x, y int64) (Layout, error) {
	return callField[Layout](ctx, c, "simple-tile/get-layout", tileTarget(wset, x, y), "layout")
}

func (c *Client) SetTilingLayout(ctx context.Context, wset, x, y int64, layout Layout) (message.Document, error) {
	data := tileTarget(wset, x, y)
	data["layout"] = layout
	return c.Call(ctx, "simple-tile/set-layout", data)
}

func viewState(viewID int64, state bool) map[string]any {
	return map[string]any{
		"view_id": viewID,
		"state":   state,
	}
}

func (c *Client) SetViewAlwaysOnTop(ctx context.Context, viewID int64, state bool) (message.Document, error) {
	return c.Call(ctx, "wm-actions/set-always-on-top", viewState(viewID, state))
}

func (c *Client) SetViewFullscreen(ctx context.Context, viewID int64, state bool) (message.Document, error) {
	return c.Call(ctx, "wm-actions/set-fullscreen", viewState(viewID, state))
}

func (c *Client) SetViewSticky(ctx context.Context, viewID int64, state bool) (message.Document, error) {
	return c.Call(ctx, "wm-actions/set-sticky", viewState(viewID, state))
}

func (c *Client) SendViewToBack(ctx context.Context, viewID int64, state bool) (message.Document, error) {
	return c.Call(ctx, "wm-actions/send-to-back", viewState(viewID, state))
}

func (c *Client) SetViewMinimized(ctx context.Context, viewID int64, state bool) (message.Document, error) {
	return c.Call(ctx, "wm-actions/set-minimized", viewState(viewID, state))
}

func (c *Client) ToggleShowDesktop(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "wm-actions/toggle_showdesktop", nil)
}

func (c *Client) ExpoToggle(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "expo/toggle", nil)
}

func (c *Client) ScaleToggle(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "scale/toggle", nil)
}

// ScaleToggleAll goes through expo, which is where the compositor registers it.
func (c *Client) ScaleToggleAll(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "expo/toggle_all", nil)
}

func (c *Client) CubeActivate(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "cube/activate", nil)
}

func (c *Client) CubeRotateLeft(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "cube/rotate_left", nil)
}

func (c *Client) CubeRotateRight(ctx context.Context) (message.Document, error) {
	return c.Call(ctx, "cube/rotate_right", nil)
}

func (c *Client) ConfigureInputDevice(ctx context.Context, id int64, enabled bool) (message.Document, error) {
	return c.Call(ctx, "input/configure-device", map[string]any{
		"id":      id,
		"enabled": enabled,
	})
}

func (c *Client) CloseView(ctx context.Context, viewID int64) (message.Document, error) {
	return c.Call(ctx, "window-rules/close-view", map[string]any{"id": viewID})
}

func (c *Client) FocusView(ctx context.Context, viewID int64) (message.Document, error) {
	return c.Call(ctx, "window-rules/focus-view", map[string]any{"id": viewID})
}

// Watch subscribes this connection to events. No names means all events.
func (c *Client) Watch(ctx context.Context, events ...string) (message.Document, error) {
	data := map[string]any{}
	if len(events) > 0 {
		data["events"] = events
	}
	return c.Call(ctx, "window-rules/events/watch", data)
}

// ConfigureView moves and resizes a view, optionally onto another output.
func (c *Client) ConfigureView(ctx context.Context, viewID int64, geometry Geometry, outputID *int64) (message.Document, error) {
	data := map[string]any{
		"id":       viewID,
		"geometry": geometry,
	}
	if outputID != nil {
		data["output_id"] = *outputID
	}
	return c.Call(ctx, "window-rules/configure-view", data)
}

// AssignSlot snaps a view into a grid slot such as "slot_l" or "slot_tr".
func (c *Client) AssignSlot(ctx context.Context, viewID int64, slot string) (message.Document, error) {
	if slot == "" {
		return message.Document{}, fmt.Errorf("%w: empty grid slot", ErrInvalidArgument)
	}
	return c.Call(ctx, "grid/"+slot, map[string]any{"view_id": viewID})
}

// SetWorkspace switches outputID to workspace (x, y), taking viewID along.
func (c *Client) SetWorkspace(ctx context.Context, x, y, viewID, outputID int64) (message.Document, error) {
	return c.Call(ctx, "vswitch/set-workspace", map[string]any{
		"x":         x,
		"y":         y,
		"output-id": outputID,
		"view-id":   viewID,
	})
}

// SendViewToWorkspace moves a view without switching the visible workspace.
func (c *Client) SendViewToWorkspace(ctx context.Context, viewID, x, y int64) (message.Document, error) {
	return c.Call(ctx, "vswitch/send-view", map[string]any{
		"view-id": viewID,
		"x":       x,
		"y":       y,
	})
}

func (c *Client) KeyboardLayout(ctx context.Context) (KeyboardState, error) {
	return callDecode[KeyboardState](ctx, c, "wayfire/get-keyboard-state", nil)
}

func (c *Client) SetKeyboardLayout(ctx context.Context, index int64) (message.Document, error) {
	return c.Call(ctx, "wayfire/set-keyboard-state", map[string]any{"layout-index": index})
}

func (c *Client) CreateHeadlessOutput(ctx context.Context, width, height uint32) (message.Document, error) {
	return c.Call(ctx, "wayfire/create-headless-output", map[string]any{
		"width":  width,
		"height": height,
	})
}

// DestroyHeadlessOutput removes a headless output by name or, failing that, by id.
func (c *Client) DestroyHeadlessOutput(ctx context.Context, name string, outputID *int64) (message.Document, error) {
	data := map[string]any{}
	switch {
	case name != "":
		data["output"] = name
	case outputID != nil:
		data["output-id"] = *outputID
	default:
		return message.Document{}, fmt.Errorf("%w: either output name or output id must be provided", ErrInvalidArgument)
	}
	return c.Call(ctx, "wayfire/destroy-headless-output", data)
}
