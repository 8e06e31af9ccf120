package client

// Geometry is a rectangle in layout coordinates.
type Geometry struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Size is a width/height pair.
type Size struct {
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// Workspace locates a workspace inside a workspace grid.
type Workspace struct {
	X          int64 `json:"x"`
	Y          int64 `json:"y"`
	GridWidth  int64 `json:"grid_width"`
	GridHeight int64 `json:"grid_height"`
}

// View is a window as reported by window-rules.
type View struct {
	ID                 int64    `json:"id"`
	PID                int64    `json:"pid"`
	Title              string   `json:"title"`
	AppID              string   `json:"app-id"`
	BaseGeometry       Geometry `json:"base-geometry"`
	Parent             int64    `json:"parent"`
	Geometry           Geometry `json:"geometry"`
	BBox               Geometry `json:"bbox"`
	OutputID           int64    `json:"output-id"`
	OutputName         string   `json:"output-name"`
	LastFocusTimestamp int64    `json:"last-focus-timestamp"`
	Role               string   `json:"role"`
	Mapped             bool     `json:"mapped"`
	Layer              string   `json:"layer"`
	TiledEdges         int64    `json:"tiled-edges"`
	Fullscreen         bool     `json:"fullscreen"`
	Minimized          bool     `json:"minimized"`
	Activated          bool     `json:"activated"`
	Sticky             bool     `json:"sticky"`
	WsetIndex          int64    `json:"wset-index"`
	MinSize            Size     `json:"min-size"`
	MaxSize            Size     `json:"max-size"`
	Focusable          bool     `json:"focusable"`
	Type               string   `json:"type"`
}

// Output is a connected monitor.
type Output struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Geometry  Geometry  `json:"geometry"`
	Workarea  Geometry  `json:"workarea"`
	WsetIndex int64     `json:"wset-index"`
	Workspace Workspace `json:"workspace"`
}

// WorkspaceSet is a set of workspaces, normally attached to one output.
type WorkspaceSet struct {
	Index      int64     `json:"index"`
	Name       string    `json:"name"`
	OutputID   int64     `json:"output-id"`
	OutputName string    `json:"output-name"`
	Workspace  Workspace `json:"workspace"`
}

// InputDevice is a keyboard, pointer, touch device and so on.
type InputDevice struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Vendor  int64  `json:"vendor"`
	Product int64  `json:"product"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// Configuration describes the running compositor build.
type Configuration struct {
	APIVersion      int64  `json:"api-version"`
	BuildCommit     string `json:"build-commit"`
	BuildBranch     string `json:"build-branch"`
	WayfireVersion  string `json:"wayfire-version"`
	PluginPath      string `json:"plugin-path"`
	PluginXMLDir    string `json:"plugin-xml-dir"`
	XwaylandDisplay string `json:"xwayland-display"`
}

// OptionValue is the answer to wayfire/get-config-option.
type OptionValue struct {
	Result  string `json:"result"`
	Value   any    `json:"value"`
	Default any    `json:"default"`
}

// ViewAlpha is the opacity of a view, 0 to 1.
type ViewAlpha struct {
	Alpha float64 `json:"alpha"`
}

// KeyboardState is the active keyboard layout.
type KeyboardState struct {
	PossibleLayouts []string `json:"possible-layouts"`
	LayoutIndex     int64    `json:"layout-index"`
}

// Layout is a node of the simple-tile tree. Leaves carry a view id; inner
// nodes carry exactly one of the split lists.
type Layout struct {
	Geometry        *Geometry `json:"geometry,omitempty"`
	Weight          float64   `json:"weight,omitempty"`
	ViewID          *int64    `json:"view-id,omitempty"`
	VerticalSplit   []Layout  `json:"vertical-split,omitempty"`
	HorizontalSplit []Layout  `json:"horizontal-split,omitempty"`
}

// Views returns the view ids of every leaf below l, depth first.
func (l Layout) Views() []int64 {
	var ids []int64
	if l.ViewID != nil {
		ids = append(ids, *l.ViewID)
	}
	for _, child := range l.VerticalSplit {
		ids = append(ids, child.Views()...)
	}
	for _, child := range l.HorizontalSplit {
		ids = append(ids, child.Views()...)
	}
	return ids
}
