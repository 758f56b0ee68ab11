package theme

import "strings"

// Option represents a selectable theme exposed to the UI.
type Option struct {
	Value string
	Label string
}

// WorkspaceTheme contains resolved styling primitives for the application shell.
type WorkspaceTheme struct {
	Key                   string
	BodyClass             string
	ShellClass            string
	PanelSurfaceClass     string
	PanelSoftSurfaceClass string
	BorderStrongClass     string
	BorderSoftClass       string
	AccentTextClass       string
	MutedTextClass        string
	SubtleTextClass       string
}

const (
	// DefaultKey defines the fallback theme when no user preference exists.
	DefaultKey = "counter"
)

var catalogue = map[string]WorkspaceTheme{
	"counter": {
		Key:                   "counter",
		BodyClass:             "min-h-screen bg-stone-50 text-stone-900",
		ShellClass:            "workspace-shell light",
		PanelSurfaceClass:     "workspace-surface",
		PanelSoftSurfaceClass: "workspace-surface-soft",
		BorderStrongClass:     "workspace-border-strong",
		BorderSoftClass:       "workspace-border-soft",
		AccentTextClass:       "workspace-accent",
		MutedTextClass:        "workspace-muted",
		SubtleTextClass:       "workspace-subtle",
	},
	"ovenlight": {
		Key:                   "ovenlight",
		BodyClass:             "min-h-screen bg-amber-50 text-stone-900",
		ShellClass:            "workspace-shell warm",
		PanelSurfaceClass:     "workspace-surface",
		PanelSoftSurfaceClass: "workspace-surface-soft",
		BorderStrongClass:     "workspace-border-strong",
		BorderSoftClass:       "workspace-border-soft",
		AccentTextClass:       "workspace-accent",
		MutedTextClass:        "workspace-muted",
		SubtleTextClass:       "workspace-subtle",
	},
	"midnight": {
		Key:                   "midnight",
		BodyClass:             "min-h-screen bg-slate-950 text-slate-100",
		ShellClass:            "workspace-shell dark",
		PanelSurfaceClass:     "workspace-surface",
		PanelSoftSurfaceClass: "workspace-surface-soft",
		BorderStrongClass:     "workspace-border-strong",
		BorderSoftClass:       "workspace-border-soft",
		AccentTextClass:       "workspace-accent",
		MutedTextClass:        "workspace-muted",
		SubtleTextClass:       "workspace-subtle",
	},
}

var options = []Option{
	{Value: "counter", Label: "Counter (Light)"},
	{Value: "ovenlight", Label: "Ovenlight (Warm)"},
	{Value: "midnight", Label: "Midnight (Dark)"},
}

// Resolve returns the registered theme configuration for the provided key.
func Resolve(key string) WorkspaceTheme {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// Options exposes the available theme selections for rendering in a form control.
func Options() []Option {
	return options
}
