package layout

import (
	"sort"

	"padoca/models"
)

// ThemeDefinition describes a visual theme that can be applied to the workspace layout.
type ThemeDefinition struct {
	ID          string
	Label       string
	Description string
}

var themeRegistry = map[string]ThemeDefinition{
	models.ThemeCounter: {
		ID:          models.ThemeCounter,
		Label:       "Counter",
		Description: "Bright storefront canvas with charcoal typography.",
	},
	models.ThemeOvenlight: {
		ID:          models.ThemeOvenlight,
		Label:       "Ovenlight",
		Description: "Warm amber workspace reminiscent of the bakehouse.",
	},
	models.ThemeMidnight: {
		ID:          models.ThemeMidnight,
		Label:       "Midnight",
		Description: "Dark mode for the pre-dawn production shift.",
	},
}

// ThemeByID returns a definition for the provided identifier, falling back to the default theme.
func ThemeByID(id string) ThemeDefinition {
	if def, ok := themeRegistry[id]; ok {
		return def
	}
	return themeRegistry[models.DefaultTheme]
}

// ThemeOptions exposes all theme definitions sorted by label for form rendering.
func ThemeOptions() []ThemeDefinition {
	options := make([]ThemeDefinition, 0, len(themeRegistry))
	for _, def := range themeRegistry {
		options = append(options, def)
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Label < options[j].Label
	})
	return options
}
