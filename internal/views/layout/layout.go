package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout renders the application shell: document head, optional sidebar and
// the main content region. Components are composed rather than templated so
// the shell can be exercised directly from Go tests.
func Layout(title string, sidebar, content templ.Component, sidebarVisible bool, theme ThemeDefinition) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html><html lang=\"pt-BR\" data-theme=\""+templ.EscapeString(theme.ID)+"\"><head><meta charset=\"utf-8\"><meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>"+templ.EscapeString(title)+"</title><link rel=\"stylesheet\" href=\"/assets/app.css\"><script src=\"/assets/htmx.min.js\" defer></script></head><body class=\""+templ.EscapeString(bodyClass(theme))+"\">"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<div class=\""+bodyWrapperClass(sidebarVisible)+"\">"); err != nil {
			return err
		}
		if sidebarVisible && sidebar != nil {
			if err := sidebar.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<main class=\""+mainClass(sidebarVisible)+"\">"); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main></div></body></html>")
		return err
	})
}

func bodyClass(theme ThemeDefinition) string {
	switch theme.ID {
	case "midnight":
		return "layout-body layout-body-dark"
	case "ovenlight":
		return "layout-body layout-body-warm"
	default:
		return "layout-body layout-body-light"
	}
}

func bodyWrapperClass(sidebarVisible bool) string {
	if sidebarVisible {
		return "layout-wrapper with-sidebar"
	}
	return "layout-wrapper"
}

func mainClass(sidebarVisible bool) string {
	if sidebarVisible {
		return "layout-main beside-sidebar"
	}
	return "layout-main"
}
