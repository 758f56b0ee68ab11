package components

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// StatCard renders a single dashboard metric tile.
func StatCard(label, value, delta, caption string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<div class=\"stat-card\"><span class=\"stat-label\">")
		b.WriteString(templ.EscapeString(label))
		b.WriteString("</span><span class=\"stat-value\">")
		b.WriteString(templ.EscapeString(value))
		b.WriteString("</span>")
		if delta != "" {
			b.WriteString("<span class=\"stat-delta\">")
			b.WriteString(templ.EscapeString(delta))
			b.WriteString("</span>")
		}
		if caption != "" {
			b.WriteString("<span class=\"stat-caption\">")
			b.WriteString(templ.EscapeString(caption))
			b.WriteString("</span>")
		}
		b.WriteString("</div>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ActivityEntry is one row of the production activity table.
type ActivityEntry struct {
	Name      string
	Reference string
	Quantity  string
	Progress  string
	UpdatedAt string
	Status    string
}

// ActivityTable renders recent production activity as a table.
func ActivityTable(entries []ActivityEntry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<table class=\"activity-table\"><thead><tr><th>Item</th><th>Reference</th><th>Quantity</th><th>Progress</th><th>Updated</th><th>Status</th></tr></thead><tbody>")
		for _, entry := range entries {
			b.WriteString("<tr><td>")
			b.WriteString(templ.EscapeString(entry.Name))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(entry.Reference))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(entry.Quantity))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(entry.Progress))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(entry.UpdatedAt))
			b.WriteString("</td><td>")
			b.WriteString(templ.EscapeString(entry.Status))
			b.WriteString("</td></tr>")
		}
		b.WriteString("</tbody></table>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// SidebarLink is one navigation entry in the workspace sidebar.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

// SidebarData groups the navigation entries and the active section key.
type SidebarData struct {
	Active   string
	Features []SidebarLink
}

// Sidebar renders the workspace navigation column.
func Sidebar(data SidebarData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<aside class=\"sidebar\"><nav>")
		for _, link := range data.Features {
			b.WriteString("<a href=\"")
			b.WriteString(templ.EscapeString(link.Path))
			b.WriteString("\" data-state=\"")
			b.WriteString(linkState(link.Section, data.Active))
			b.WriteString("\" data-nav-section=\"")
			b.WriteString(templ.EscapeString(link.Section))
			b.WriteString("\">")
			b.WriteString(templ.EscapeString(link.Label))
			b.WriteString("</a>")
		}
		b.WriteString("</nav></aside>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func linkState(section, active string) string {
	if section == active {
		return "active"
	}
	return "inactive"
}
