package probe

import (
	"fmt"
	"strings"

	"github.com/martinsuchenak/thingprobe/internal/model"
)

// Summary renders a description for humans: id, title, schemas, security,
// links and properties.
func Summary(desc model.Description) string {
	var b strings.Builder

	id, _ := desc.Text("id")
	title, _ := desc.Text("title")
	fmt.Fprintf(&b, "ID:         %s\n", id)
	fmt.Fprintf(&b, "Title:      %s\n", title)
	if ctx := desc.Context(); ctx != "" {
		fmt.Fprintf(&b, "Context:    %s\n", ctx)
	}
	if types := desc.Types(); len(types) > 0 {
		fmt.Fprintf(&b, "Types:      %s\n", strings.Join(types, ", "))
	}

	if schemes := desc.Security(); len(schemes) > 0 {
		names := make([]string, 0, len(schemes))
		for _, sc := range schemes {
			if sc.Scheme != "" {
				names = append(names, sc.Name+" ("+sc.Scheme+")")
			} else {
				names = append(names, sc.Name)
			}
		}
		fmt.Fprintf(&b, "Security:   %s\n", strings.Join(names, ", "))
	}

	if links := desc.Links(); len(links) > 0 {
		b.WriteString("Links:\n")
		for _, l := range links {
			rel := l.Rel
			if rel == "" {
				rel = "-"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", rel, l.Href)
		}
	}

	props := desc.Properties()
	if len(props) == 0 {
		b.WriteString("Properties: none\n")
		return b.String()
	}

	b.WriteString("Properties:\n")
	for _, p := range props {
		attrs := []string{}
		if p.Type != "" {
			attrs = append(attrs, p.Type)
		}
		if p.SchemaType != "" {
			attrs = append(attrs, p.SchemaType)
		}
		if p.Unit != "" {
			attrs = append(attrs, p.Unit)
		}
		switch {
		case p.Minimum != "" && p.Maximum != "":
			attrs = append(attrs, p.Minimum+".."+p.Maximum)
		case p.Minimum != "":
			attrs = append(attrs, "min "+p.Minimum)
		case p.Maximum != "":
			attrs = append(attrs, "max "+p.Maximum)
		}
		if p.ReadOnly {
			attrs = append(attrs, "read-only")
		}

		line := "  - " + p.Key
		if p.Title != "" && p.Title != p.Key {
			line += " \"" + p.Title + "\""
		}
		if len(attrs) > 0 {
			line += " (" + strings.Join(attrs, ", ") + ")"
		}
		if p.Href != "" {
			line += " " + p.Href
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
