package model

import (
	"encoding/json"
	"sort"
	"time"
)

// Target is the host and port a probe talks to. Neither value is validated.
type Target struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

func (t Target) String() string {
	return t.Host + ":" + t.Port
}

// Description is a parsed thing description. Numbers are kept as json.Number
// so values such as ids are rendered exactly as the device sent them.
type Description map[string]any

// Lookup returns the raw value stored under key.
func (d Description) Lookup(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

// Text returns the value under key rendered as a string. Strings are returned
// as-is, null as "", and anything else as its JSON encoding.
func (d Description) Text(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	return render(v), true
}

// Context returns the @context of the description, if any.
func (d Description) Context() string {
	s, _ := d["@context"].(string)
	return s
}

// Types returns the @type capability schemas.
func (d Description) Types() []string {
	return stringList(d["@type"])
}

// Links returns the top-level links of the description.
func (d Description) Links() []Link {
	return parseLinks(d["links"])
}

// Properties returns the properties of the description sorted by key.
func (d Description) Properties() []Property {
	raw, ok := d["properties"].(map[string]any)
	if !ok {
		return nil
	}

	props := make([]Property, 0, len(raw))
	for key, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p := Property{Key: key}
		p.Title, _ = m["title"].(string)
		p.Type, _ = m["type"].(string)
		p.Unit, _ = m["unit"].(string)
		p.ReadOnly, _ = m["readOnly"].(bool)
		p.SchemaType, _ = m["@type"].(string)
		if v, ok := m["minimum"]; ok {
			p.Minimum = render(v)
		}
		if v, ok := m["maximum"]; ok {
			p.Maximum = render(v)
		}
		if links := parseLinks(m["links"]); len(links) > 0 {
			p.Href = links[0].Href
		}
		props = append(props, p)
	}

	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props
}

// Security returns the schemes named by the security member, resolved
// against securityDefinitions. An undefined name keeps an empty Scheme.
func (d Description) Security() []SecurityScheme {
	names := stringList(d["security"])
	if len(names) == 0 {
		return nil
	}

	defs, _ := d["securityDefinitions"].(map[string]any)
	schemes := make([]SecurityScheme, 0, len(names))
	for _, name := range names {
		s := SecurityScheme{Name: name}
		if def, ok := defs[name].(map[string]any); ok {
			s.Scheme, _ = def["scheme"].(string)
		}
		schemes = append(schemes, s)
	}
	return schemes
}

// SecurityScheme is a named entry of securityDefinitions.
type SecurityScheme struct {
	Name   string `json:"name"`
	Scheme string `json:"scheme,omitempty"`
}

// Link is an entry of a links array.
type Link struct {
	Rel  string `json:"rel,omitempty"`
	Href string `json:"href"`
}

// Property is a single entry of the properties map of a description.
type Property struct {
	Key        string `json:"key"`
	Title      string `json:"title,omitempty"`
	Type       string `json:"type,omitempty"`
	Unit       string `json:"unit,omitempty"`
	ReadOnly   bool   `json:"read_only"`
	SchemaType string `json:"schema_type,omitempty"`
	Minimum    string `json:"minimum,omitempty"`
	Maximum    string `json:"maximum,omitempty"`
	Href       string `json:"href,omitempty"`
}

// Record is the id and title taken from a successful fetch. It is immutable
// once built.
type Record struct {
	id    string
	title string
}

// NewRecord builds a Record.
func NewRecord(id, title string) Record {
	return Record{id: id, title: title}
}

// ID returns the device id.
func (r Record) ID() string { return r.id }

// Title returns the device title.
func (r Record) Title() string { return r.title }

// MarshalJSON encodes the record as {"id": ..., "title": ...}.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}{r.id, r.title})
}

// Report is the outcome of a single base test.
type Report struct {
	RunID      string    `json:"run_id"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	OK         bool      `json:"ok"`
	Record     *Record   `json:"record,omitempty"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

func render(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func parseLinks(v any) []Link {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var links []Link
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		href, _ := m["href"].(string)
		if href == "" {
			continue
		}
		rel, _ := m["rel"].(string)
		links = append(links, Link{Rel: rel, Href: href})
	}
	return links
}
