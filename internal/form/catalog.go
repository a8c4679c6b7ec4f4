package form

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the input widget used to edit a field.
type Kind string

const (
	KindText     Kind = "text"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindSelect, KindTextarea, KindNumber, KindDate:
		return true
	}
	return false
}

// FieldMeta is presentation metadata for one field. It never lives in the Store.
type FieldMeta struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Kind        Kind     `yaml:"kind"`
	Options     []string `yaml:"options,omitempty"`
	Default     string   `yaml:"default,omitempty"`
	Required    bool     `yaml:"required,omitempty"`
}

// Section is one wizard step.
type Section struct {
	Title  string   `yaml:"title"`
	Fields []string `yaml:"fields"`
}

// Catalog is the static, ordered definition of a wizard's sections and the
// metadata of every field they display.
type Catalog struct {
	Name     string      `yaml:"name"`
	Sections []Section   `yaml:"sections"`
	Fields   []FieldMeta `yaml:"fields"`

	meta map[string]FieldMeta
}

// ParseCatalog decodes a YAML catalog definition and checks it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

// NewCatalog builds a catalog from Go values and checks it.
func NewCatalog(name string, sections []Section, fields []FieldMeta) (*Catalog, error) {
	c := &Catalog{Name: name, Sections: sections, Fields: fields}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) init() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("catalog %q: no sections", c.Name)
	}
	c.meta = make(map[string]FieldMeta, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("catalog %q: field without name", c.Name)
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		if !f.Kind.Valid() {
			return fmt.Errorf("catalog %q: field %s: unknown kind %q", c.Name, f.Name, f.Kind)
		}
		if f.Kind == KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("catalog %q: select field %s has no options", c.Name, f.Name)
		}
		if _, dup := c.meta[f.Name]; dup {
			return fmt.Errorf("catalog %q: field %s declared twice", c.Name, f.Name)
		}
		c.meta[f.Name] = f
	}
	for i, s := range c.Sections {
		if len(s.Fields) == 0 {
			return fmt.Errorf("catalog %q: section %d (%s) is empty", c.Name, i, s.Title)
		}
		for _, name := range s.Fields {
			if _, ok := c.meta[name]; !ok {
				return fmt.Errorf("catalog %q: section %s references unknown field %s", c.Name, s.Title, name)
			}
		}
	}
	return nil
}

// Len returns the number of sections.
func (c *Catalog) Len() int {
	return len(c.Sections)
}

// Title returns the title of section i, or "" when i is out of range.
func (c *Catalog) Title(i int) string {
	if i < 0 || i >= len(c.Sections) {
		return ""
	}
	return c.Sections[i].Title
}

// FieldsFor returns the ordered field names of section i.
// Out-of-range indexes yield an empty slice so rendering never fails.
func (c *Catalog) FieldsFor(i int) []string {
	if i < 0 || i >= len(c.Sections) {
		return []string{}
	}
	return append([]string(nil), c.Sections[i].Fields...)
}

// Meta looks up presentation metadata for a field.
func (c *Catalog) Meta(name string) (FieldMeta, bool) {
	m, ok := c.meta[name]
	return m, ok
}

// SectionOf returns the index of the section displaying name, or -1.
func (c *Catalog) SectionOf(name string) int {
	for i, s := range c.Sections {
		for _, f := range s.Fields {
			if f == name {
				return i
			}
		}
	}
	return -1
}

// Defaults returns the initial Store contents: every declared field mapped to
// its default, numbers as float64 and everything else as string.
func (c *Catalog) Defaults() map[string]Value {
	out := make(map[string]Value, len(c.meta))
	for name, m := range c.meta {
		if m.Kind == KindNumber {
			out[name] = ParseNumber(m.Default)
			continue
		}
		if m.Kind == KindSelect && m.Default == "" {
			out[name] = m.Options[0]
			continue
		}
		out[name] = m.Default
	}
	return out
}

// NewStore returns a Store seeded with the catalog defaults.
func (c *Catalog) NewStore() *Store {
	return NewStore(c.Defaults())
}
