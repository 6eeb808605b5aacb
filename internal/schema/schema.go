package schema

import (
	"fmt"
	"strings"
)

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Nullable    bool   `json:"nullable"`
	References  string `json:"references,omitempty"`
}

type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
}

// Descriptor is the read-only schema description handed to the text
// generation model. The rendered text is computed once in NewDescriptor.
type Descriptor struct {
	tables []Table
	text   string
}

func NewDescriptor(tables []Table) (Descriptor, error) {
	if len(tables) == 0 {
		return Descriptor{}, fmt.Errorf("at least one table is required")
	}
	seen := make(map[string]struct{}, len(tables))
	copied := make([]Table, 0, len(tables))
	for _, table := range tables {
		name := strings.TrimSpace(table.Name)
		if name == "" {
			return Descriptor{}, fmt.Errorf("table name is required")
		}
		if _, ok := seen[name]; ok {
			return Descriptor{}, fmt.Errorf("duplicate table %q", name)
		}
		if len(table.Columns) == 0 {
			return Descriptor{}, fmt.Errorf("table %q has no columns", name)
		}
		seen[name] = struct{}{}
		table.Name = name
		table.Columns = append([]Column(nil), table.Columns...)
		copied = append(copied, table)
	}
	return Descriptor{tables: copied, text: render(copied)}, nil
}

// Tables returns a copy so callers cannot mutate the shared descriptor.
func (d Descriptor) Tables() []Table {
	out := make([]Table, 0, len(d.tables))
	for _, table := range d.tables {
		table.Columns = append([]Column(nil), table.Columns...)
		out = append(out, table)
	}
	return out
}

func (d Descriptor) TableNames() []string {
	names := make([]string, 0, len(d.tables))
	for _, table := range d.tables {
		names = append(names, table.Name)
	}
	return names
}

func (d Descriptor) Text() string {
	return d.text
}

func render(tables []Table) string {
	var sb strings.Builder
	sb.WriteString("DATABASE SCHEMA:\n")
	for i, table := range tables {
		fmt.Fprintf(&sb, "\n%d. %s: %s\n", i+1, table.Name, table.Description)
		for _, column := range table.Columns {
			typ := column.Type
			if column.Nullable {
				typ += ", nullable"
			}
			description := column.Description
			if column.References != "" && !strings.Contains(strings.ToLower(description), "foreign key") {
				description = strings.TrimSpace(description + " (foreign key to " + column.References + ")")
			}
			fmt.Fprintf(&sb, "   - %s (%s): %s\n", column.Name, typ, description)
		}
	}
	return sb.String()
}
