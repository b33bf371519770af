// Package migrate holds the ordered schema migrations and the runner that applies them.
//
// Each migration is a list of structured operations. An operation renders its own up and
// down SQL and can apply or revert itself on an in-memory Schema, which lets the whole chain
// be checked without a database.
package migrate

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column describes one table column.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	Default    string // raw SQL expression, empty for none
	PrimaryKey bool
	Unique     bool
	References string // e.g. `"user"(id) ON DELETE CASCADE`
}

// SQL renders the column definition.
func (c Column) SQL() string {
	var b strings.Builder
	b.WriteString(quoteIdent(c.Name) + " " + c.Type)
	if !c.Nullable && !c.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT " + c.Default)
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.References != "" {
		b.WriteString(" REFERENCES " + c.References)
	}
	return b.String()
}

// Table describes a table. PrimaryKey is set only for composite keys.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

func (t Table) clone() *Table {
	return &Table{Name: t.Name, Columns: slices.Clone(t.Columns), PrimaryKey: slices.Clone(t.PrimaryKey)}
}

func (t *Table) column(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Index describes a plain or unique index.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Where   string
}

// Schema is the in-memory model the operations act on.
type Schema struct {
	Enums   map[string][]string
	Tables  map[string]*Table
	Indexes map[string]Index
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{
		Enums:   map[string][]string{},
		Tables:  map[string]*Table{},
		Indexes: map[string]Index{},
	}
}

// Clone returns a deep copy.
func (s *Schema) Clone() *Schema {
	out := NewSchema()
	for k, v := range s.Enums {
		out.Enums[k] = slices.Clone(v)
	}
	for k, v := range s.Tables {
		out.Tables[k] = v.clone()
	}
	maps.Copy(out.Indexes, s.Indexes)
	return out
}

// TableNames returns the table names in sorted order.
func (s *Schema) TableNames() []string {
	return slices.Sorted(maps.Keys(s.Tables))
}

// builtinTypes are the column types that need no enum declaration.
var builtinTypes = map[string]bool{
	"uuid": true, "text": true, "text[]": true, "integer": true, "boolean": true,
	"timestamptz": true, "jsonb": true, "varchar(64)": true, "varchar(255)": true,
}

func (s *Schema) checkType(typ string) error {
	if builtinTypes[typ] {
		return nil
	}
	if _, ok := s.Enums[typ]; ok {
		return nil
	}
	return fmt.Errorf("unknown column type %q", typ)
}

// enumInUse reports the first column typed with the enum.
func (s *Schema) enumInUse(name string) (string, bool) {
	for _, tn := range s.TableNames() {
		for _, c := range s.Tables[tn].Columns {
			if c.Type == name {
				return tn + "." + c.Name, true
			}
		}
	}
	return "", false
}

func (s *Schema) table(name string) (*Table, error) {
	t, ok := s.Tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q does not exist", name)
	}
	return t, nil
}

// quoteIdent quotes reserved identifiers used by this schema.
func quoteIdent(name string) string {
	switch name {
	case "user":
		return `"user"`
	default:
		return name
	}
}

func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func literalList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteLiteral(v)
	}
	return strings.Join(quoted, ", ")
}
