package migrate

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Operation is one reversible schema change.
type Operation interface {
	// Up returns the statements that perform the change.
	Up() []string
	// Down returns the statements that undo it.
	Down() []string
	Apply(s *Schema) error
	Revert(s *Schema) error
	String() string
}

// CreateEnum registers a Postgres enum type. The SQL is guarded so re-running it against a
// database that already has the type is harmless.
type CreateEnum struct {
	Name   string
	Values []string
}

func (o CreateEnum) Up() []string {
	return []string{fmt.Sprintf(
		`DO $$ BEGIN CREATE TYPE %s AS ENUM (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
		o.Name, literalList(o.Values))}
}

func (o CreateEnum) Down() []string {
	return []string{fmt.Sprintf("DROP TYPE IF EXISTS %s", o.Name)}
}

func (o CreateEnum) Apply(s *Schema) error {
	if _, ok := s.Enums[o.Name]; ok {
		return fmt.Errorf("enum %q already exists", o.Name)
	}
	if len(o.Values) == 0 {
		return fmt.Errorf("enum %q has no values", o.Name)
	}
	s.Enums[o.Name] = slices.Clone(o.Values)
	return nil
}

func (o CreateEnum) Revert(s *Schema) error {
	return DropEnum(o).Apply(s)
}

func (o CreateEnum) String() string { return "create enum " + o.Name }

// DropEnum removes an enum type. Values are kept so the drop can be reverted.
type DropEnum struct {
	Name   string
	Values []string
}

func (o DropEnum) Up() []string   { return CreateEnum(o).Down() }
func (o DropEnum) Down() []string { return CreateEnum(o).Up() }

func (o DropEnum) Apply(s *Schema) error {
	values, ok := s.Enums[o.Name]
	if !ok {
		return fmt.Errorf("enum %q does not exist", o.Name)
	}
	if !slices.Equal(values, o.Values) {
		return fmt.Errorf("enum %q has values %v, not %v", o.Name, values, o.Values)
	}
	if col, used := s.enumInUse(o.Name); used {
		return fmt.Errorf("enum %q is still used by %s", o.Name, col)
	}
	delete(s.Enums, o.Name)
	return nil
}

func (o DropEnum) Revert(s *Schema) error { return CreateEnum(o).Apply(s) }

func (o DropEnum) String() string { return "drop enum " + o.Name }

// RenameEnum renames an enum type and every column typed with it.
type RenameEnum struct {
	From string
	To   string
}

func (o RenameEnum) Up() []string {
	return []string{fmt.Sprintf("ALTER TYPE %s RENAME TO %s", o.From, o.To)}
}

func (o RenameEnum) Down() []string { return RenameEnum{From: o.To, To: o.From}.Up() }

func (o RenameEnum) Apply(s *Schema) error {
	values, ok := s.Enums[o.From]
	if !ok {
		return fmt.Errorf("enum %q does not exist", o.From)
	}
	if _, clash := s.Enums[o.To]; clash {
		return fmt.Errorf("enum %q already exists", o.To)
	}
	delete(s.Enums, o.From)
	s.Enums[o.To] = values
	for _, t := range s.Tables {
		for i := range t.Columns {
			if t.Columns[i].Type == o.From {
				t.Columns[i].Type = o.To
			}
		}
	}
	return nil
}

func (o RenameEnum) Revert(s *Schema) error { return RenameEnum{From: o.To, To: o.From}.Apply(s) }

func (o RenameEnum) String() string { return fmt.Sprintf("rename enum %s to %s", o.From, o.To) }

// Recast describes how stored values move between two enum types. Values pass through text;
// Lower folds the old labels to lower case first and Rename then maps individual labels.
// Fallback maps labels that only exist in the new type onto an old label for downgrades, in
// the same case as Rename's keys.
type Recast struct {
	Lower    bool
	Rename   map[string]string
	Fallback map[string]string
}

// expr builds the USING expression for col cast to typ.
func (r Recast) expr(col, typ string, upper bool) string {
	src := col + "::text"
	if r.Lower {
		src = "lower(" + src + ")"
	}
	if len(r.Rename) > 0 {
		var b strings.Builder
		b.WriteString("CASE " + src)
		for _, k := range slices.Sorted(maps.Keys(r.Rename)) {
			fmt.Fprintf(&b, " WHEN %s THEN %s", quoteLiteral(k), quoteLiteral(r.Rename[k]))
		}
		b.WriteString(" ELSE " + src + " END")
		src = "(" + b.String() + ")"
	}
	if upper {
		src = "upper(" + src + ")"
	}
	return src + "::" + typ
}

func (r Recast) inverse() map[string]string {
	inv := make(map[string]string, len(r.Rename)+len(r.Fallback))
	for k, v := range r.Rename {
		inv[v] = k
	}
	for k, v := range r.Fallback {
		inv[k] = v
	}
	return inv
}

// AlterColumnType re-types a column, re-casting stored values through text. Defaults are
// dropped and re-set around the change since Postgres cannot cast them implicitly.
type AlterColumnType struct {
	Table       string
	Column      string
	From        string
	To          string
	FromDefault string
	ToDefault   string
	Recast      Recast
}

func (o AlterColumnType) statements(typ, def, using string) []string {
	t := quoteIdent(o.Table)
	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", t, o.Column),
		fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s", t, o.Column, typ, using),
	}
	if def != "" {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", t, o.Column, def))
	}
	return stmts
}

func (o AlterColumnType) Up() []string {
	return o.statements(o.To, o.ToDefault, o.Recast.expr(o.Column, o.To, false))
}

func (o AlterColumnType) Down() []string {
	back := Recast{Rename: o.Recast.inverse()}
	return o.statements(o.From, o.FromDefault, back.expr(o.Column, o.From, o.Recast.Lower))
}

func (o AlterColumnType) retype(s *Schema, from, to, def string) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	i, ok := t.column(o.Column)
	if !ok {
		return fmt.Errorf("column %s.%s does not exist", o.Table, o.Column)
	}
	if t.Columns[i].Type != from {
		return fmt.Errorf("column %s.%s has type %s, not %s", o.Table, o.Column, t.Columns[i].Type, from)
	}
	if err := s.checkType(to); err != nil {
		return err
	}
	t.Columns[i].Type = to
	t.Columns[i].Default = def
	return nil
}

func (o AlterColumnType) Apply(s *Schema) error { return o.retype(s, o.From, o.To, o.ToDefault) }

func (o AlterColumnType) Revert(s *Schema) error {
	return o.retype(s, o.To, o.From, o.FromDefault)
}

func (o AlterColumnType) String() string {
	return fmt.Sprintf("alter %s.%s type %s -> %s", o.Table, o.Column, o.From, o.To)
}

// AddColumn adds a column to an existing table.
type AddColumn struct {
	Table  string
	Column Column
}

func (o AddColumn) Up() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdent(o.Table), o.Column.SQL())}
}

func (o AddColumn) Down() []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(o.Table), o.Column.Name)}
}

func (o AddColumn) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	if _, exists := t.column(o.Column.Name); exists {
		return fmt.Errorf("column %s.%s already exists", o.Table, o.Column.Name)
	}
	if err := s.checkType(o.Column.Type); err != nil {
		return err
	}
	t.Columns = append(t.Columns, o.Column)
	return nil
}

func (o AddColumn) Revert(s *Schema) error { return DropColumn(o).Apply(s) }

func (o AddColumn) String() string { return fmt.Sprintf("add column %s.%s", o.Table, o.Column.Name) }

// DropColumn removes a column. The full definition is kept for the revert.
type DropColumn struct {
	Table  string
	Column Column
}

func (o DropColumn) Up() []string   { return AddColumn(o).Down() }
func (o DropColumn) Down() []string { return AddColumn(o).Up() }

func (o DropColumn) Apply(s *Schema) error {
	t, err := s.table(o.Table)
	if err != nil {
		return err
	}
	i, ok := t.column(o.Column.Name)
	if !ok {
		return fmt.Errorf("column %s.%s does not exist", o.Table, o.Column.Name)
	}
	for _, idx := range s.Indexes {
		if idx.Table == o.Table && slices.Contains(idx.Columns, o.Column.Name) {
			return fmt.Errorf("column %s.%s is used by index %s", o.Table, o.Column.Name, idx.Name)
		}
	}
	t.Columns = slices.Delete(t.Columns, i, i+1)
	return nil
}

func (o DropColumn) Revert(s *Schema) error { return AddColumn(o).Apply(s) }

func (o DropColumn) String() string { return fmt.Sprintf("drop column %s.%s", o.Table, o.Column.Name) }

// CreateTable creates a table.
type CreateTable struct {
	Table Table
}

func (o CreateTable) Up() []string {
	defs := make([]string, 0, len(o.Table.Columns)+1)
	for _, c := range o.Table.Columns {
		defs = append(defs, "    "+c.SQL())
	}
	if len(o.Table.PrimaryKey) > 0 {
		defs = append(defs, "    PRIMARY KEY ("+strings.Join(o.Table.PrimaryKey, ", ")+")")
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (\n%s\n)", quoteIdent(o.Table.Name), strings.Join(defs, ",\n"))}
}

func (o CreateTable) Down() []string {
	return []string{fmt.Sprintf("DROP TABLE %s", quoteIdent(o.Table.Name))}
}

func (o CreateTable) Apply(s *Schema) error {
	if _, exists := s.Tables[o.Table.Name]; exists {
		return fmt.Errorf("table %q already exists", o.Table.Name)
	}
	for _, c := range o.Table.Columns {
		if err := s.checkType(c.Type); err != nil {
			return fmt.Errorf("table %s: %w", o.Table.Name, err)
		}
	}
	s.Tables[o.Table.Name] = o.Table.clone()
	return nil
}

func (o CreateTable) Revert(s *Schema) error { return DropTable(o).Apply(s) }

func (o CreateTable) String() string { return "create table " + o.Table.Name }

// DropTable drops a table. The definition is kept for the revert.
type DropTable struct {
	Table Table
}

func (o DropTable) Up() []string   { return CreateTable(o).Down() }
func (o DropTable) Down() []string { return CreateTable(o).Up() }

func (o DropTable) Apply(s *Schema) error {
	if _, err := s.table(o.Table.Name); err != nil {
		return err
	}
	for _, idx := range s.Indexes {
		if idx.Table == o.Table.Name {
			return fmt.Errorf("table %s still has index %s", o.Table.Name, idx.Name)
		}
	}
	delete(s.Tables, o.Table.Name)
	return nil
}

func (o DropTable) Revert(s *Schema) error { return CreateTable(o).Apply(s) }

func (o DropTable) String() string { return "drop table " + o.Table.Name }

// CreateIndex creates an index. Unique indexes double as the named constraints the
// repository reports on conflict.
type CreateIndex struct {
	Index Index
}

func (o CreateIndex) Up() []string {
	unique := ""
	if o.Index.Unique {
		unique = "UNIQUE "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, o.Index.Name,
		quoteIdent(o.Index.Table), strings.Join(o.Index.Columns, ", "))
	if o.Index.Where != "" {
		stmt += " WHERE " + o.Index.Where
	}
	return []string{stmt}
}

func (o CreateIndex) Down() []string {
	return []string{fmt.Sprintf("DROP INDEX %s", o.Index.Name)}
}

func (o CreateIndex) Apply(s *Schema) error {
	if _, exists := s.Indexes[o.Index.Name]; exists {
		return fmt.Errorf("index %q already exists", o.Index.Name)
	}
	t, err := s.table(o.Index.Table)
	if err != nil {
		return err
	}
	for _, c := range o.Index.Columns {
		if _, ok := t.column(c); !ok {
			return fmt.Errorf("index %s: column %s.%s does not exist", o.Index.Name, o.Index.Table, c)
		}
	}
	idx := o.Index
	idx.Columns = slices.Clone(idx.Columns)
	s.Indexes[idx.Name] = idx
	return nil
}

func (o CreateIndex) Revert(s *Schema) error { return DropIndex(o).Apply(s) }

func (o CreateIndex) String() string { return "create index " + o.Index.Name }

// DropIndex drops an index. The definition is kept for the revert.
type DropIndex struct {
	Index Index
}

func (o DropIndex) Up() []string   { return CreateIndex(o).Down() }
func (o DropIndex) Down() []string { return CreateIndex(o).Up() }

func (o DropIndex) Apply(s *Schema) error {
	if _, ok := s.Indexes[o.Index.Name]; !ok {
		return fmt.Errorf("index %q does not exist", o.Index.Name)
	}
	delete(s.Indexes, o.Index.Name)
	return nil
}

func (o DropIndex) Revert(s *Schema) error { return CreateIndex(o).Apply(s) }

func (o DropIndex) String() string { return "drop index " + o.Index.Name }
