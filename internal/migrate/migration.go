package migrate

import (
	"fmt"
	"slices"
	"strings"
)

// Migration is one node of the revision graph. A root has no parents; a merge has several.
type Migration struct {
	ID          string
	Parents     []string
	Description string
	Operations  []Operation
}

// UpSQL returns the statements that apply the migration.
func (m Migration) UpSQL() []string {
	var out []string
	for _, op := range m.Operations {
		out = append(out, op.Up()...)
	}
	return out
}

// DownSQL returns the statements that undo the migration, last operation first.
func (m Migration) DownSQL() []string {
	var out []string
	for i := len(m.Operations) - 1; i >= 0; i-- {
		out = append(out, m.Operations[i].Down()...)
	}
	return out
}

// Apply runs every operation against the schema model.
func (m Migration) Apply(s *Schema) error {
	for _, op := range m.Operations {
		if err := op.Apply(s); err != nil {
			return fmt.Errorf("migration %s: %s: %w", m.ID, op, err)
		}
	}
	return nil
}

// Revert undoes every operation against the schema model, last first.
func (m Migration) Revert(s *Schema) error {
	for i := len(m.Operations) - 1; i >= 0; i-- {
		op := m.Operations[i]
		if err := op.Revert(s); err != nil {
			return fmt.Errorf("revert %s: %s: %w", m.ID, op, err)
		}
	}
	return nil
}

// GraphError reports a malformed revision graph.
type GraphError struct {
	Reason string
	IDs    []string
}

func (e *GraphError) Error() string {
	if len(e.IDs) == 0 {
		return "migration graph: " + e.Reason
	}
	return fmt.Sprintf("migration graph: %s: %s", e.Reason, strings.Join(e.IDs, ", "))
}

// Linearize validates the graph and returns the migrations in apply order. The graph must
// have exactly one root and one head, and every parent must exist. Branches are allowed only
// when a later migration merges them. Ties are broken by declaration order so the result is
// deterministic.
func Linearize(migrations []Migration) ([]Migration, error) {
	if len(migrations) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(migrations))
	for i, m := range migrations {
		if m.ID == "" {
			return nil, &GraphError{Reason: fmt.Sprintf("migration at position %d has no id", i)}
		}
		if _, dup := index[m.ID]; dup {
			return nil, &GraphError{Reason: "duplicate id", IDs: []string{m.ID}}
		}
		index[m.ID] = i
	}

	children := make(map[string][]string, len(migrations))
	var roots []string
	for _, m := range migrations {
		if len(m.Parents) == 0 {
			roots = append(roots, m.ID)
		}
		seen := map[string]bool{}
		for _, p := range m.Parents {
			if _, ok := index[p]; !ok {
				return nil, &GraphError{Reason: fmt.Sprintf("%s revises unknown parent", m.ID), IDs: []string{p}}
			}
			if p == m.ID {
				return nil, &GraphError{Reason: "migration revises itself", IDs: []string{m.ID}}
			}
			if seen[p] {
				return nil, &GraphError{Reason: fmt.Sprintf("%s lists a parent twice", m.ID), IDs: []string{p}}
			}
			seen[p] = true
			children[p] = append(children[p], m.ID)
		}
	}

	if len(roots) != 1 {
		return nil, &GraphError{Reason: fmt.Sprintf("expected one root, found %d", len(roots)), IDs: roots}
	}

	var heads []string
	for _, m := range migrations {
		if len(children[m.ID]) == 0 {
			heads = append(heads, m.ID)
		}
	}
	if len(heads) != 1 {
		return nil, &GraphError{Reason: fmt.Sprintf("expected one head, found %d (unmerged branches)", len(heads)), IDs: heads}
	}

	// Kahn's algorithm; ready nodes are taken in declaration order.
	pending := make(map[string]int, len(migrations))
	for _, m := range migrations {
		pending[m.ID] = len(m.Parents)
	}
	ready := []string{roots[0]}
	ordered := make([]Migration, 0, len(migrations))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b string) int { return index[a] - index[b] })
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, migrations[index[id]])
		for _, c := range children[id] {
			pending[c]--
			if pending[c] == 0 {
				ready = append(ready, c)
			}
		}
	}

	if len(ordered) != len(migrations) {
		var stuck []string
		for _, m := range migrations {
			if pending[m.ID] > 0 {
				stuck = append(stuck, m.ID)
			}
		}
		return nil, &GraphError{Reason: "cycle", IDs: stuck}
	}
	return ordered, nil
}
