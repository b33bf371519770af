package db

import (
	"encoding/json"
	"fmt"
	"strings"
)

// assignments accumulates "col = $n" fragments and their arguments for partial updates.
type assignments struct {
	cols []string
	args []interface{}
}

func (a *assignments) set(col string, v any) {
	a.args = append(a.args, v)
	a.cols = append(a.cols, fmt.Sprintf("%s = $%d", col, len(a.args)))
}

func (a *assignments) setJSON(col string, raw json.RawMessage) {
	if raw != nil {
		a.set(col, jsonArg(raw))
	}
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// next returns the placeholder for the argument appended after the assignments.
func (a *assignments) next(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

func (a *assignments) clause() string {
	return strings.Join(append(a.cols, "updated_at = NOW()"), ", ")
}

// setIf assigns col only when v is non-nil.
func setIf[T any](a *assignments, col string, v *T) {
	if v != nil {
		a.set(col, *v)
	}
}

// pageClause appends LIMIT and OFFSET placeholders.
func pageClause(args []interface{}, opts ListOptions) (string, []interface{}) {
	args = append(args, opts.limit(), opts.offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// rawJSON turns a scanned jsonb column into a payload, keeping NULL as nil.
func rawJSON(b []byte) json.RawMessage {
	if b == nil {
		return nil
	}
	return json.RawMessage(b)
}

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
