package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// Targets understood by Upgrade and Downgrade besides migration IDs.
const (
	Head = "head"
	Base = "base"
)

// Store persists the applied revision and runs migration statements.
type Store interface {
	EnsureVersionTable(ctx context.Context) error
	// CurrentVersion returns the recorded revision, or "" when none is applied.
	CurrentVersion(ctx context.Context) (string, error)
	// Run executes the statements and records version in one transaction. An empty version
	// clears the marker.
	Run(ctx context.Context, statements []string, version string) error
}

// Runner applies the linearized migration chain through a Store.
type Runner struct {
	store      Store
	migrations []Migration
	logger     *slog.Logger
}

// NewRunner validates the graph of migrations and returns a runner for it.
func NewRunner(store Store, migrations []Migration, logger *slog.Logger) (*Runner, error) {
	ordered, err := Linearize(migrations)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, migrations: ordered, logger: logger}, nil
}

// Migrations returns the chain in apply order.
func (r *Runner) Migrations() []Migration {
	return slices.Clone(r.migrations)
}

// position resolves a target to an index in the chain; Base is -1.
func (r *Runner) position(target string) (int, error) {
	switch target {
	case "", Base:
		return -1, nil
	case Head:
		return len(r.migrations) - 1, nil
	}
	for i, m := range r.migrations {
		if m.ID == target {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown revision %q", target)
}

// Current returns the applied revision, or "" for an empty database.
func (r *Runner) Current(ctx context.Context) (string, error) {
	if err := r.store.EnsureVersionTable(ctx); err != nil {
		return "", fmt.Errorf("failed to prepare version table: %w", err)
	}
	version, err := r.store.CurrentVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read current revision: %w", err)
	}
	if _, err := r.position(version); err != nil {
		return "", fmt.Errorf("database is at %w", err)
	}
	return version, nil
}

// Upgrade applies every migration after the current revision up to and including target.
// Each migration commits on its own with the marker update.
func (r *Runner) Upgrade(ctx context.Context, target string) ([]string, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	from, _ := r.position(current)
	to, err := r.position(target)
	if err != nil {
		return nil, err
	}
	if to < from {
		return nil, fmt.Errorf("target %s is behind current revision %s; use downgrade", target, current)
	}

	var applied []string
	for i := from + 1; i <= to; i++ {
		m := r.migrations[i]
		r.logger.Info("applying migration", "id", m.ID, "description", m.Description)
		if err := r.store.Run(ctx, m.UpSQL(), m.ID); err != nil {
			return applied, fmt.Errorf("failed to apply %s: %w", m.ID, err)
		}
		applied = append(applied, m.ID)
	}
	return applied, nil
}

// Downgrade reverts migrations from the current revision back to target, which stays
// applied. Base reverts everything.
func (r *Runner) Downgrade(ctx context.Context, target string) ([]string, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	from, _ := r.position(current)
	to, err := r.position(target)
	if err != nil {
		return nil, err
	}
	if to > from {
		return nil, fmt.Errorf("target %s is ahead of current revision %s; use upgrade", target, current)
	}

	var reverted []string
	for i := from; i > to; i-- {
		m := r.migrations[i]
		previous := ""
		if i > 0 {
			previous = r.migrations[i-1].ID
		}
		r.logger.Info("reverting migration", "id", m.ID, "to", previous)
		if err := r.store.Run(ctx, m.DownSQL(), previous); err != nil {
			return reverted, fmt.Errorf("failed to revert %s: %w", m.ID, err)
		}
		reverted = append(reverted, m.ID)
	}
	return reverted, nil
}

// Revision is one line of History.
type Revision struct {
	ID          string   `json:"id"`
	Parents     []string `json:"parents,omitempty"`
	Description string   `json:"description"`
	Applied     bool     `json:"applied"`
	Current     bool     `json:"current"`
}

// History lists the chain in apply order with the applied state of each revision.
func (r *Runner) History(ctx context.Context) ([]Revision, error) {
	current, err := r.Current(ctx)
	if err != nil {
		return nil, err
	}
	at, _ := r.position(current)

	out := make([]Revision, len(r.migrations))
	for i, m := range r.migrations {
		out[i] = Revision{
			ID:          m.ID,
			Parents:     slices.Clone(m.Parents),
			Description: m.Description,
			Applied:     i <= at,
			Current:     i == at,
		}
	}
	return out, nil
}

// SQL renders the statements between two revisions without touching a database. When to
// is behind from the down statements are rendered.
func (r *Runner) SQL(from, to string) ([]string, error) {
	start, err := r.position(from)
	if err != nil {
		return nil, err
	}
	end, err := r.position(to)
	if err != nil {
		return nil, err
	}

	var out []string
	if end >= start {
		for i := start + 1; i <= end; i++ {
			m := r.migrations[i]
			out = append(out, fmt.Sprintf("-- upgrade %s: %s", m.ID, m.Description))
			out = append(out, m.UpSQL()...)
		}
		return out, nil
	}
	for i := start; i > end; i-- {
		m := r.migrations[i]
		out = append(out, fmt.Sprintf("-- downgrade %s", m.ID))
		out = append(out, m.DownSQL()...)
	}
	return out, nil
}
