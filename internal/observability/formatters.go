// Package observability provides formatted output utilities for the command line tools.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/migrate"
	"github.com/jonathan/job-assistant/internal/schemas"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBanner(title string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// PrintRevisions outputs the migration chain, marking applied revisions with + and the
// current one with *.
func (p *Printer) PrintRevisions(revisions []migrate.Revision) {
	if len(revisions) == 0 {
		p.printBanner("NO MIGRATIONS")
		return
	}

	applied := 0
	current := migrate.Base
	var sb strings.Builder
	for _, rev := range revisions {
		marker := " "
		switch {
		case rev.Current:
			marker = "*"
			current = rev.ID
			applied++
		case rev.Applied:
			marker = "+"
			applied++
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, rev.ID))
		if rev.Description != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", rev.Description))
		}
	}
	sb.WriteString(fmt.Sprintf("\nCurrent: %s (%d of %d applied)", current, applied, len(revisions)))

	p.printBox("MIGRATION HISTORY", sb.String())
}

// PrintContentErrors outputs the schema failures of a structured content document. Only the
// first few failures are listed.
func (p *Printer) PrintContentErrors(docType enums.DocumentType, errs []schemas.FieldError) {
	if len(errs) == 0 {
		p.printBanner(fmt.Sprintf("✅ VALID %s CONTENT", strings.ToUpper(string(docType))))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d errors:\n\n", len(errs)))

	count := min(len(errs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", errs[i].Field))
		sb.WriteString(fmt.Sprintf("  %s\n", errs[i].Message))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(errs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more errors", len(errs)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("INVALID %s CONTENT", strings.ToUpper(string(docType))), strings.TrimSuffix(sb.String(), "\n"))
}
