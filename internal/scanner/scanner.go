// Package scanner defines the boundary to the external scanner engine that
// parses flow artifacts, evaluates rules and applies auto-fixes.
package scanner

import (
	"context"

	"flowscanner/internal/rules"
)

// Artifact is a flow file known to the engine. Content is only populated on
// fix output; Modified marks artifacts the engine rewrote.
type Artifact struct {
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Content  []byte `json:"content,omitempty"`
	Modified bool   `json:"modified,omitempty"`
}

// Violation is forwarded as-is; the session only counts them.
type Violation struct {
	Rule     string            `json:"rule"`
	Severity string            `json:"severity,omitempty"`
	Element  string            `json:"element,omitempty"`
	Type     string            `json:"type,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// Result is the outcome of scanning (or fixing) one artifact.
type Result struct {
	Artifact   Artifact    `json:"artifact"`
	Violations []Violation `json:"violations,omitempty"`
}

// Engine is the scanner engine collaborator.
type Engine interface {
	RuleCatalog(ctx context.Context) ([]rules.CatalogEntry, error)
	Parse(ctx context.Context, paths []string) ([]*Artifact, error)
	Scan(ctx context.Context, parsed []*Artifact, doc *rules.Document) ([]Result, error)
	Fix(ctx context.Context, results []Result) ([]Result, error)
}

// CountViolations sums violations across results.
func CountViolations(results []Result) int {
	n := 0
	for _, r := range results {
		n += len(r.Violations)
	}
	return n
}

// ModifiedCount counts results whose artifact was rewritten.
func ModifiedCount(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Artifact.Modified {
			n++
		}
	}
	return n
}
