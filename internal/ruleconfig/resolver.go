// Package ruleconfig discovers, loads, merges and persists the rule
// configuration document of a workspace root.
package ruleconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"flowscanner/internal/fsutil"
	"flowscanner/internal/rules"
)

// DefaultTool names the config files (.flow-scanner.yml and friends).
const DefaultTool = "flow-scanner"

// CatalogSource supplies the engine rule catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (*rules.Catalog, error)
}

// Overrides are process-local expression settings. Empty fields are unset.
type Overrides struct {
	NamingConvention string
	APIVersion       string
}

func (o Overrides) forRule(name string) string {
	switch name {
	case rules.RuleFlowName:
		return o.NamingConvention
	case rules.RuleAPIVersion:
		return o.APIVersion
	default:
		return ""
	}
}

type Resolver struct {
	Tool      string
	Catalog   CatalogSource
	Overrides Overrides
	Logger    *slog.Logger
}

func (r *Resolver) tool() string {
	if r.Tool == "" {
		return DefaultTool
	}
	return r.Tool
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Candidates lists the discovery paths under root in precedence order.
func (r *Resolver) Candidates(root string) []string {
	t := r.tool()
	names := []string{
		"." + t + ".json",
		t + ".json",
		"." + t + ".yml",
		"." + t + ".yaml",
		t + ".yaml",
		t + ".yml",
		"." + t,
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(root, n)
	}
	return out
}

// CanonicalPath is where a synthesized default document is written.
func (r *Resolver) CanonicalPath(root string) string {
	return filepath.Join(root, "."+r.tool()+".yml")
}

// Discover returns the first existing candidate file.
func (r *Resolver) Discover(root string) (string, bool, error) {
	for _, path := range r.Candidates(root) {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", false, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		return path, true, nil
	}
	return "", false, nil
}

// Load reads and parses a single config file.
func (r *Resolver) Load(path string) (*rules.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	doc, err := Decode(path, data, r.logger())
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	return doc, nil
}

// Resolve returns the effective rule document for root and writes it back.
//
// Without a config file, every catalog rule is enabled at error severity and
// the result is written to CanonicalPath. With one, the process-local
// overrides are merged in and the file is re-persisted in place. A
// *ConfigWriteError is returned together with a usable document.
func (r *Resolver) Resolve(ctx context.Context, root string) (*rules.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := r.logger()

	path, found, err := r.Discover(root)
	if err != nil {
		return nil, err
	}

	var doc *rules.Document
	if !found {
		catalog, err := r.catalog(ctx)
		if err != nil {
			return nil, err
		}
		doc = catalog.DefaultDocument(r.CanonicalPath(root))
		log.Info("no rule config found, writing defaults", "path", doc.Path, "rules", doc.Len())
	} else {
		doc, err = r.Load(path)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded rule config", "path", path, "rules", doc.Len())
		if err := r.applyOverrides(ctx, doc); err != nil {
			return nil, err
		}
	}

	if err := r.Persist(ctx, root, doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// applyOverrides replaces expressions of parameterized rules with the
// process-local values. Missing entries are only created for rules the
// catalog knows.
func (r *Resolver) applyOverrides(ctx context.Context, doc *rules.Document) error {
	for _, name := range []string{rules.RuleFlowName, rules.RuleAPIVersion} {
		value := r.Overrides.forRule(name)
		if value == "" {
			continue
		}
		if entry, ok := doc.Get(name); ok {
			entry.Expression = value
			doc.Set(name, entry)
			continue
		}
		catalog, err := r.catalog(ctx)
		if err != nil {
			return err
		}
		if !catalog.Has(name) {
			r.logger().Warn("override ignored, rule not in catalog", "rule", name)
			continue
		}
		doc.Set(name, rules.Entry{Severity: rules.SeverityError, Expression: value})
	}
	return nil
}

func (r *Resolver) catalog(ctx context.Context) (*rules.Catalog, error) {
	if r.Catalog == nil {
		return nil, errors.New("rule catalog source not configured")
	}
	return r.Catalog.Catalog(ctx)
}

// Persist writes doc atomically to doc.Path, or to CanonicalPath when the
// document has no path yet. Relative paths are taken relative to root.
func (r *Resolver) Persist(ctx context.Context, root string, doc *rules.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil {
		return errors.New("persist rule config: nil document")
	}
	if doc.Path == "" {
		doc.Path = r.CanonicalPath(root)
	} else if !filepath.IsAbs(doc.Path) {
		doc.Path = filepath.Join(root, doc.Path)
	}

	data, err := Encode(doc)
	if err != nil {
		return &ConfigWriteError{Path: doc.Path, Err: err}
	}
	if err := fsutil.WriteFileAtomic(doc.Path, data); err != nil {
		return &ConfigWriteError{Path: doc.Path, Err: err}
	}
	return nil
}
