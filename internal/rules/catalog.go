package rules

import (
	"fmt"
	"sort"
	"strings"
)

// CatalogEntry describes a rule the scanner engine can evaluate.
type CatalogEntry struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Catalog is the read-only set of rules reported by the engine, in engine order.
type Catalog struct {
	entries []CatalogEntry
	byName  map[string]int
}

func NewCatalog(entries []CatalogEntry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry with empty rule name (label %q)", e.Label)
		}
		if _, exists := c.byName[name]; exists {
			return nil, fmt.Errorf("rule %s listed twice in catalog", name)
		}
		e.Name = name
		c.byName[name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// List returns the entries in engine order.
func (c *Catalog) List() []CatalogEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Sorted returns the entries sorted by rule name.
func (c *Catalog) Sorted() []CatalogEntry {
	out := c.List()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup finds a rule by canonical name or legacy alias.
func (c *Catalog) Lookup(name string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	name = strings.TrimSpace(name)
	if i, ok := c.byName[name]; ok {
		return c.entries[i], true
	}
	if i, ok := c.byName[CanonicalName(name)]; ok {
		return c.entries[i], true
	}
	return CatalogEntry{}, false
}

func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byName[name]
	return ok
}

// Resolve selects rules by a comma-separated list of names or aliases.
// An empty selector selects the whole catalog.
func (c *Catalog) Resolve(selector string) ([]CatalogEntry, error) {
	if strings.TrimSpace(selector) == "" {
		return c.List(), nil
	}

	seen := make(map[string]struct{})
	var selected []CatalogEntry
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		e, ok := c.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		selected = append(selected, e)
	}
	return selected, nil
}

// DefaultDocument enables every catalog rule at error severity with no expression.
func (c *Catalog) DefaultDocument(path string) *Document {
	doc := NewDocument(path)
	for _, e := range c.List() {
		doc.Set(e.Name, Entry{Severity: SeverityError})
	}
	return doc
}
