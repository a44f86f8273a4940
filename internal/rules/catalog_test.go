package rules

import (
	"reflect"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]CatalogEntry{
		{Name: "FlowName", Label: "Flow Naming Convention"},
		{Name: "APIVersion", Label: "Outdated API Version"},
		{Name: "UnusedVariable", Label: "Unused Variable"},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

func TestCatalog(t *testing.T) {
	c := testCatalog(t)

	if got := c.Len(); got != 3 {
		t.Fatalf("Len: want 3, got %d", got)
	}

	var names []string
	for _, e := range c.List() {
		names = append(names, e.Name)
	}
	if want := []string{"FlowName", "APIVersion", "UnusedVariable"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("List order: want %v, got %v", want, names)
	}

	names = names[:0]
	for _, e := range c.Sorted() {
		names = append(names, e.Name)
	}
	if want := []string{"APIVersion", "FlowName", "UnusedVariable"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("Sorted order: want %v, got %v", want, names)
	}

	if e, ok := c.Lookup("InvalidNamingConvention"); !ok || e.Name != "FlowName" {
		t.Fatalf("Lookup by alias: got %v, %v", e, ok)
	}
	if _, ok := c.Lookup("Nope"); ok {
		t.Fatalf("Lookup unknown: expected miss")
	}
}

func TestNewCatalog_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	tests := []struct {
		name    string
		entries []CatalogEntry
	}{
		{name: "duplicate", entries: []CatalogEntry{{Name: "A"}, {Name: "A"}}},
		{name: "empty", entries: []CatalogEntry{{Name: "  ", Label: "blank"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.entries); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog(t)

	all, err := c.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Resolve all: want 3, got %d", len(all))
	}

	selected, err := c.Resolve("UnusedVariable, InvalidAPIVersion,UnusedVariable")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(selected) != 2 || selected[0].Name != "UnusedVariable" || selected[1].Name != "APIVersion" {
		t.Fatalf("unexpected selection: %v", selected)
	}

	if _, err := c.Resolve("FlowName,unknown"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}

func TestCatalog_DefaultDocument(t *testing.T) {
	doc := testCatalog(t).DefaultDocument("/ws/.flow-scanner.yml")

	if want := []string{"FlowName", "APIVersion", "UnusedVariable"}; !reflect.DeepEqual(doc.Names(), want) {
		t.Fatalf("names: want %v, got %v", want, doc.Names())
	}
	for _, n := range doc.Names() {
		e, _ := doc.Get(n)
		if e.Severity != SeverityError || e.Expression != "" {
			t.Fatalf("rule %s: want error severity without expression, got %+v", n, e)
		}
	}
}
