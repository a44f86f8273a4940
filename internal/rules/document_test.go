package rules

import (
	"reflect"
	"testing"
)

func TestDocument_PreservesInsertionOrder(t *testing.T) {
	doc := NewDocument("")
	doc.Set("B", Entry{Severity: SeverityError})
	doc.Set("A", Entry{Severity: SeverityWarning})
	doc.Set("B", Entry{Severity: SeverityOff})

	if want := []string{"B", "A"}; !reflect.DeepEqual(doc.Names(), want) {
		t.Fatalf("names: want %v, got %v", want, doc.Names())
	}
	if e, _ := doc.Get("B"); e.Severity != SeverityOff {
		t.Fatalf("replaced entry: got %+v", e)
	}

	if !doc.Delete("B") || doc.Delete("B") {
		t.Fatalf("Delete should succeed once")
	}
	if want := []string{"A"}; !reflect.DeepEqual(doc.Names(), want) {
		t.Fatalf("names after delete: want %v, got %v", want, doc.Names())
	}
}

func TestDocument_CloneAndEqual(t *testing.T) {
	doc := NewDocument("/a")
	doc.Set(RuleFlowName, Entry{Severity: SeverityError, Expression: DefaultNamingConvention})
	doc.Set("UnusedVariable", Entry{Severity: SeverityWarning})

	c := doc.Clone()
	if !doc.Equal(c) {
		t.Fatalf("clone should be equal")
	}

	reordered := NewDocument("/b")
	reordered.Set("UnusedVariable", Entry{Severity: SeverityWarning})
	reordered.Set(RuleFlowName, Entry{Severity: SeverityError, Expression: DefaultNamingConvention})
	if !doc.Equal(reordered) {
		t.Fatalf("order and path must not affect equality")
	}

	c.Set(RuleFlowName, Entry{Severity: SeverityError})
	if doc.Equal(c) {
		t.Fatalf("changed expression should not be equal")
	}
	if e, _ := doc.Get(RuleFlowName); e.Expression != DefaultNamingConvention {
		t.Fatalf("clone mutation leaked into original: %+v", e)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw     string
		want    Severity
		wantErr bool
	}{
		{raw: "error", want: SeverityError},
		{raw: "  WARNING ", want: SeverityWarning},
		{raw: "Off", want: SeverityOff},
		{raw: "", want: SeverityError},
		{raw: "fatal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSeverity(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("FlowName"); got != "FlowName (InvalidNamingConvention)" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := DisplayName("UnusedVariable"); got != "UnusedVariable" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := CanonicalName("DMLInLoop"); got != "DMLStatementInLoop" {
		t.Fatalf("unexpected canonical name: %q", got)
	}
}
