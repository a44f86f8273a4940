package ruleconfig

import (
	"testing"

	"flowscanner/internal/rules"
)

func TestEncode_EmptyDocument(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/ws/.flow-scanner.yml", "rules: {}\n"},
		{"/ws/.flow-scanner", "rules: {}\n"},
		{"/ws/flow-scanner.json", "{\n  \"rules\": {}\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Encode(rules.NewDocument(tt.path))
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_QuotesExpressionAndKeepsOrder(t *testing.T) {
	doc := rules.NewDocument("/ws/.flow-scanner.yml")
	doc.Set("UnusedVariable", rules.Entry{Severity: rules.SeverityOff})
	doc.Set("APIVersion", rules.Entry{Severity: rules.SeverityError, Expression: "50"})

	got, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "rules:\n  UnusedVariable:\n    severity: off\n  APIVersion:\n    severity: error\n    expression: \"50\"\n"
	if string(got) != want {
		t.Fatalf("Encode =\n%s\nwant\n%s", got, want)
	}

	back, err := Decode(doc.Path, got, nil)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !back.Equal(doc) {
		t.Fatalf("round trip changed document: %v", back.Names())
	}
}

func TestDecode_StripsBOMAndNulls(t *testing.T) {
	data := []byte("\xEF\xBB\xBFrules:\n  FlowName:\n    severity:\n    expression: ~\n")
	doc, err := Decode("/ws/.flow-scanner.yml", data, nil)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	e, ok := doc.Get("FlowName")
	if !ok {
		t.Fatalf("expected FlowName entry")
	}
	if e.Severity != rules.SeverityError || e.Expression != "" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestDecode_NullRules(t *testing.T) {
	for _, in := range []string{"rules:\n", "other: 1\n", "~\n"} {
		doc, err := Decode("/ws/.flow-scanner.yml", []byte(in), nil)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", in, err)
		}
		if doc.Len() != 0 {
			t.Fatalf("Decode(%q) expected empty document, got %v", in, doc.Names())
		}
	}
}
