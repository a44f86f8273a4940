package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"flowscanner/internal/scanner/process"
)

func TestValidate_Defaults(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if !filepath.IsAbs(cfg.Targeting.Root) {
		t.Fatalf("Root should be absolute, got %q", cfg.Targeting.Root)
	}
	if cfg.Runtime.Engine != process.DefaultCommand {
		t.Fatalf("Engine = %q, want %q", cfg.Runtime.Engine, process.DefaultCommand)
	}
	if cfg.Output.ConsoleFormat != "text" {
		t.Fatalf("ConsoleFormat = %q", cfg.Output.ConsoleFormat)
	}
}

func TestValidate_NormalizesCommaDelimitedLists(t *testing.T) {
	cfg := New()
	cfg.Targeting.Include = []string{"*.flow-meta.xml, force-app/*", ",,"}
	cfg.Output.ConsoleSeverity = []string{"ERROR, Warning"}
	cfg.Output.Emit = []string{" NDJSON "}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	if want := []string{"*.flow-meta.xml", "force-app/*"}; !reflect.DeepEqual(cfg.Targeting.Include, want) {
		t.Fatalf("Include = %v, want %v", cfg.Targeting.Include, want)
	}
	if want := []string{"error", "warning"}; !reflect.DeepEqual(cfg.Output.ConsoleSeverity, want) {
		t.Fatalf("ConsoleSeverity = %v, want %v", cfg.Output.ConsoleSeverity, want)
	}
	if want := []string{"ndjson"}; !reflect.DeepEqual(cfg.Output.Emit, want) {
		t.Fatalf("Emit = %v, want %v", cfg.Output.Emit, want)
	}
}

func TestValidate_InfersOutFormat(t *testing.T) {
	tests := []struct {
		out     string
		format  string
		want    string
		wantErr string
	}{
		{out: "results.json", want: "json"},
		{out: "results.jsonl", want: "ndjson"},
		{out: "findings.csv", want: "csv"},
		{out: "scan.sarif", want: "sarif"},
		{out: "results.txt", wantErr: "use --out-format"},
		{out: "results.txt", format: "CSV", want: "csv"},
		{out: "results.json", format: "xml", wantErr: "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.out+"/"+tt.format, func(t *testing.T) {
			cfg := New()
			cfg.Output.Out = tt.out
			cfg.Output.OutFormat = tt.format
			err := cfg.Validate()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if cfg.Output.OutFormat != tt.want {
				t.Fatalf("OutFormat = %q, want %q", cfg.Output.OutFormat, tt.want)
			}
		})
	}
}

func TestValidate_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"console format", func(c *Config) { c.Output.ConsoleFormat = "xml" }},
		{"empty console format", func(c *Config) { c.Output.ConsoleFormat = " " }},
		{"console severity", func(c *Config) { c.Output.ConsoleSeverity = []string{"off"} }},
		{"emit", func(c *Config) { c.Output.Emit = []string{"csv"} }},
		{"timeout", func(c *Config) { c.Runtime.Timeout = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FLOWSCANNER_NAMING_CONVENTION": " Flow_[A-Z]+ ",
		"FLOWSCANNER_API_VERSION":       ">=58",
		"FLOWSCANNER_ENGINE":            "/opt/engine",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := New()
	cfg.Rules.APIVersion = ">=60" // set by flag
	cfg.ApplyEnv(lookup)

	if cfg.Rules.NamingConvention != "Flow_[A-Z]+" {
		t.Fatalf("NamingConvention = %q", cfg.Rules.NamingConvention)
	}
	if cfg.Rules.APIVersion != ">=60" {
		t.Fatalf("flag value should win over env, got %q", cfg.Rules.APIVersion)
	}
	if cfg.Runtime.Engine != "/opt/engine" {
		t.Fatalf("Engine = %q", cfg.Runtime.Engine)
	}
}
