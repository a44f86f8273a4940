package output

import (
	"sort"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string       `json:"id"`
	Name string       `json:"name,omitempty"`
	Prop *sarifRuleMD `json:"properties,omitempty"`
}

type sarifRuleMD struct {
	Alias string `json:"alias,omitempty"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifText       `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	Physical sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

func sarifLevel(severity string) string {
	switch rules.Severity(severity) {
	case rules.SeverityError:
		return "error"
	case rules.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func buildSARIF(results []scanner.Result) sarifLog {
	findings := Findings(results)

	ruleSet := make(map[string]string)
	out := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		ruleSet[f.Rule] = f.Alias
		msg := f.Rule + " in flow " + f.Flow
		if f.Element != "" {
			msg += ": " + f.Element
		}
		out = append(out, sarifResult{
			RuleID:  f.Rule,
			Level:   sarifLevel(f.Severity),
			Message: sarifText{Text: msg},
			Locations: []sarifLocation{{
				Physical: sarifPhysical{Artifact: sarifArtifact{URI: f.Path}},
			}},
		})
	}

	names := make([]string, 0, len(ruleSet))
	for name := range ruleSet {
		names = append(names, name)
	}
	sort.Strings(names)
	driverRules := make([]sarifRule, 0, len(names))
	for _, name := range names {
		r := sarifRule{ID: name, Name: name}
		if alias := ruleSet[name]; alias != "" {
			r.Prop = &sarifRuleMD{Alias: alias}
		}
		driverRules = append(driverRules, r)
	}

	return sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "flow-scanner", Rules: driverRules}},
			Results: out,
		}},
	}
}
