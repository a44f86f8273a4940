package output

import (
	"path/filepath"
	"sort"
	"strings"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

// Finding is one violation flattened for tabular output.
type Finding struct {
	Flow     string `json:"flow"`
	Path     string `json:"path"`
	Rule     string `json:"rule"`
	Alias    string `json:"alias,omitempty"`
	Severity string `json:"severity"`
	Element  string `json:"element,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Findings flattens results in result order.
func Findings(results []scanner.Result) []Finding {
	var out []Finding
	for _, r := range results {
		flow := flowName(r.Artifact)
		for _, v := range r.Violations {
			alias, _ := rules.Alias(v.Rule)
			out = append(out, Finding{
				Flow:     flow,
				Path:     r.Artifact.Path,
				Rule:     v.Rule,
				Alias:    alias,
				Severity: severityOf(v),
				Element:  v.Element,
				Type:     v.Type,
			})
		}
	}
	return out
}

func flowName(a scanner.Artifact) string {
	if a.Name != "" {
		return a.Name
	}
	base := filepath.Base(a.Path)
	for _, suffix := range []string{".flow-meta.xml", ".flow"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

func severityOf(v scanner.Violation) string {
	if v.Severity == "" {
		return string(rules.SeverityError)
	}
	return strings.ToLower(v.Severity)
}

// stripContent drops fixed flow bodies so sinks never dump whole files.
func stripContent(results []scanner.Result) []scanner.Result {
	out := make([]scanner.Result, len(results))
	for i, r := range results {
		r.Artifact.Content = nil
		out[i] = r
	}
	return out
}

type ruleCount struct {
	Rule  string
	Count int
	Flows []string
}

// countByRule orders rules by violation count, then name.
func countByRule(results []scanner.Result) []ruleCount {
	byRule := make(map[string]*ruleCount)
	seen := make(map[string]map[string]struct{})
	for _, f := range Findings(results) {
		rc, ok := byRule[f.Rule]
		if !ok {
			rc = &ruleCount{Rule: f.Rule}
			byRule[f.Rule] = rc
			seen[f.Rule] = make(map[string]struct{})
		}
		rc.Count++
		if _, dup := seen[f.Rule][f.Flow]; !dup {
			seen[f.Rule][f.Flow] = struct{}{}
			rc.Flows = append(rc.Flows, f.Flow)
		}
	}
	out := make([]ruleCount, 0, len(byRule))
	for _, rc := range byRule {
		sort.Strings(rc.Flows)
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}
