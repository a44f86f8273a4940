package ruleconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"flowscanner/internal/fsutil"
	"flowscanner/internal/rules"
)

const rulesKey = "rules"

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Decode parses a rule config document. JSON input is accepted for any path
// since JSON is valid YAML; files ending in .json must be strict JSON.
//
// Rule values that are not mappings are skipped with a warning. Unknown rule
// names are kept.
func Decode(path string, data []byte, logger *slog.Logger) (*rules.Document, error) {
	data = fsutil.StripBOM(data)
	if isJSONPath(path) && len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		return nil, errors.New("invalid JSON")
	}

	doc := rules.NewDocument(path)

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping", top.Line)
	}

	var rulesNode *yaml.Node
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value == rulesKey {
			rulesNode = top.Content[i+1]
		}
	}
	if rulesNode == nil || (rulesNode.Kind == yaml.ScalarNode && rulesNode.Tag == "!!null") {
		return doc, nil
	}
	if rulesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %q must be a mapping of rule names", rulesNode.Line, rulesKey)
	}

	for i := 0; i+1 < len(rulesNode.Content); i += 2 {
		name := strings.TrimSpace(rulesNode.Content[i].Value)
		value := rulesNode.Content[i+1]
		if name == "" {
			return nil, fmt.Errorf("line %d: empty rule name", rulesNode.Content[i].Line)
		}
		if value.Kind != yaml.MappingNode {
			if logger != nil {
				logger.Warn("skipping rule config entry that is not a mapping", "path", path, "rule", name, "line", value.Line)
			}
			continue
		}
		entry, err := decodeEntry(value)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		doc.Set(name, entry)
	}
	return doc, nil
}

func decodeEntry(n *yaml.Node) (rules.Entry, error) {
	var rawSeverity string
	var entry rules.Entry
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "severity":
			if value.Kind != yaml.ScalarNode {
				return rules.Entry{}, fmt.Errorf("line %d: severity must be a string", value.Line)
			}
			if value.Tag != "!!null" {
				rawSeverity = value.Value
			}
		case "expression":
			if value.Kind != yaml.ScalarNode {
				return rules.Entry{}, fmt.Errorf("line %d: expression must be a string", value.Line)
			}
			if value.Tag != "!!null" {
				entry.Expression = value.Value
			}
		}
	}
	sev, err := rules.ParseSeverity(rawSeverity)
	if err != nil {
		return rules.Entry{}, err
	}
	entry.Severity = sev
	return entry, nil
}

// Encode renders doc in the format implied by its path: indented JSON for
// .json files, YAML otherwise. Output depends only on document contents and
// order.
func Encode(doc *rules.Document) ([]byte, error) {
	if isJSONPath(doc.Path) {
		return encodeJSON(doc)
	}
	return encodeYAML(doc)
}

func encodeYAML(doc *rules.Document) ([]byte, error) {
	rulesNode := &yaml.Node{Kind: yaml.MappingNode}
	if doc.Len() == 0 {
		rulesNode.Style = yaml.FlowStyle
	}
	for _, name := range doc.Names() {
		entry, _ := doc.Get(name)
		body := &yaml.Node{Kind: yaml.MappingNode}
		body.Content = append(body.Content,
			scalar("severity", 0),
			scalar(string(entry.Severity), 0),
		)
		if entry.Expression != "" {
			body.Content = append(body.Content,
				scalar("expression", 0),
				scalar(entry.Expression, yaml.DoubleQuotedStyle),
			)
		}
		rulesNode.Content = append(rulesNode.Content, scalar(name, 0), body)
	}

	top := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar(rulesKey, 0), rulesNode}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(value string, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: style}
}

// orderedRules marshals as a JSON object keyed in document order.
type orderedRules struct {
	doc *rules.Document
}

func (o orderedRules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.doc.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSON(name)
		if err != nil {
			return nil, err
		}
		entry, _ := o.doc.Get(name)
		value, err := marshalJSON(entry)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so ">=50" stays readable.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeJSON(doc *rules.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Rules orderedRules `json:"rules"`
	}{Rules: orderedRules{doc: doc}})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
