package rules

import (
	"fmt"
	"strings"
)

// Severity classifies the violations a rule reports. SeverityOff disables the rule.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityOff     Severity = "off"
)

// ParseSeverity normalizes raw (case and surrounding space) and validates it.
// An empty value means the rule was listed without a severity and defaults to error.
func ParseSeverity(raw string) (Severity, error) {
	switch s := Severity(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return SeverityError, nil
	case SeverityError, SeverityWarning, SeverityOff:
		return s, nil
	default:
		return "", fmt.Errorf("unsupported severity %q (must be one of: error, warning, off)", raw)
	}
}

func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning || s == SeverityOff
}

func (s Severity) String() string {
	return string(s)
}
