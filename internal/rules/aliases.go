package rules

// aliases maps canonical engine rule names to the names earlier releases
// displayed. Only used when rendering rule names for people.
var aliases = map[string]string{
	"ActionCallsInLoop":     "ActionCallInLoop",
	"APIVersion":            "InvalidAPIVersion",
	"AutoLayout":            "MissingAutoLayout",
	"CopyAPIName":           "UnclearAPINaming",
	"CyclomaticComplexity":  "ExcessiveCyclomaticComplexity",
	"DMLStatementInLoop":    "DMLInLoop",
	"DuplicateDMLOperation": "DuplicateDML",
	"FlowDescription":       "MissingFlowDescription",
	"FlowName":              "InvalidNamingConvention",
	"ProcessBuilder":        "ProcessBuilderUsage",
	"RecursiveAfterUpdate":  "RecursiveRecordUpdate",
	"SOQLQueryInLoop":       "SOQLInLoop",
	"TriggerOrder":          "UnspecifiedTriggerOrder",
}

// Alias returns the legacy display name for a canonical rule name.
func Alias(name string) (string, bool) {
	a, ok := aliases[name]
	return a, ok
}

// DisplayName renders a rule name for humans, e.g. "FlowName (InvalidNamingConvention)".
func DisplayName(name string) string {
	if a, ok := aliases[name]; ok {
		return name + " (" + a + ")"
	}
	return name
}

// CanonicalName maps a legacy display name back to its canonical rule name.
// Names that are not legacy aliases are returned unchanged.
func CanonicalName(name string) string {
	for canonical, legacy := range aliases {
		if legacy == name {
			return canonical
		}
	}
	return name
}
