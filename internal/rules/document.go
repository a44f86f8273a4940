package rules

// Rules that accept an expression parameter.
const (
	RuleFlowName   = "FlowName"
	RuleAPIVersion = "APIVersion"
)

// Placeholder expressions offered when a parameterized rule has none.
const (
	DefaultNamingConvention = "[A-Za-z0-9]+_[A-Za-z0-9]+"
	DefaultAPIVersion       = ">=50"
)

// IsParameterized reports whether the rule takes an expression.
func IsParameterized(name string) bool {
	return name == RuleFlowName || name == RuleAPIVersion
}

// DefaultExpression returns the placeholder for a parameterized rule, or "".
func DefaultExpression(name string) string {
	switch name {
	case RuleFlowName:
		return DefaultNamingConvention
	case RuleAPIVersion:
		return DefaultAPIVersion
	default:
		return ""
	}
}

// Entry is the configuration of a single rule. An empty Expression means the
// engine default applies.
type Entry struct {
	Severity   Severity `json:"severity"`
	Expression string   `json:"expression,omitempty"`
}

// Document is an ordered rule name -> Entry mapping together with the file it
// was loaded from or will be written to. Names keep insertion order.
type Document struct {
	Path  string
	names []string
	rules map[string]Entry
}

func NewDocument(path string) *Document {
	return &Document{
		Path:  path,
		rules: make(map[string]Entry),
	}
}

// Set adds or replaces an entry. New names are appended.
func (d *Document) Set(name string, e Entry) {
	if d.rules == nil {
		d.rules = make(map[string]Entry)
	}
	if _, exists := d.rules[name]; !exists {
		d.names = append(d.names, name)
	}
	d.rules[name] = e
}

func (d *Document) Get(name string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.rules[name]
	return e, ok
}

func (d *Document) Delete(name string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.rules[name]; !ok {
		return false
	}
	delete(d.rules, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the rule names in document order.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := NewDocument(d.Path)
	for _, n := range d.names {
		c.Set(n, d.rules[n])
	}
	return c
}

// Equal compares rule contents, ignoring Path and key order.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for _, n := range d.Names() {
		o, ok := other.Get(n)
		if !ok || o != d.rules[n] {
			return false
		}
	}
	return true
}
