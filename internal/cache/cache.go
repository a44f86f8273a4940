// Package cache holds the last scan results and rule configuration between
// session operations.
package cache

import (
	"sync"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

const (
	KeyRuleConfig = "ruleconfig"
	KeyResults    = "results"
)

// Store is a process-local key/value store. Set replaces atomically; there is
// no eviction.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Memory is a Store backed by sync.Map.
type Memory struct {
	data sync.Map
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(key string) (any, bool) {
	return m.data.Load(key)
}

func (m *Memory) Set(key string, value any) {
	m.data.Store(key, value)
}

// Results returns the cached results. ok is false when nothing was cached or
// the stored value has an unexpected type.
func Results(s Store) ([]scanner.Result, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.Get(KeyResults)
	if !ok {
		return nil, false
	}
	results, ok := v.([]scanner.Result)
	return results, ok
}

// SetResults stores a copy of results so later caller mutation does not leak in.
func SetResults(s Store, results []scanner.Result) {
	if s == nil {
		return
	}
	cp := make([]scanner.Result, len(results))
	copy(cp, results)
	s.Set(KeyResults, cp)
}

func RuleConfig(s Store) (*rules.Document, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.Get(KeyRuleConfig)
	if !ok {
		return nil, false
	}
	doc, ok := v.(*rules.Document)
	return doc, ok && doc != nil
}

func SetRuleConfig(s Store, doc *rules.Document) {
	if s == nil {
		return
	}
	s.Set(KeyRuleConfig, doc.Clone())
}
