package ruleconfig

import "fmt"

// ConfigParseError reports an existing config file that could not be parsed.
// No document is produced alongside it.
type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parse rule config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// ConfigWriteError reports a failed persist. Resolve still returns the
// in-memory document together with this error.
type ConfigWriteError struct {
	Path string
	Err  error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("write rule config %s: %v", e.Path, e.Err)
}

func (e *ConfigWriteError) Unwrap() error { return e.Err }
