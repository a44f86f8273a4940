package session

import (
	"fmt"

	"flowscanner/internal/prompt"
)

// ErrSelectionCancelled marks a user backing out of a prompt. Sessions turn
// it into StatusCancelled; it is never returned to callers.
var ErrSelectionCancelled = prompt.ErrCancelled

// Engine stages.
const (
	StageCatalog = "catalog"
	StageParse   = "parse"
	StageScan    = "scan"
	StageFix     = "fix"
)

// EngineError is a failure reported by the scanner engine. The cache is left
// untouched when one is returned.
type EngineError struct {
	Stage string
	Err   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Stage, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// ArtifactWriteError is a failure persisting one fixed flow.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write fixed flow %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }
