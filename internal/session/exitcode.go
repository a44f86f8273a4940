package session

import "flowscanner/internal/scanner"

// ExitCode maps a session result to the process exit status:
// 0 clean, 1 violations present, 2 partial failure, 3 fatal.
func ExitCode(o *Outcome, err error) int {
	fatal := o == nil && err != nil
	partial := o != nil && err != nil
	violations := o != nil && scanner.CountViolations(o.Presented) > 0
	return exitCodeForRun(fatal, partial, violations)
}

func exitCodeForRun(fatal, partial, violations bool) int {
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if violations {
		return 1
	}
	return 0
}
