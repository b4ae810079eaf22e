package classifier

import "fmt"

// ClassifyError reports that one instruction could not be turned into an
// Event — mint metadata unavailable, or no matching token-balance delta
// was found. It is logged at warn and the instruction is skipped; other
// instructions in the same transaction proceed (spec.md §7).
type ClassifyError struct {
	Reason string
	Err    error
}

func (e *ClassifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classify: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classify: %s", e.Reason)
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}

func mintMetadataUnavailable(mint string, err error) *ClassifyError {
	return &ClassifyError{Reason: fmt.Sprintf("mint metadata unavailable for %s", mint), Err: err}
}

func balanceDeltaNotFound(mint string) *ClassifyError {
	return &ClassifyError{Reason: fmt.Sprintf("no token balance delta found for mint %s", mint)}
}
