package decoder

import "fmt"

// DecodeError reports a truncated or malformed instruction payload. It is
// logged at debug and the instruction is skipped; transaction processing
// continues (spec.md §7).
type DecodeError struct {
	Program string
	Reason  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Program, e.Reason)
}

func truncated(program string, need, have int) *DecodeError {
	return &DecodeError{Program: program, Reason: fmt.Sprintf("truncated payload: need %d bytes, have %d", need, have)}
}
