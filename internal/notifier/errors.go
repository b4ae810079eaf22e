package notifier

import "fmt"

// NotifyErrorKind distinguishes the failure modes spec.md §7 requires
// logging to carry.
type NotifyErrorKind string

const (
	KindMisconfigured    NotifyErrorKind = "misconfigured"
	KindTransportFailure NotifyErrorKind = "transport_failure"
	KindTimeout          NotifyErrorKind = "timeout"
	KindNon2xxResponse   NotifyErrorKind = "non_2xx_response"
)

// NotifyError reports a single destination send failure. It is always
// logged and never propagated or retried (spec.md §7).
type NotifyError struct {
	Kind        NotifyErrorKind
	Destination string
	Err         error
}

func (e *NotifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notify %s: %s: %v", e.Destination, e.Kind, e.Err)
	}
	return fmt.Sprintf("notify %s: %s", e.Destination, e.Kind)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

func misconfigured(destination string) *NotifyError {
	return &NotifyError{Kind: KindMisconfigured, Destination: destination}
}

func transportFailure(destination string, err error) *NotifyError {
	return &NotifyError{Kind: KindTransportFailure, Destination: destination, Err: err}
}

func timeout(destination string, err error) *NotifyError {
	return &NotifyError{Kind: KindTimeout, Destination: destination, Err: err}
}

func non2xxResponse(destination string, status int) *NotifyError {
	return &NotifyError{Kind: KindNon2xxResponse, Destination: destination, Err: fmt.Errorf("status %d", status)}
}
