package exceptions

import "fmt"

// ErrorKind classifies a failed resolution leg.
type ErrorKind string

const (
	ProviderUnavailable ErrorKind = "ProviderUnavailable"
	ProviderTimeout     ErrorKind = "ProviderTimeout"
	QuotaExceeded       ErrorKind = "QuotaExceeded"
	MalformedResponse   ErrorKind = "MalformedResponse"
	EstimationFailure   ErrorKind = "EstimationFailure"
	UnknownPort         ErrorKind = "UnknownPort"
)

// ClassifiedError is the typed error surfaced to external callers.
type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Recoverable errors let the resolver continue to the next leg silently.
// MalformedResponse and EstimationFailure are fatal for their leg.
func (e *ClassifiedError) Recoverable() bool {
	switch e.Kind {
	case ProviderUnavailable, ProviderTimeout, QuotaExceeded:
		return true
	}
	return false
}

func Classified(kind ErrorKind, message string, err error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: message, Err: err}
}

// AsClassified unwraps err into a ClassifiedError, defaulting to MalformedResponse.
func AsClassified(err error) *ClassifiedError {
	if ce, ok := err.(*ClassifiedError); ok {
		return ce
	}
	return &ClassifiedError{Kind: MalformedResponse, Message: "unclassified failure", Err: err}
}
