package generator

import (
	"errors"
	"fmt"
)

var (
	ErrPromptRequired   = errors.New("prompt is required")
	ErrExtractionFailed = errors.New("could not find JSON in model output")
	ErrMalformedPayload = errors.New("malformed model payload")
	ErrEmptyResult      = errors.New("model payload contains neither files nor edits")
	ErrTransport        = errors.New("model transport failure")
	ErrTimeout          = errors.New("model call timed out")
)

// MalformedPayloadError keeps the offending text for diagnostics.
type MalformedPayloadError struct {
	Payload string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", ErrMalformedPayload, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

func (e *MalformedPayloadError) Is(target error) bool { return target == ErrMalformedPayload }

// TransportError wraps a failed model call.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Provider == "" {
		return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrTransport, e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
