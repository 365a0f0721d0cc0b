package models

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates why a generation run failed.
type ErrorKind string

const (
	KindMissingImage    ErrorKind = "MissingImage"
	KindEmptyResult     ErrorKind = "EmptyResult"
	KindNoMediaProduced ErrorKind = "NoMediaProduced"
	KindTransportError  ErrorKind = "TransportError"
	KindProductNotFound ErrorKind = "ProductNotFound"
)

// DefaultFailureMessage is shown when an error carries no message.
const DefaultFailureMessage = "Failed to generate video"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyLoading = errors.New("generation already in progress")
	ErrNoVideo        = errors.New("no video available")
	ErrShuttingDown   = errors.New("generation is shutting down")

	ErrMissingImage    = &GenerationError{Kind: KindMissingImage}
	ErrEmptyResult     = &GenerationError{Kind: KindEmptyResult}
	ErrNoMediaProduced = &GenerationError{Kind: KindNoMediaProduced}
	ErrTransport       = &GenerationError{Kind: KindTransportError}
	ErrProductNotFound = &GenerationError{Kind: KindProductNotFound}
)

// GenerationError is a classified failure of the video generation chain.
// errors.Is matches on Kind, so the Err* values above work as sentinels.
type GenerationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewGenerationError(kind ErrorKind, message string) *GenerationError {
	return &GenerationError{Kind: kind, Message: message}
}

// TransportError classifies err as a transport failure and keeps its message.
func TransportError(err error) *GenerationError {
	return &GenerationError{Kind: KindTransportError, Message: err.Error(), Err: err}
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Kind == e.Kind
}

// AsGenerationError classifies any error returned by a synthesis strategy.
// Unclassified errors become transport errors; a blank message falls back to
// DefaultFailureMessage.
func AsGenerationError(err error) *GenerationError {
	var ge *GenerationError
	if !errors.As(err, &ge) {
		ge = TransportError(err)
	}
	if ge.Message == "" {
		clone := *ge
		clone.Message = DefaultFailureMessage
		ge = &clone
	}
	return ge
}
