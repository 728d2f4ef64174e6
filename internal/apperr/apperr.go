// Package apperr holds the failure taxonomy of a conversion attempt. Every
// failure ends up as one display string; the Kind is kept for routing
// (status codes, operator alerts) and tests.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindPrecondition
	KindTransport
	KindMalformedResponse
	KindUploadRejected
	KindConversionRejected
	KindMissingArtifact
	KindCancelled
	KindAuthRejected
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUploadRejected:
		return "upload_rejected"
	case KindConversionRejected:
		return "conversion_rejected"
	case KindMissingArtifact:
		return "missing_artifact"
	case KindCancelled:
		return "cancelled"
	case KindAuthRejected:
		return "auth_rejected"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, apperr.Transport) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	Precondition       = &Error{Kind: KindPrecondition}
	Transport          = &Error{Kind: KindTransport}
	MalformedResponse  = &Error{Kind: KindMalformedResponse}
	UploadRejected     = &Error{Kind: KindUploadRejected}
	ConversionRejected = &Error{Kind: KindConversionRejected}
	MissingArtifact    = &Error{Kind: KindMissingArtifact}
	Cancelled          = &Error{Kind: KindCancelled}
	AuthRejected       = &Error{Kind: KindAuthRejected}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns KindUnknown for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message reduces err to what the user sees.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// ServerMessage prefers what the backend said over the generic default.
func ServerMessage(server, fallback string) string {
	if server != "" {
		return server
	}
	return fallback
}
