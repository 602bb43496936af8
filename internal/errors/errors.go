// Package errors provides structured application errors with gRPC status mapping.
package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies an application error.
type Code int

const (
	Unknown Code = iota
	Internal
	InvalidArgument
	Unavailable
	Timeout
	Cancelled
	ConfigMissing
	ConfigInvalid
	CaptureFailed
	OCRFailed
	SendFailed
)

var codeNames = map[Code]string{
	Unknown:         "UNKNOWN",
	Internal:        "INTERNAL",
	InvalidArgument: "INVALID_ARGUMENT",
	Unavailable:     "UNAVAILABLE",
	Timeout:         "TIMEOUT",
	Cancelled:       "CANCELLED",
	ConfigMissing:   "CONFIG_MISSING",
	ConfigInvalid:   "CONFIG_INVALID",
	CaptureFailed:   "CAPTURE_FAILED",
	OCRFailed:       "OCR_FAILED",
	SendFailed:      "SEND_FAILED",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return codeNames[Unknown]
}

// grpcCodeMap maps Code to gRPC status codes.
var grpcCodeMap = map[Code]codes.Code{
	Unknown:         codes.Unknown,
	Internal:        codes.Internal,
	InvalidArgument: codes.InvalidArgument,
	Unavailable:     codes.Unavailable,
	Timeout:         codes.DeadlineExceeded,
	Cancelled:       codes.Canceled,
	ConfigMissing:   codes.FailedPrecondition,
	ConfigInvalid:   codes.InvalidArgument,
	CaptureFailed:   codes.Internal,
	OCRFailed:       codes.Internal,
	SendFailed:      codes.Unavailable,
}

// ErrConfigMissing is returned when no configuration file exists yet.
var ErrConfigMissing = New(ConfigMissing, "configuration file not found")

// AppError is the base error type with structured error code and metadata.
type AppError struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Metadata) > 0 {
		s += fmt.Sprintf(" %v", e.Metadata)
	}
	if e.Cause != nil {
		s += fmt.Sprintf(" caused by: %v", e.Cause)
	}
	return s
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches an AppError with the same code and message, so errors.Is(err, ErrConfigMissing)
// works for wrapped copies too.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// GRPCCode returns the corresponding gRPC status code.
func (e *AppError) GRPCCode() codes.Code {
	if c, ok := grpcCodeMap[e.Code]; ok {
		return c
	}
	return codes.Unknown
}

// GRPCStatus returns a gRPC status for the error.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(e.GRPCCode(), e.Error())
}

// New creates a new AppError with the given code and message.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates a new AppError with formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps an existing error with formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithMetadata adds metadata to an AppError.
func (e *AppError) WithMetadata(key, value string) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// FromGRPCError converts a gRPC error into an AppError.
func FromGRPCError(err error) *AppError {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &AppError{Code: Unknown, Message: err.Error(), Cause: err}
	}
	return &AppError{Code: fromGRPCCode(st.Code()), Message: st.Message(), Cause: err}
}

// fromGRPCCode maps gRPC codes back to our codes (best effort).
func fromGRPCCode(c codes.Code) Code {
	switch c {
	case codes.InvalidArgument:
		return InvalidArgument
	case codes.Unavailable:
		return Unavailable
	case codes.DeadlineExceeded:
		return Timeout
	case codes.Canceled:
		return Cancelled
	case codes.Internal:
		return Internal
	default:
		return Unknown
	}
}

// IsCode checks if err, or anything it wraps, is an AppError with code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
