package common

import (
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode classifies a processing failure or audit finding.
type ErrorCode string

const (
	CodeExtractionFail ErrorCode = "EXTRACTION_FAIL"
	CodeSchemaMismatch ErrorCode = "SCHEMA_MISMATCH"
	CodeMissingField   ErrorCode = "MISSING_FIELD"
	CodeOCRNoise       ErrorCode = "OCR_NOISE"
)

// Stage is the pipeline stage an ErrorEvent was raised in.
type Stage string

const (
	StageOCR       Stage = "OCR"
	StageParser    Stage = "PARSER"
	StageValidator Stage = "VALIDATOR"
	StagePostproc  Stage = "POSTPROC"
)

// ErrorEvent is a structured, non-fatal failure report about one document.
type ErrorEvent struct {
	Code    ErrorCode
	Stage   Stage
	DocID   string
	Field   string
	Message string
	Cause   error
}

func (e ErrorEvent) Error() string {
	msg := fmt.Sprintf("%s@%s: %s", e.Code, e.Stage, e.Message)
	if e.Field != "" {
		msg += " (field " + e.Field + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e ErrorEvent) Unwrap() error { return e.Cause }

// Log writes the event as a warning named "error.event".
func (e ErrorEvent) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"code", e.Code, "stage", e.Stage, "doc_id", e.DocID, "message", e.Message}
	if e.Field != "" {
		attrs = append(attrs, "field", e.Field)
	}
	if e.Cause != nil {
		attrs = append(attrs, "error", e.Cause)
	}
	logger.Warn("error.event", attrs...)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
