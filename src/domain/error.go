package domain

import (
	"errors"
	"net/http"
)

type ErrorCode struct {
	Name       string
	StatusCode int
}

var (
	ErrorCodeParameterInvalid = ErrorCode{Name: "PARAMETER_INVALID", StatusCode: http.StatusBadRequest}

	ErrorCodeResourceNotFound = ErrorCode{Name: "RESOURCE_NOT_FOUND", StatusCode: http.StatusNotFound}
	ErrorCodeResourceConflict = ErrorCode{Name: "RESOURCE_CONFLICT", StatusCode: http.StatusConflict}

	ErrorCodeAuthPermissionDenied = ErrorCode{Name: "AUTH_PERMISSION_DENIED", StatusCode: http.StatusForbidden}
	ErrorCodeAuthNotAuthenticated = ErrorCode{Name: "AUTH_NOT_AUTHENTICATED", StatusCode: http.StatusUnauthorized}

	ErrorCodeInternalProcess    = ErrorCode{Name: "INTERNAL_PROCESS", StatusCode: http.StatusInternalServerError}
	ErrorCodeRemoteProcessError = ErrorCode{Name: "REMOTE_PROCESS_ERROR", StatusCode: http.StatusInternalServerError}
	ErrorCodeStorageError       = ErrorCode{Name: "STORAGE_ERROR", StatusCode: http.StatusInternalServerError}
)

// Sentinel causes, matched with errors.Is through DomainError.Unwrap
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidDay        = errors.New("invalid day number")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeLocked   = errors.New("challenge is locked")
	ErrContentNotFound   = errors.New("challenge content not found")
	ErrUnlockInProgress  = errors.New("unlock already in progress")
	ErrUnlockFailed      = errors.New("failed to unlock challenge")
	ErrStorage           = errors.New("ledger storage failure")
)

// DomainError is the error type that crosses the service boundary.
// Handlers translate it into an HTTP response without inspecting the cause.
type DomainError struct {
	code      ErrorCode
	err       error
	clientMsg string
	detail    map[string]interface{}
}

type ErrorOption func(*DomainError)

func WithMsg(msg string) ErrorOption {
	return func(e *DomainError) {
		e.clientMsg = msg
	}
}

func WithDetail(detail map[string]interface{}) ErrorOption {
	return func(e *DomainError) {
		e.detail = detail
	}
}

func NewError(code ErrorCode, err error, opts ...ErrorOption) error {
	e := DomainError{code: code, err: err}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e DomainError) Error() string {
	if e.err == nil {
		return e.Name()
	}
	return e.err.Error()
}

func (e DomainError) Unwrap() error {
	return e.err
}

func (e DomainError) Code() ErrorCode {
	return e.code
}

func (e DomainError) Name() string {
	if e.code.Name == "" {
		return "UNKNOWN_ERROR"
	}
	return e.code.Name
}

func (e DomainError) HTTPStatus() int {
	if e.code.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.code.StatusCode
}

func (e DomainError) ClientMsg() string {
	return e.clientMsg
}

func (e DomainError) Detail() map[string]interface{} {
	return e.detail
}

// joinedError keeps both a sentinel and the underlying cause reachable by errors.Is
type joinedError struct {
	sentinel error
	cause    error
}

func (e *joinedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *joinedError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}

// Wrap attaches a sentinel to a lower-level cause
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &joinedError{sentinel: sentinel, cause: cause}
}

func NewUnauthorizedError() error {
	return NewError(ErrorCodeAuthNotAuthenticated, ErrUnauthorized, WithMsg("Unauthorized"))
}

func NewInvalidDayError(cause error) error {
	return NewError(ErrorCodeParameterInvalid, Wrap(ErrInvalidDay, cause), WithMsg("Invalid day number"))
}

func NewStorageError(cause error) error {
	return NewError(ErrorCodeStorageError, Wrap(ErrStorage, cause), WithMsg("Ledger storage unavailable"))
}

func NewUnlockFailedError(cause error) error {
	return NewError(ErrorCodeRemoteProcessError, Wrap(ErrUnlockFailed, cause), WithMsg("Failed to unlock challenge"))
}
