package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes form a closed set: the mapping from a failure kind to the
// outward signal is part of the API contract and must stay stable.
const (
	CodeNotFound           = "not_found"
	CodeAlreadyExists      = "already_exists"
	CodeAlreadyEdited      = "already_edited"
	CodeInvariantViolation = "invariant_violation"
	CodeAccessDenied       = "access_denied"
	CodeUpstreamError      = "upstream_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound reports a missing entity by id, e.g. NotFound("scenario", 12).
func NotFound(entity string, id any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s %v not found", entity, id))
}

func NotFoundByParams(entity string, params ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found by params %v", entity, params))
}

func AlreadyExists(entity string, key any) *Error {
	return New(http.StatusConflict, CodeAlreadyExists, fmt.Errorf("%s already exists for %v", entity, key))
}

// AlreadyEdited reports that a public row already has a scenario-local copy:
// the caller raced with an earlier edit of the same object in this scenario.
func AlreadyEdited(entity string, scenarioID int64) *Error {
	return New(http.StatusConflict, CodeAlreadyEdited, fmt.Errorf("%s has already been edited in scenario %d", entity, scenarioID))
}

func InvariantViolation(detail string) *Error {
	return New(http.StatusInternalServerError, CodeInvariantViolation, errors.New(detail))
}

func AccessDenied(entity string, id any) *Error {
	return New(http.StatusForbidden, CodeAccessDenied, fmt.Errorf("access denied to %s %v", entity, id))
}

func Upstream(service string, err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamError, fmt.Errorf("%s: %w", service, err))
}

// Status resolves the HTTP status for an arbitrary error chain. Errors that
// do not carry an *Error anywhere in the chain map to 500.
func Status(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// Code resolves the outward error code for an arbitrary error chain.
func Code(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return "internal_error"
}

// Is reports whether the chain carries an *Error with the given code.
func Is(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
