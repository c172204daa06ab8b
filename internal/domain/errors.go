package domain

import (
	"errors"
	"fmt"
)

// ResourceUnavailableError means the scanner hardware could not be acquired
// (permission denied, no capable device, or already held). Recoverable by
// prompting the operator; never affects order state.
type ResourceUnavailableError struct {
	Resource string
	Err      error
}

func (e ResourceUnavailableError) Error() string {
	if e.Resource == "" {
		return "resource unavailable"
	}
	return fmt.Sprintf("%s unavailable", e.Resource)
}

func (e ResourceUnavailableError) Unwrap() error { return e.Err }

// InvalidReferenceError is a terminal verification outcome: the reference is
// unknown, expired, or unpaid. The operator must present a different one.
type InvalidReferenceError struct {
	Reference string
}

func (e InvalidReferenceError) Error() string {
	return "reference not valid"
}

// AlreadyRedeemedError is success-shaped but terminal: the reference exists
// and once verified fine, but its redemption right is spent.
type AlreadyRedeemedError struct {
	Reference string
	OrderID   string
}

func (e AlreadyRedeemedError) Error() string {
	return "reference already redeemed"
}

// InvalidTransitionError rejects an operation the current session state
// forbids, e.g. a second start while one is in flight. Local and
// non-retriable.
type InvalidTransitionError struct {
	State  SessionState
	Action string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Action, e.State)
}

// UpstreamError wraps transport or server failures talking to the wash
// ledger. Transient; safe to retry; must never move local state forward.
type UpstreamError struct {
	Op  string
	Err error
}

func (e UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ledger %s failed", e.Op)
	}
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e UpstreamError) Unwrap() error { return e.Err }

// StaleDataError flags a cached view that contradicts a confirmed local
// action; resolved by an out-of-cadence registry refresh.
type StaleDataError struct {
	Msg string
}

func (e StaleDataError) Error() string {
	if e.Msg == "" {
		return "stale data"
	}
	return e.Msg
}

// NotFoundError keeps the generic lookup-miss shape for the HTTP surface.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func IsResourceUnavailable(err error) bool {
	var target ResourceUnavailableError
	return errors.As(err, &target)
}

func IsInvalidReference(err error) bool {
	var target InvalidReferenceError
	return errors.As(err, &target)
}

func IsAlreadyRedeemed(err error) bool {
	var target AlreadyRedeemedError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}

func IsStaleData(err error) bool {
	var target StaleDataError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
