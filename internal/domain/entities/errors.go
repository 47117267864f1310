package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a chain call does not answer within its deadline
	ErrTimeout = errors.New("chain call timed out")
	// ErrReverted is returned when the contract call reverted
	ErrReverted = errors.New("execution reverted")
	// ErrInvalidResponse is returned for malformed or unexpectedly shaped return data
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInvalidAddress is returned for anything that is not a raw hex address or the native sentinel
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidPath is returned for paths that are too short or repeat a token in adjacent hops
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidAmount is returned for amounts that cannot be parsed or are not positive
	ErrInvalidAmount = errors.New("invalid amount")
)

// SwapErrorKind categorizes a failed swap attempt
type SwapErrorKind string

const (
	KindInvalidSwap           SwapErrorKind = "InvalidSwap"
	KindUserRejected          SwapErrorKind = "UserRejected"
	KindInsufficientAllowance SwapErrorKind = "InsufficientAllowance"
	KindNoRoute               SwapErrorKind = "NoRoute"
	KindDeadlineExceeded      SwapErrorKind = "DeadlineExceeded"
	KindExecutionFailed       SwapErrorKind = "ExecutionFailed"
	KindTimeout               SwapErrorKind = "Timeout"
	KindInvalidResponse       SwapErrorKind = "InvalidResponse"
)

// SwapError is the failure result of a swap attempt
type SwapError struct {
	Kind SwapErrorKind
	Op   string
	Err  error
}

func (e *SwapError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SwapError) Unwrap() error {
	return e.Err
}

// Is matches another *SwapError by kind, so errors.Is(err, ErrInvalidSwap) works
// for any wrapped swap error of that kind.
func (e *SwapError) Is(target error) bool {
	var t *SwapError
	if errors.As(target, &t) {
		return t.Op == "" && t.Err == nil && t.Kind == e.Kind
	}
	return false
}

// Kind-only sentinels for errors.Is
var (
	ErrInvalidSwap           = &SwapError{Kind: KindInvalidSwap}
	ErrUserRejected          = &SwapError{Kind: KindUserRejected}
	ErrInsufficientAllowance = &SwapError{Kind: KindInsufficientAllowance}
	ErrNoRoute               = &SwapError{Kind: KindNoRoute}
	ErrDeadlineExceeded      = &SwapError{Kind: KindDeadlineExceeded}
	ErrExecutionFailed       = &SwapError{Kind: KindExecutionFailed}
)

func NewSwapError(kind SwapErrorKind, op string, err error) *SwapError {
	return &SwapError{Kind: kind, Op: op, Err: err}
}

// ErrorKind extracts the swap error kind, or "" if err is not a swap error
func ErrorKind(err error) SwapErrorKind {
	var se *SwapError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
