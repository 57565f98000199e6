// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidTriggerFormat = errors.New("invalid trigger format")
	ErrUnknownAgent         = errors.New("unknown agent")
	ErrSchedulerStopped     = errors.New("scheduler is stopped")
	ErrMarketClosed         = errors.New("market is closed")
	ErrInvalidSymbol        = errors.New("invalid symbol format")
	ErrConfigInvalid        = errors.New("invalid configuration")
	ErrDataNotFound         = errors.New("data not found")
	ErrTimeout              = errors.New("operation timed out")
	ErrStoreNotInitialized  = errors.New("store is not initialized")
)

// TriggerError reports a malformed schedule expression. It wraps
// ErrInvalidTriggerFormat so callers can match with errors.Is.
type TriggerError struct {
	Expr   string
	Reason string
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("invalid trigger %q: %s", e.Expr, e.Reason)
}

func (e *TriggerError) Unwrap() error {
	return ErrInvalidTriggerFormat
}

// NewTriggerError creates a new TriggerError.
func NewTriggerError(expr, reason string) *TriggerError {
	return &TriggerError{Expr: expr, Reason: reason}
}

// AgentError represents a failure inside an agent body during one run.
type AgentError struct {
	AgentName string
	Operation string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent error [%s] %s: %v", e.AgentName, e.Operation, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(agentName, operation string, err error) *AgentError {
	return &AgentError{AgentName: agentName, Operation: operation, Err: err}
}

// ContextBuildError represents a failure to assemble an execution context
// for a run. The run is recorded as failed; the schedule continues.
type ContextBuildError struct {
	AgentName string
	Err       error
}

func (e *ContextBuildError) Error() string {
	return fmt.Sprintf("building context for %s: %v", e.AgentName, e.Err)
}

func (e *ContextBuildError) Unwrap() error {
	return e.Err
}

// NewContextBuildError creates a new ContextBuildError.
func NewContextBuildError(agentName string, err error) *ContextBuildError {
	return &ContextBuildError{AgentName: agentName, Err: err}
}

// CollectorError represents a failed quote collection for a single market.
// It is logged at the collector boundary and yields empty data for that
// market only.
type CollectorError struct {
	Market string
	Err    error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collector error [%s]: %v", e.Market, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}

// NewCollectorError creates a new CollectorError.
func NewCollectorError(marketCode string, err error) *CollectorError {
	return &CollectorError{Market: marketCode, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
