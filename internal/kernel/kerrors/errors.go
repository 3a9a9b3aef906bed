// Package kerrors implements the kernel's error taxonomy :
// sentinel errors for expected conditions, a structured ToolError for
// dispatcher failures, and a TurnError carrying conversation-engine
// phase/depth context.
package kerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one of the named error kinds below.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindBadRequest           Kind = "bad_request"
	KindProviderTransient    Kind = "provider_transient"
	KindProviderFatal        Kind = "provider_fatal"
	KindCancelledByUser      Kind = "cancelled_by_user"
	KindContainmentViolation Kind = "containment_violation"
	KindToolFailure          Kind = "tool_failure"
	KindToolReport           Kind = "tool_report"
	KindRecursionLimit       Kind = "recursion_limit_reached"
)

// IsRetryable reports whether this kind suggests retrying may succeed.
func (k Kind) IsRetryable() bool {
	return k == KindProviderTransient
}

var (
	ErrAgentNotFound      = errors.New("agent not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrRagDocNotFound     = errors.New("rag document not found")
	ErrMissingField       = errors.New("missing required field")
	ErrCancelledByUser    = errors.New("stopped by user")
	ErrPathTraversal      = errors.New("path traversal not allowed")
	ErrProjectInaccessible = errors.New("project path not accessible")
	ErrCommandBlocked     = errors.New("Command blocked for security reasons")
	ErrRecursionLimit     = errors.New("recursion depth limit reached")
)

// KernelError is a structured error carrying a Kind plus the sentinel or
// tool-specific cause.
type KernelError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *KernelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *KernelError) Unwrap() error { return e.Cause }

// New builds a KernelError of the given kind.
func New(kind Kind, message string) *KernelError {
	return &KernelError{Kind: kind, Message: message}
}

// Wrap builds a KernelError of the given kind around an underlying cause.
func Wrap(kind Kind, cause error) *KernelError {
	return &KernelError{Kind: kind, Cause: cause}
}

// As extracts a *KernelError from an error chain.
func As(err error) (*KernelError, bool) {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke, true
	}
	return nil, false
}

// ToolErrorType categorises a tool execution failure.
type ToolErrorType string

const (
	ToolErrorInvalidInput ToolErrorType = "invalid_input"
	ToolErrorTimeout      ToolErrorType = "timeout"
	ToolErrorContainment  ToolErrorType = "containment"
	ToolErrorExecution    ToolErrorType = "execution"
	ToolErrorUnknown      ToolErrorType = "unknown"
)

// ToolError is a structured error from tool execution, with automatic
// classification from the underlying cause.
type ToolError struct {
	Type     ToolErrorType
	ToolName string
	Message  string
	Cause    error
}

func (e *ToolError) Error() string {
	parts := []string{fmt.Sprintf("[tool:%s]", e.Type)}
	if e.ToolName != "" {
		parts = append(parts, e.ToolName)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ToolError) Unwrap() error { return e.Cause }

// NewToolError creates a ToolError, classifying the cause automatically.
func NewToolError(toolName string, cause error) *ToolError {
	te := &ToolError{ToolName: toolName, Cause: cause, Type: ToolErrorUnknown}
	if cause != nil {
		te.Message = cause.Error()
		te.Type = classify(cause)
	}
	return te
}

func (e *ToolError) WithType(t ToolErrorType) *ToolError {
	e.Type = t
	return e
}

func classify(err error) ToolErrorType {
	if err == nil {
		return ToolErrorUnknown
	}
	if errors.Is(err, ErrPathTraversal) || errors.Is(err, ErrCommandBlocked) || errors.Is(err, ErrProjectInaccessible) {
		return ToolErrorContainment
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded"):
		return ToolErrorTimeout
	case strings.Contains(s, "invalid") || strings.Contains(s, "missing"):
		return ToolErrorInvalidInput
	default:
		return ToolErrorExecution
	}
}

// TurnError carries the conversation-engine phase and recursion depth an
// error occurred at.
type TurnError struct {
	Phase   Phase
	Depth   int
	Message string
	Cause   error
}

func (e *TurnError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("turn error at %s (depth %d): %s", e.Phase, e.Depth, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("turn error at %s (depth %d): %v", e.Phase, e.Depth, e.Cause)
	}
	return fmt.Sprintf("turn error at %s (depth %d)", e.Phase, e.Depth)
}

func (e *TurnError) Unwrap() error { return e.Cause }

// Phase is a Conversation Engine state .
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseBuilding       Phase = "building"
	PhaseStreaming      Phase = "streaming"
	PhasePostProcessing Phase = "post-processing"
	PhaseError          Phase = "error"
)
