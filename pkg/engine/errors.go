package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass tells callers how to react to a failure.
type ErrorClass string

const (
	// ErrorClassTransient failures may succeed on the next render.
	ErrorClassTransient ErrorClass = "transient"
	// ErrorClassConflict failures are calls made in the wrong lifecycle phase.
	ErrorClassConflict ErrorClass = "conflict"
	// ErrorClassPermanent failures repeat until the element tree changes.
	ErrorClassPermanent ErrorClass = "permanent"
)

// Error codes.
const (
	ErrCodeUnsupportedType   = "UNSUPPORTED_TYPE"
	ErrCodeUnsupportedChild  = "UNSUPPORTED_CHILD"
	ErrCodeAlreadyFinalized  = "ALREADY_FINALIZED"
	ErrCodeAlreadyConfigured = "ALREADY_CONFIGURED"
	ErrCodeNotConfigured     = "NOT_CONFIGURED"
	ErrCodeEngineApply       = "ENGINE_APPLY_FAILED"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeRenderDiscarded   = "RENDER_DISCARDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// EngineError is the error type returned across the bridge. Resource names
// the element type or root involved; Operation the host callback or root
// method that failed.
//
//nolint:revive
type EngineError struct {
	Class     ErrorClass             `json:"class"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message"`
	Resource  string                 `json:"resource,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Err       error                  `json:"-"`
}

func newError(class ErrorClass, code, message string, err error) *EngineError {
	return &EngineError{Class: class, Code: code, Message: message, Err: err}
}

// Error formats class, message, context and the wrapped error.
func (e *EngineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Class, e.Message)

	var ctx []string
	if e.Resource != "" {
		ctx = append(ctx, "resource="+e.Resource)
	}
	if e.Operation != "" {
		ctx = append(ctx, "operation="+e.Operation)
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ctx, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *EngineError) Unwrap() error { return e.Err }

// Is matches any EngineError with the same class and code, so the Err
// sentinels below work with errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && e.Class == t.Class && e.Code == t.Code
}

// WithCode sets the error code.
func (e *EngineError) WithCode(code string) *EngineError {
	e.Code = code
	return e
}

// WithResource names the element type or root involved.
func (e *EngineError) WithResource(resource string) *EngineError {
	e.Resource = resource
	return e
}

// WithOperation names the callback or root method that failed.
func (e *EngineError) WithOperation(operation string) *EngineError {
	e.Operation = operation
	return e
}

// WithDetail attaches one key/value of context.
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// NewTransientError returns an uncoded transient error.
func NewTransientError(message string, err error) *EngineError {
	return newError(ErrorClassTransient, "", message, err)
}

// NewConflictError returns an uncoded conflict error.
func NewConflictError(message string, err error) *EngineError {
	return newError(ErrorClassConflict, "", message, err)
}

// NewPermanentError returns an uncoded permanent error.
func NewPermanentError(message string, err error) *EngineError {
	return newError(ErrorClassPermanent, "", message, err)
}

// Sentinels for errors.Is, one per code.
var (
	ErrUnsupportedType   = newError(ErrorClassPermanent, ErrCodeUnsupportedType, "", nil)
	ErrUnsupportedChild  = newError(ErrorClassPermanent, ErrCodeUnsupportedChild, "", nil)
	ErrAlreadyFinalized  = newError(ErrorClassConflict, ErrCodeAlreadyFinalized, "", nil)
	ErrAlreadyConfigured = newError(ErrorClassConflict, ErrCodeAlreadyConfigured, "", nil)
	ErrNotConfigured     = newError(ErrorClassConflict, ErrCodeNotConfigured, "", nil)
	ErrEngineApply       = newError(ErrorClassPermanent, ErrCodeEngineApply, "", nil)
	ErrRenderDiscarded   = newError(ErrorClassTransient, ErrCodeRenderDiscarded, "", nil)
)

// NewUnsupportedTypeError reports an element type the resolver cannot map.
func NewUnsupportedTypeError(typeName string) *EngineError {
	return newError(ErrorClassPermanent, ErrCodeUnsupportedType, "unsupported element type", nil).
		WithResource(typeName)
}

// NewUnsupportedChildError reports a text child. Deck elements have no
// text content.
func NewUnsupportedChildError(text string) *EngineError {
	return newError(ErrorClassPermanent, ErrCodeUnsupportedChild, "text children are not supported", nil).
		WithDetail("text", text)
}

// NewAlreadyFinalizedError reports use of a root after unmount.
func NewAlreadyFinalizedError(operation string) *EngineError {
	return newError(ErrorClassConflict, ErrCodeAlreadyFinalized, "root already finalized", nil).
		WithOperation(operation)
}

// NewAlreadyConfiguredError reports a second configure.
func NewAlreadyConfiguredError() *EngineError {
	return newError(ErrorClassConflict, ErrCodeAlreadyConfigured, "root already configured", nil).
		WithOperation("configure")
}

// NewNotConfiguredError reports a call that needs an engine instance before
// configure created one.
func NewNotConfiguredError(operation string) *EngineError {
	return newError(ErrorClassConflict, ErrCodeNotConfigured, "root not configured", nil).
		WithOperation(operation)
}

// NewEngineApplyError wraps a SetProps rejection.
func NewEngineApplyError(err error) *EngineError {
	return newError(ErrorClassPermanent, ErrCodeEngineApply, "engine rejected props", err).
		WithOperation("setProps")
}

// NewValidationError wraps a constructor, scene or config validation failure.
func NewValidationError(message string, err error) *EngineError {
	return newError(ErrorClassPermanent, ErrCodeValidation, message, err)
}

// NewRenderDiscardedError reports a render dropped before commit because it
// was cancelled, superseded or timed out.
func NewRenderDiscardedError(err error) *EngineError {
	return newError(ErrorClassTransient, ErrCodeRenderDiscarded, "render discarded before commit", err)
}

func classOf(err error) (ErrorClass, bool) {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Class, true
	}
	return "", false
}

// IsTransient reports whether err is worth rendering again.
func IsTransient(err error) bool {
	c, ok := classOf(err)
	return ok && c == ErrorClassTransient
}

// IsConflict reports a call made in the wrong lifecycle phase.
func IsConflict(err error) bool {
	c, ok := classOf(err)
	return ok && c == ErrorClassConflict
}

// IsPermanent reports a failure that repeats until the tree changes.
func IsPermanent(err error) bool {
	c, ok := classOf(err)
	return ok && c == ErrorClassPermanent
}

// IsUnsupportedType reports an element type with no catalogue entry.
func IsUnsupportedType(err error) bool { return errors.Is(err, ErrUnsupportedType) }

// IsLifecycleError reports NOT_CONFIGURED, ALREADY_CONFIGURED and
// ALREADY_FINALIZED.
func IsLifecycleError(err error) bool {
	return IsConflict(err) && (errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrAlreadyConfigured) ||
		errors.Is(err, ErrNotConfigured))
}

// Code returns the code of the outermost EngineError in the chain, or
// INTERNAL_ERROR.
func Code(err error) string {
	var e *EngineError
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return ErrCodeInternal
}

// Class returns the class of the outermost EngineError, defaulting to
// permanent.
func Class(err error) ErrorClass {
	if c, ok := classOf(err); ok {
		return c
	}
	return ErrorClassPermanent
}
