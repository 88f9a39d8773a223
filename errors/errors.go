package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the plugin lifecycle the error occurred
type Phase string

const (
	PhaseInit         Phase = "init"         // capability resolution
	PhaseRegistration Phase = "registration" // module/class/method registration
	PhaseSlot         Phase = "slot"         // slot array access
	PhaseForeign      Phase = "foreign"      // foreign object install/retrieve
	PhaseAudio        Phase = "audio"        // channel lifecycle
	PhaseHook         Phase = "hook"         // per-frame hook dispatch
)

// Kind categorizes the error
type Kind string

const (
	KindNullTable      Kind = "null_table"
	KindNotInitialized Kind = "not_initialized"
	KindRejected       Kind = "rejected"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindTypeMismatch   Kind = "type_mismatch"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindInvalidInput   Kind = "invalid_input"
	KindFinished       Kind = "finished"
)

// Error is the structured error type used throughout the bridging layer.
// It only represents recoverable conditions; slot-contract violations are
// reported as immediate faults instead, and captured at the host boundary.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// NullTable creates an error for a capability table the host did not provide
func NullTable(table string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindNullTable,
		Detail: fmt.Sprintf("host returned no %s table", table),
	}
}

// NotInitialized creates an error for use of the layer before Init
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// ModuleRejected creates an error for a module registration the host refused
func ModuleRejected(module string) *Error {
	return &Error{
		Phase:  PhaseRegistration,
		Kind:   KindRejected,
		Path:   []string{module},
		Detail: fmt.Sprintf("module %q already exists, can't register it", module),
	}
}

// ClassRejected creates an error for a class registration the host refused
func ClassRejected(module, class string) *Error {
	return &Error{
		Phase:  PhaseRegistration,
		Kind:   KindRejected,
		Path:   []string{module, class},
		Detail: fmt.Sprintf("cannot register foreign class %q in module %q: module either does not exist or is locked", class, module),
	}
}

// MethodRejected creates an error for a method registration the host refused
func MethodRejected(module, signature string) *Error {
	return &Error{
		Phase:  PhaseRegistration,
		Kind:   KindRejected,
		Path:   []string{module, signature},
		Detail: fmt.Sprintf("cannot register foreign method %q in module %q: module either does not exist or is locked", signature, module),
	}
}

// OutOfBounds creates a slot or index bounds error
func OutOfBounds(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("%s %d out of bounds (count %d)", what, index, length),
		Value:  index,
	}
}

// TypeMismatch creates a value kind mismatch error
func TypeMismatch(phase Phase, slot int, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("slot %d holds %s, expected %s", slot, got, want),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(slot int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseSlot,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("slot %d: invalid UTF-8 sequence: %x", slot, preview),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
