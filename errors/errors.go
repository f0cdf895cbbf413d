package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDefine   Phase = "define"   // descriptor construction
	PhaseAllocate Phase = "allocate" // layout allocation
	PhaseEncode   Phase = "encode"   // typed value to raw bits
	PhaseDecode   Phase = "decode"   // raw bits to typed value
	PhaseCompile  Phase = "compile"  // expression compilation
	PhaseEval     Phase = "eval"     // compiled formula evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindRange            Kind = "range"
	KindFormat           Kind = "format"
	KindUnknownField     Kind = "unknown_field"
	KindIndexOutOfRange  Kind = "index_out_of_range"
	KindNotSubscriptable Kind = "not_subscriptable"
	KindTypeMismatch     Kind = "type_mismatch"
	KindInvalidEnum      Kind = "invalid_enum"
	KindUnsupported      Kind = "unsupported"
	KindInvalidData      Kind = "invalid_data"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
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

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the descriptor type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Configuration creates an invalid declaration error
func Configuration(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindConfiguration,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// OutOfRange creates a range validation error for bounded numeric types
func OutOfRange(path []string, value, min, max any) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindRange,
		Path:   path,
		Detail: fmt.Sprintf("value %v out of range %v <= value <= %v", value, min, max),
		Value:  value,
	}
}

// BadFormat creates a malformed text error
func BadFormat(path []string, want, got string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindFormat,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %q", want, got),
		Value:  got,
	}
}

// UnknownField creates an unknown symbolic name error
func UnknownField(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownField,
		Path:   path,
		Detail: fmt.Sprintf("undefined subfield %q", name),
	}
}

// IndexOutOfRange creates an index error on a fixed-dimension composite
func IndexOutOfRange(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIndexOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of range (length %d)", index, length),
		Value:  index,
	}
}

// NotSubscriptable creates an error for indexing a non-composite field
func NotSubscriptable(path []string, typeName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindNotSubscriptable,
		Path:   path,
		Type:   typeName,
		Detail: "not subscriptable",
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %s, want %s", got, want),
	}
}

// InvalidEnum creates an invalid enum label error
func InvalidEnum(path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("undefined enum %v", value),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: fmt.Sprintf(what, args...),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}
