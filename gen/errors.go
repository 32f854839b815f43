package gen

import "fmt"

// Error codes for generation-time failures. These are schema or programmer
// errors; any one of them aborts the whole pass with no partial artifacts.
const (
	// CodeInvalidMapKey marks a map or set whose key resolves to a
	// container type.
	CodeInvalidMapKey = "invalid_map_key"

	// CodeUnknownField marks a struct constant literal that names a field
	// the struct does not declare.
	CodeUnknownField = "unknown_field"

	// CodeUnsupportedType marks a type used where it cannot appear, such as
	// void in a data position.
	CodeUnsupportedType = "unsupported_type"
)

// Error is a generation-time failure with a machine-readable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is reports whether target is a generation error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func invalidMapKey(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidMapKey, Message: fmt.Sprintf(format, args...)}
}

func unknownField(format string, args ...any) *Error {
	return &Error{Code: CodeUnknownField, Message: fmt.Sprintf(format, args...)}
}

func unsupportedType(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedType, Message: fmt.Sprintf(format, args...)}
}
