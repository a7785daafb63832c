package schema

import "fmt"

// SchemaError reports a fatal problem with a schema source: malformed or
// unsupported constructs, circular references, or an invalid default. It
// always names the offending path so operators can locate the defect, and it
// aborts normalization before any rendering happens.
type SchemaError struct {
	// Path is the dotted field path (or JSON pointer for document-level
	// problems) where the defect was found.
	Path string
	// Message describes the defect.
	Message string
	// Err is the underlying cause, when one exists.
	Err error
}

// NewSchemaError builds a SchemaError for the given path.
func NewSchemaError(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// WrapSchemaError attaches a cause to a SchemaError.
func WrapSchemaError(path string, err error, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *SchemaError) Error() string {
	if e == nil {
		return "schema: unknown error"
	}
	if e.Path == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: %s at %s", e.Message, e.Path)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
