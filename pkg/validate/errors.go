package validate

import (
	"fmt"
	"strings"
)

// Reason classifies a recoverable per-field failure. FieldErrors drive a
// re-render cycle and never abort the wizard.
type Reason string

const (
	ReasonTypeMismatch       Reason = "type_mismatch"
	ReasonConstraintViolated Reason = "constraint_violated"
	ReasonMissingRequired    Reason = "missing_required"
)

// FieldError reports one failing field. Detail is human-facing and never
// contains the raw value of a sensitive field.
type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (e FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validate: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validate: field %q: %s (%s)", e.Field, e.Reason, e.Detail)
}

// Errors accumulates per-field failures across a whole tree validation.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validate: no errors"
	}
	parts := make([]string, 0, len(e))
	for _, fieldErr := range e {
		parts = append(parts, fieldErr.Error())
	}
	return strings.Join(parts, "; ")
}

// ByField groups the errors by dotted field path for renderers that
// highlight inputs individually.
func (e Errors) ByField() map[string][]FieldError {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string][]FieldError, len(e))
	for _, fieldErr := range e {
		out[fieldErr.Field] = append(out[fieldErr.Field], fieldErr)
	}
	return out
}

// For returns the errors recorded against one field path.
func (e Errors) For(path string) []FieldError {
	var out []FieldError
	for _, fieldErr := range e {
		if fieldErr.Field == path {
			out = append(out, fieldErr)
		}
	}
	return out
}
