package model

// Kind is the closed set of value categories a field can take. It drives
// which constraints apply, how the validation bridge coerces raw values, and
// which backend rendering hook handles the field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindSecret  Kind = "secret"
)

// Valid reports whether the kind belongs to the closed tag set.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindEnum, KindObject, KindArray, KindSecret:
		return true
	default:
		return false
	}
}

// Leaf reports whether fields of this kind hold a value directly. Object
// fields decompose into children and never hold a scalar.
func (k Kind) Leaf() bool {
	return k != KindObject
}

// Constraints carries the kind-specific validation rules for a field.
// Numeric bounds apply to number/integer kinds, length and pattern rules to
// string-like kinds, Values to enum, Items to array.
type Constraints struct {
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	ExclusiveMin bool     `json:"exclusiveMin,omitempty"`
	ExclusiveMax bool     `json:"exclusiveMax,omitempty"`
	MinLength    *int     `json:"minLength,omitempty"`
	MaxLength    *int     `json:"maxLength,omitempty"`
	Pattern      string   `json:"pattern,omitempty"`
	Values       []any    `json:"values,omitempty"`
	Items        *Field   `json:"items,omitempty"`
}

// Empty reports whether no constraint is set.
func (c Constraints) Empty() bool {
	return c.Min == nil && c.Max == nil && c.MinLength == nil && c.MaxLength == nil &&
		c.Pattern == "" && len(c.Values) == 0 && c.Items == nil
}

// Field models one configurable value. Name is the dotted path identifier
// ("server.port" for nested fields) and is unique within the tree. Children
// is populated only for object kinds; Sensitive is always true for secret
// kinds and tells renderers to mask input and keep the value out of error
// messages.
type Field struct {
	Name        string      `json:"name"`
	Kind        Kind        `json:"kind"`
	Label       string      `json:"label,omitempty"`
	Description string      `json:"description,omitempty"`
	Format      string      `json:"format,omitempty"`
	Required    bool        `json:"required"`
	Default     any         `json:"default,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
	Children    []Field     `json:"children,omitempty"`
	Sensitive   bool        `json:"sensitive,omitempty"`
}

// HasDefault reports whether the field carries a construction-time default.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// Base returns the final segment of the dotted path.
func (f Field) Base() string {
	if idx := lastDot(f.Name); idx >= 0 {
		return f.Name[idx+1:]
	}
	return f.Name
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
