// Package validate is the bridge between raw backend answers and a typed
// configuration. It coerces raw values to their field's kind, applies the
// field's constraints, and either produces a Config mirroring the tree shape
// or accumulates one FieldError per failing leaf so a wizard can show the
// user every problem at once.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-confwizard/pkg/model"
)

// Field validates a single raw value against one field. It returns the
// coerced native value on success. A nil raw value (or blank string) resolves
// to the field default when one exists, fails with missing_required for
// required fields, and is otherwise accepted as absent (nil).
func Field(field model.Field, raw any) (any, *FieldError) {
	if field.Kind == model.KindObject {
		return nil, &FieldError{
			Field:  field.Name,
			Reason: ReasonTypeMismatch,
			Detail: "object fields decompose into children and hold no value",
		}
	}

	if isMissing(raw) {
		if field.HasDefault() {
			return Field(withoutDefault(field), field.Default)
		}
		if field.Required {
			return nil, &FieldError{Field: field.Name, Reason: ReasonMissingRequired, Detail: "value is required"}
		}
		return nil, nil
	}

	value, err := coerce(field, raw)
	if err != nil {
		return nil, err
	}
	if err := checkConstraints(field, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Tree validates a full answer map against the tree. Answers are keyed by
// dotted leaf path. Validation recurses into object children and accumulates
// every failing leaf instead of stopping at the first; the Config is only
// returned when every leaf succeeds.
func Tree(tree model.Tree, answers map[string]any) (Config, Errors) {
	config := make(Config)
	var errs Errors

	validateFields(tree.Fields, answers, config, &errs)

	if len(errs) > 0 {
		return nil, errs
	}
	return config, nil
}

func validateFields(fields []model.Field, answers map[string]any, config Config, errs *Errors) {
	for _, field := range fields {
		if field.Kind == model.KindObject {
			validateFields(field.Children, answers, config, errs)
			continue
		}
		value, fieldErr := Field(field, answers[field.Name])
		if fieldErr != nil {
			*errs = append(*errs, *fieldErr)
			continue
		}
		if value == nil {
			continue
		}
		config.set(field.Name, value)
	}
}

// withoutDefault strips the default so re-validating it cannot recurse.
func withoutDefault(field model.Field) model.Field {
	field.Default = nil
	return field
}

func isMissing(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func coerce(field model.Field, raw any) (any, *FieldError) {
	switch field.Kind {
	case model.KindString, model.KindSecret:
		return coerceString(field, raw)
	case model.KindEnum:
		return coerceEnum(field, raw)
	case model.KindInteger:
		return coerceInteger(field, raw)
	case model.KindNumber:
		return coerceNumber(field, raw)
	case model.KindBoolean:
		return coerceBoolean(field, raw)
	case model.KindArray:
		return coerceArray(field, raw)
	default:
		return nil, &FieldError{
			Field:  field.Name,
			Reason: ReasonTypeMismatch,
			Detail: fmt.Sprintf("unsupported kind %q", field.Kind),
		}
	}
}

func coerceString(field model.Field, raw any) (any, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return nil, mismatch(field, raw, "expected a string")
	}
	return s, nil
}

func coerceEnum(field model.Field, raw any) (any, *FieldError) {
	for _, allowed := range field.Constraints.Values {
		if allowed == raw || fmt.Sprint(allowed) == fmt.Sprint(raw) {
			return allowed, nil
		}
	}
	detail := "value is not one of the allowed options"
	if !field.Sensitive {
		detail = fmt.Sprintf("%v is not one of the allowed options", raw)
	}
	return nil, &FieldError{Field: field.Name, Reason: ReasonConstraintViolated, Detail: detail}
}

func coerceInteger(field model.Field, raw any) (any, *FieldError) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, mismatch(field, raw, "expected an integer")
		}
		return int64(v), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, mismatch(field, raw, "expected an integer")
		}
		return parsed, nil
	default:
		return nil, mismatch(field, raw, "expected an integer")
	}
}

func coerceNumber(field model.Field, raw any) (any, *FieldError) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, mismatch(field, raw, "expected a number")
		}
		return parsed, nil
	default:
		return nil, mismatch(field, raw, "expected a number")
	}
}

func coerceBoolean(field model.Field, raw any) (any, *FieldError) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, mismatch(field, raw, "expected true or false")
		}
		return parsed, nil
	default:
		return nil, mismatch(field, raw, "expected true or false")
	}
}

func coerceArray(field model.Field, raw any) (any, *FieldError) {
	items, ok := toSlice(raw)
	if !ok {
		return nil, mismatch(field, raw, "expected a list")
	}
	if field.Constraints.Items == nil {
		return items, nil
	}

	itemField := *field.Constraints.Items
	out := make([]any, 0, len(items))
	for idx, item := range items {
		itemField.Name = fmt.Sprintf("%s.%d", field.Name, idx)
		itemField.Required = true
		value, fieldErr := Field(itemField, item)
		if fieldErr != nil {
			return nil, fieldErr
		}
		out = append(out, value)
	}
	return out, nil
}

func toSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func checkConstraints(field model.Field, value any) *FieldError {
	c := field.Constraints

	switch typed := value.(type) {
	case int64:
		return checkBounds(field, float64(typed))
	case float64:
		return checkBounds(field, typed)
	case string:
		if err := checkLength(field, len(typed)); err != nil {
			return err
		}
		if err := checkPattern(field, typed); err != nil {
			return err
		}
		if err := checkFormat(field, typed); err != nil {
			return err
		}
	case []any:
		if c.MinLength != nil && len(typed) < *c.MinLength {
			return violated(field, fmt.Sprintf("needs at least %d items", *c.MinLength))
		}
		if c.MaxLength != nil && len(typed) > *c.MaxLength {
			return violated(field, fmt.Sprintf("allows at most %d items", *c.MaxLength))
		}
	}
	return nil
}

func checkBounds(field model.Field, value float64) *FieldError {
	c := field.Constraints
	if c.Min != nil {
		if c.ExclusiveMin && value <= *c.Min {
			return violated(field, fmt.Sprintf("must be greater than %s", formatBound(*c.Min)))
		}
		if !c.ExclusiveMin && value < *c.Min {
			return violated(field, fmt.Sprintf("must be at least %s", formatBound(*c.Min)))
		}
	}
	if c.Max != nil {
		if c.ExclusiveMax && value >= *c.Max {
			return violated(field, fmt.Sprintf("must be less than %s", formatBound(*c.Max)))
		}
		if !c.ExclusiveMax && value > *c.Max {
			return violated(field, fmt.Sprintf("must be at most %s", formatBound(*c.Max)))
		}
	}
	return nil
}

func checkLength(field model.Field, length int) *FieldError {
	c := field.Constraints
	if c.MinLength != nil && length < *c.MinLength {
		return violated(field, fmt.Sprintf("must be at least %d characters", *c.MinLength))
	}
	if c.MaxLength != nil && length > *c.MaxLength {
		return violated(field, fmt.Sprintf("must be at most %d characters", *c.MaxLength))
	}
	return nil
}

func checkPattern(field model.Field, value string) *FieldError {
	pattern := field.Constraints.Pattern
	if pattern == "" {
		return nil
	}
	matched, err := matchPattern(pattern, value)
	if err != nil {
		return violated(field, fmt.Sprintf("pattern %q is invalid", pattern))
	}
	if !matched {
		return violated(field, fmt.Sprintf("must match pattern %q", pattern))
	}
	return nil
}

func mismatch(field model.Field, raw any, expectation string) *FieldError {
	detail := expectation
	if !field.Sensitive {
		detail = fmt.Sprintf("%s, got %v", expectation, raw)
	}
	return &FieldError{Field: field.Name, Reason: ReasonTypeMismatch, Detail: detail}
}

func violated(field model.Field, detail string) *FieldError {
	return &FieldError{Field: field.Name, Reason: ReasonConstraintViolated, Detail: detail}
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
