package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// HookSet is the tagged dispatch table mapping each field kind to a
// rendering hook. Backends install their defaults and callers may override
// any single entry while inheriting the rest; there is no inheritance
// hierarchy, only this table.
type HookSet struct {
	String  Hook
	Number  Hook
	Integer Hook
	Boolean Hook
	Enum    Hook
	Array   Hook
	Object  Hook
	Secret  Hook
}

// For returns the hook registered for a kind, or nil.
func (h HookSet) For(kind model.Kind) Hook {
	switch kind {
	case model.KindString:
		return h.String
	case model.KindNumber:
		return h.Number
	case model.KindInteger:
		return h.Integer
	case model.KindBoolean:
		return h.Boolean
	case model.KindEnum:
		return h.Enum
	case model.KindArray:
		return h.Array
	case model.KindObject:
		return h.Object
	case model.KindSecret:
		return h.Secret
	default:
		return nil
	}
}

// Merge overlays non-nil overrides onto the receiver, returning the merged
// table. The receiver is not modified.
func (h HookSet) Merge(overrides HookSet) HookSet {
	out := h
	if overrides.String != nil {
		out.String = overrides.String
	}
	if overrides.Number != nil {
		out.Number = overrides.Number
	}
	if overrides.Integer != nil {
		out.Integer = overrides.Integer
	}
	if overrides.Boolean != nil {
		out.Boolean = overrides.Boolean
	}
	if overrides.Enum != nil {
		out.Enum = overrides.Enum
	}
	if overrides.Array != nil {
		out.Array = overrides.Array
	}
	if overrides.Object != nil {
		out.Object = overrides.Object
	}
	if overrides.Secret != nil {
		out.Secret = overrides.Secret
	}
	return out
}

// Collect walks the tree in declaration order, dispatching each field to its
// hook and assembling the flat answer map keyed by dotted leaf path. When no
// object hook is installed, object fields recurse into their children as a
// grouped step.
func Collect(ctx context.Context, tree model.Tree, prior map[string]any, errs validate.Errors, hooks HookSet) (map[string]any, error) {
	answers := make(map[string]any)
	if err := collectFields(ctx, tree.Fields, prior, errs, hooks, answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func collectFields(ctx context.Context, fields []model.Field, prior map[string]any, errs validate.Errors, hooks HookSet, answers map[string]any) error {
	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}

		if field.Kind == model.KindObject && hooks.Object == nil {
			if err := collectFields(ctx, field.Children, prior, errs, hooks, answers); err != nil {
				return err
			}
			continue
		}

		hook := hooks.For(field.Kind)
		if hook == nil {
			return fmt.Errorf("backend: no hook for kind %q (field %s)", field.Kind, field.Name)
		}

		req := Request{Errors: errs.For(field.Name)}
		if field.Kind == model.KindObject {
			// Object hooks see the slice of the flat maps under their
			// prefix, keyed by full dotted path.
			req.Prior = subAnswers(prior, field.Name)
			req.Errors = subErrors(errs, field.Name)
		} else if prior != nil {
			req.Prior = prior[field.Name]
		}

		value, err := hook(ctx, field, req)
		if err != nil {
			return err
		}

		if field.Kind == model.KindObject {
			nested, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("backend: object hook for %s must return map[string]any", field.Name)
			}
			for key, nestedValue := range nested {
				answers[key] = nestedValue
			}
			continue
		}
		answers[field.Name] = value
	}
	return nil
}

func subAnswers(prior map[string]any, prefix string) map[string]any {
	if len(prior) == 0 {
		return nil
	}
	out := make(map[string]any)
	for key, value := range prior {
		if strings.HasPrefix(key, prefix+".") {
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func subErrors(errs validate.Errors, prefix string) []validate.FieldError {
	var out []validate.FieldError
	for _, fe := range errs {
		if fe.Field == prefix || strings.HasPrefix(fe.Field, prefix+".") {
			out = append(out, fe)
		}
	}
	return out
}
