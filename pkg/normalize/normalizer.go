// Package normalize converts canonical schema descriptors into the field
// tree backends render. It is deterministic: the same descriptor always
// yields a structurally identical tree, and any unsupported construct fails
// the whole run with a *schema.SchemaError rather than silently omitting
// configuration.
package normalize

import (
	"strings"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/schema"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// maxDepth bounds descriptor recursion. Cyclic definitions are rejected by
// the source adapters before normalization; the guard catches pathological
// nesting regardless.
const maxDepth = 64

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLabeler overrides the default label derivation for fields that carry
// no title of their own.
func WithLabeler(labeler func(string) string) Option {
	return func(n *Normalizer) {
		if labeler != nil {
			n.labeler = labeler
		}
	}
}

// Normalizer walks a descriptor's property list in declaration order and
// produces an immutable field tree.
type Normalizer struct {
	labeler func(string) string
}

// New constructs a Normalizer with the supplied options.
func New(options ...Option) *Normalizer {
	n := &Normalizer{labeler: model.DefaultLabeler}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(n)
	}
	return n
}

// Normalize converts the root descriptor into a field tree. The root must be
// an object; each produced field's default, when present, is validated
// against the field's own constraints immediately, so an invalid default is
// a SchemaError here and never a user-visible wizard failure.
func (n *Normalizer) Normalize(node schema.Node) (model.Tree, error) {
	if node.Type != "" && node.Type != "object" {
		return model.Tree{}, schema.NewSchemaError("#", "root schema must be an object, got %q", node.Type)
	}
	if len(node.Properties) == 0 {
		return model.Tree{}, schema.NewSchemaError("#", "root schema declares no properties")
	}

	fields, err := n.fieldsFromObject("", node, 0)
	if err != nil {
		return model.Tree{}, err
	}

	return model.Tree{
		Title:       node.Title,
		Description: node.Description,
		Fields:      fields,
	}, nil
}

func (n *Normalizer) fieldsFromObject(parent string, node schema.Node, depth int) ([]model.Field, error) {
	if depth > maxDepth {
		return nil, schema.NewSchemaError(pathOrRoot(parent), "schema nesting exceeds %d levels", maxDepth)
	}

	fields := make([]model.Field, 0, len(node.Properties))
	for _, prop := range node.Properties {
		path := joinPath(parent, prop.Name)
		field, err := n.fieldFromNode(path, prop.Schema, node.IsRequired(prop.Name), depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (n *Normalizer) fieldFromNode(path string, node schema.Node, inRequiredList bool, depth int) (model.Field, error) {
	if depth > maxDepth {
		return model.Field{}, schema.NewSchemaError(path, "schema nesting exceeds %d levels", maxDepth)
	}

	kind, err := kindForNode(path, node)
	if err != nil {
		return model.Field{}, err
	}

	field := model.Field{
		Name:        path,
		Kind:        kind,
		Label:       n.labelFor(path, node),
		Description: node.Description,
		Format:      node.Format,
		Default:     node.Default,
		Sensitive:   node.Secret || kind == model.KindSecret,
	}
	// A field with no default must be answered; the schema's required list
	// adds to that, never subtracts. Nullable fields may always be skipped.
	field.Required = inRequiredList || node.Default == nil
	if node.Nullable {
		field.Required = false
	}

	switch kind {
	case model.KindObject:
		if len(node.Properties) == 0 {
			return model.Field{}, schema.NewSchemaError(path, "object declares no properties")
		}
		children, err := n.fieldsFromObject(path, node, depth)
		if err != nil {
			return model.Field{}, err
		}
		field.Children = children
		field.Default = nil
		return field, nil

	case model.KindArray:
		if node.Items == nil {
			return model.Field{}, schema.NewSchemaError(path, "array declares no item schema")
		}
		item, err := n.fieldFromNode(path+"[]", *node.Items, true, depth+1)
		if err != nil {
			return model.Field{}, err
		}
		if item.Kind == model.KindObject {
			return model.Field{}, schema.NewSchemaError(path, "arrays of objects are not supported")
		}
		field.Constraints = constraintsFromNode(node)
		field.Constraints.Items = &item

	case model.KindEnum:
		field.Constraints = constraintsFromNode(node)
		field.Constraints.Values = append([]any(nil), node.Enum...)

	default:
		field.Constraints = constraintsFromNode(node)
	}

	if err := n.checkDefault(field); err != nil {
		return model.Field{}, err
	}
	return field, nil
}

// checkDefault re-uses the validation bridge's single-field validator so a
// field's default, when present, is always a valid value for that field.
func (n *Normalizer) checkDefault(field model.Field) error {
	if !field.HasDefault() {
		return nil
	}
	if _, fieldErr := validate.Field(field, field.Default); fieldErr != nil {
		return schema.NewSchemaError(field.Name, "default value is invalid: %s", fieldErr.Detail)
	}
	return nil
}

func (n *Normalizer) labelFor(path string, node schema.Node) string {
	if strings.TrimSpace(node.Title) != "" {
		return strings.TrimSpace(node.Title)
	}
	return n.labeler(path)
}

// kindForNode maps a descriptor onto the closed kind set with a fixed
// precedence: explicit enum first, then secrets, then structural types, then
// primitives. Anything else fails the whole normalization.
func kindForNode(path string, node schema.Node) (model.Kind, error) {
	if len(node.Enum) > 0 {
		return model.KindEnum, nil
	}
	if node.Secret || (node.Type == "string" && node.Format == "password") {
		return model.KindSecret, nil
	}

	switch node.Type {
	case "object":
		return model.KindObject, nil
	case "array":
		return model.KindArray, nil
	case "string":
		return model.KindString, nil
	case "integer":
		return model.KindInteger, nil
	case "number":
		return model.KindNumber, nil
	case "boolean":
		return model.KindBoolean, nil
	case "":
		return "", schema.NewSchemaError(path, "property declares no type")
	default:
		return "", schema.NewSchemaError(path, "unsupported type %q", node.Type)
	}
}

func constraintsFromNode(node schema.Node) model.Constraints {
	return model.Constraints{
		Min:          node.Minimum,
		Max:          node.Maximum,
		ExclusiveMin: node.ExclusiveMinimum,
		ExclusiveMax: node.ExclusiveMaximum,
		MinLength:    node.MinLength,
		MaxLength:    node.MaxLength,
		Pattern:      node.Pattern,
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "#"
	}
	return path
}
