// Package tui renders the wizard as a charmbracelet/huh form. Top-level
// object fields become form groups and every leaf binds to one huh field
// with inline validation, so most mistakes are caught before submission.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// DefaultBackendName is the registry identifier.
const DefaultBackendName = "tui"

// Option configures the backend.
type Option func(*Backend)

// WithTheme sets the huh theme for rendered forms.
func WithTheme(theme *huh.Theme) Option {
	return func(b *Backend) {
		b.theme = theme
	}
}

// WithAccessible switches huh into accessible mode for screen readers.
func WithAccessible(accessible bool) Option {
	return func(b *Backend) {
		b.accessible = accessible
	}
}

// Backend renders one huh form per wizard pass.
type Backend struct {
	theme      *huh.Theme
	accessible bool
}

// New constructs a tui backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the backend registry identifier.
func (b *Backend) Name() string {
	return DefaultBackendName
}

// Render builds the form, runs it, and assembles the flat answer map. Fields
// that failed the previous pass carry their error detail in the description
// so the user sees what to fix.
func (b *Backend) Render(ctx context.Context, tree model.Tree, prior map[string]any, errs validate.Errors) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := &formBuilder{prior: prior, failures: errs.ByField()}
	groups := builder.groups(tree)
	if len(groups) == 0 {
		return nil, errors.New("tui: tree has no renderable fields")
	}

	form := huh.NewForm(groups...)
	if b.theme != nil {
		form = form.WithTheme(b.theme)
	}
	if b.accessible {
		form = form.WithAccessible(true)
	}
	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("tui: form aborted: %w", err)
	}

	answers := make(map[string]any, len(builder.bindings))
	for _, bind := range builder.bindings {
		answers[bind.field.Name] = bind.value()
	}
	return answers, nil
}

// binding ties one leaf field to the variable huh writes into.
type binding struct {
	field   model.Field
	str     *string
	flag    *bool
	list    *[]string
	byLabel map[string]any
	split   bool
}

func (b *binding) value() any {
	switch {
	case b.flag != nil:
		return *b.flag
	case b.list != nil:
		values := make([]any, 0, len(*b.list))
		for _, label := range *b.list {
			values = append(values, b.lookup(label))
		}
		return values
	case b.split:
		if strings.TrimSpace(*b.str) == "" {
			return nil
		}
		parts := strings.Split(*b.str, ",")
		values := make([]any, 0, len(parts))
		for _, part := range parts {
			values = append(values, strings.TrimSpace(part))
		}
		return values
	case b.byLabel != nil:
		return b.lookup(*b.str)
	default:
		return *b.str
	}
}

func (b *binding) lookup(label string) any {
	if original, ok := b.byLabel[label]; ok {
		return original
	}
	return label
}

type formBuilder struct {
	prior    map[string]any
	failures map[string][]validate.FieldError
	bindings []*binding
}

// groups flattens each top-level object into one form group; root-level
// leaves share a leading group titled after the tree.
func (fb *formBuilder) groups(tree model.Tree) []*huh.Group {
	var groups []*huh.Group
	var rootFields []huh.Field

	for _, field := range tree.Fields {
		if field.Kind != model.KindObject {
			rootFields = append(rootFields, fb.huhField(field))
			continue
		}
		var fields []huh.Field
		fb.collectLeaves(field.Children, &fields)
		if len(fields) == 0 {
			continue
		}
		group := huh.NewGroup(fields...).Title(field.Label)
		if field.Description != "" {
			group = group.Description(field.Description)
		}
		groups = append(groups, group)
	}

	if len(rootFields) > 0 {
		group := huh.NewGroup(rootFields...)
		if tree.Title != "" {
			group = group.Title(tree.Title)
		}
		groups = append([]*huh.Group{group}, groups...)
	}
	return groups
}

func (fb *formBuilder) collectLeaves(fields []model.Field, out *[]huh.Field) {
	for _, field := range fields {
		if field.Kind == model.KindObject {
			fb.collectLeaves(field.Children, out)
			continue
		}
		*out = append(*out, fb.huhField(field))
	}
}

func (fb *formBuilder) huhField(field model.Field) huh.Field {
	switch field.Kind {
	case model.KindBoolean:
		return fb.confirm(field)
	case model.KindEnum:
		return fb.selectOne(field)
	case model.KindArray:
		if field.Constraints.Items != nil && field.Constraints.Items.Kind == model.KindEnum {
			return fb.selectMany(field)
		}
		return fb.input(field, true)
	default:
		return fb.input(field, false)
	}
}

func (fb *formBuilder) describe(field model.Field) string {
	desc := field.Description
	for _, fe := range fb.failures[field.Name] {
		if desc != "" {
			desc += "\n"
		}
		desc += "✗ " + fe.Detail
	}
	return desc
}

func (fb *formBuilder) seed(field model.Field) (any, bool) {
	if value, ok := fb.prior[field.Name]; ok && value != nil {
		return value, true
	}
	if field.HasDefault() {
		return field.Default, true
	}
	return nil, false
}

func (fb *formBuilder) input(field model.Field, split bool) huh.Field {
	value := ""
	if field.Kind != model.KindSecret {
		if seed, ok := fb.seed(field); ok {
			if split {
				value = formatList(seed)
			} else {
				value = formatValue(seed)
			}
		}
	}

	bind := &binding{field: field, str: &value, split: split}
	fb.bindings = append(fb.bindings, bind)

	in := huh.NewInput().
		Title(field.Label).
		Description(fb.describe(field)).
		Value(&value)
	if field.Kind == model.KindSecret {
		in = in.EchoMode(huh.EchoModePassword)
	}
	if !split {
		in = in.Validate(func(raw string) error {
			if _, fe := validate.Field(field, raw); fe != nil {
				return errors.New(fe.Detail)
			}
			return nil
		})
	}
	return in
}

func (fb *formBuilder) confirm(field model.Field) huh.Field {
	value := false
	if seed, ok := fb.seed(field); ok {
		if flag, ok := seed.(bool); ok {
			value = flag
		}
	}
	bind := &binding{field: field, flag: &value}
	fb.bindings = append(fb.bindings, bind)

	return huh.NewConfirm().
		Title(field.Label).
		Description(fb.describe(field)).
		Value(&value)
}

func (fb *formBuilder) selectOne(field model.Field) huh.Field {
	labels, byLabel := enumOptions(field.Constraints.Values)
	value := ""
	if seed, ok := fb.seed(field); ok {
		value = formatValue(seed)
	}
	bind := &binding{field: field, str: &value, byLabel: byLabel}
	fb.bindings = append(fb.bindings, bind)

	return huh.NewSelect[string]().
		Title(field.Label).
		Description(fb.describe(field)).
		Options(huh.NewOptions(labels...)...).
		Value(&value)
}

func (fb *formBuilder) selectMany(field model.Field) huh.Field {
	labels, byLabel := enumOptions(field.Constraints.Items.Constraints.Values)

	var value []string
	if seed, ok := fb.seed(field); ok {
		if list, ok := seed.([]any); ok {
			for _, item := range list {
				value = append(value, formatValue(item))
			}
		}
	}
	bind := &binding{field: field, list: &value, byLabel: byLabel}
	fb.bindings = append(fb.bindings, bind)

	return huh.NewMultiSelect[string]().
		Title(field.Label).
		Description(fb.describe(field)).
		Options(huh.NewOptions(labels...)...).
		Value(&value)
}

func enumOptions(values []any) ([]string, map[string]any) {
	labels := make([]string, 0, len(values))
	byLabel := make(map[string]any, len(values))
	for _, value := range values {
		label := formatValue(value)
		labels = append(labels, label)
		byLabel[label] = value
	}
	return labels, byLabel
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatList(value any) string {
	list, ok := value.([]any)
	if !ok {
		return formatValue(value)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, formatValue(item))
	}
	return strings.Join(parts, ", ")
}
