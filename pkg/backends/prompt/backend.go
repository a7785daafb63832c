// Package prompt renders the wizard as sequential terminal questions using
// AlecAivazis/survey. Each field kind maps to one question type; object
// fields print a section header and recurse into their children.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-confwizard/pkg/backend"
	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// DefaultBackendName is the registry identifier.
const DefaultBackendName = "prompt"

// Option configures the backend.
type Option func(*Backend)

// WithDriver swaps the prompt driver, primarily for tests.
func WithDriver(d Driver) Option {
	return func(b *Backend) {
		if d != nil {
			b.driver = d
		}
	}
}

// WithHooks overlays custom rendering hooks onto the defaults.
func WithHooks(overrides backend.HookSet) Option {
	return func(b *Backend) {
		b.overrides = overrides
	}
}

// WithOutput redirects section headers and error lines, default os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(b *Backend) {
		if w != nil {
			b.out = w
		}
	}
}

// Backend asks one question per leaf field through a Driver.
type Backend struct {
	driver    Driver
	out       io.Writer
	overrides backend.HookSet

	header  *color.Color
	failure *color.Color
}

// New constructs a prompt backend with the survey driver unless overridden.
func New(opts ...Option) *Backend {
	b := &Backend{
		driver:  NewSurveyDriver(),
		out:     os.Stderr,
		header:  color.New(color.Bold),
		failure: color.New(color.FgRed),
	}
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

// Render walks the tree in declaration order and asks one question per leaf.
// Fields that failed the previous validation pass show their error before the
// question; prior answers become prompt defaults so accepted input survives a
// re-render.
func (b *Backend) Render(ctx context.Context, tree model.Tree, prior map[string]any, errs validate.Errors) (map[string]any, error) {
	if tree.Title != "" {
		b.header.Fprintln(b.out, tree.Title)
	}
	hooks := b.hooks().Merge(b.overrides)
	return backend.Collect(ctx, tree, prior, errs, hooks)
}

func (b *Backend) hooks() backend.HookSet {
	return backend.HookSet{
		String:  b.askInput,
		Number:  b.askInput,
		Integer: b.askInput,
		Boolean: b.askConfirm,
		Enum:    b.askSelect,
		Array:   b.askArray,
		Object:  b.askObject,
		Secret:  b.askPassword,
	}
}

func (b *Backend) prompt(field model.Field, req backend.Request) Prompt {
	b.showErrors(req)
	return Prompt{
		Message: field.Label,
		Help:    field.Description,
	}
}

func (b *Backend) showErrors(req backend.Request) {
	for _, fe := range req.Errors {
		b.failure.Fprintf(b.out, "✗ %s\n", fe.Detail)
	}
}

func (b *Backend) askInput(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	p := b.prompt(field, req)
	if req.HasPrior() {
		p.Default = formatValue(req.Prior)
	} else if field.HasDefault() {
		p.Default = formatValue(field.Default)
	}
	return b.driver.Input(ctx, p)
}

func (b *Backend) askPassword(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	// Never echo prior secrets or defaults back into the terminal.
	return b.driver.Password(ctx, b.prompt(field, req))
}

func (b *Backend) askConfirm(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	def := false
	if req.HasPrior() {
		def = asBool(req.Prior)
	} else if field.HasDefault() {
		def = asBool(field.Default)
	}
	return b.driver.Confirm(ctx, b.prompt(field, req), def)
}

func (b *Backend) askSelect(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	options, byLabel := enumOptions(field.Constraints.Values)
	def := ""
	if req.HasPrior() {
		def = formatValue(req.Prior)
	} else if field.HasDefault() {
		def = formatValue(field.Default)
	}

	selected, err := b.driver.Select(ctx, b.prompt(field, req), options, def)
	if err != nil {
		return nil, err
	}
	if original, ok := byLabel[selected]; ok {
		return original, nil
	}
	return selected, nil
}

func (b *Backend) askArray(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	if field.Constraints.Items != nil && field.Constraints.Items.Kind == model.KindEnum {
		return b.askMultiSelect(ctx, field, req)
	}

	p := b.prompt(field, req)
	if p.Help != "" {
		p.Help += " "
	}
	p.Help += "(comma separated)"
	if req.HasPrior() {
		p.Default = formatList(req.Prior)
	} else if field.HasDefault() {
		p.Default = formatList(field.Default)
	}

	answer, err := b.driver.Input(ctx, p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, nil
	}
	parts := strings.Split(answer, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		values = append(values, strings.TrimSpace(part))
	}
	return values, nil
}

func (b *Backend) askMultiSelect(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	options, byLabel := enumOptions(field.Constraints.Items.Constraints.Values)

	var defs []string
	seed := field.Default
	if req.HasPrior() {
		seed = req.Prior
	}
	if list, ok := seed.([]any); ok {
		for _, item := range list {
			defs = append(defs, formatValue(item))
		}
	}

	selected, err := b.driver.MultiSelect(ctx, b.prompt(field, req), options, defs)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(selected))
	for _, label := range selected {
		if original, ok := byLabel[label]; ok {
			values = append(values, original)
		} else {
			values = append(values, label)
		}
	}
	return values, nil
}

// askObject prints a section header, then collects the object's children as
// a grouped step and returns their answers keyed by dotted path.
func (b *Backend) askObject(ctx context.Context, field model.Field, req backend.Request) (any, error) {
	fmt.Fprintln(b.out)
	b.header.Fprintln(b.out, field.Label)
	if field.Description != "" {
		fmt.Fprintln(b.out, field.Description)
	}

	return backend.Collect(ctx, model.Tree{Fields: field.Children}, priorMap(req.Prior), validate.Errors(req.Errors), b.hooks().Merge(b.overrides))
}

// priorMap recovers the prefix-filtered answer map that Collect hands object
// hooks via Request.Prior.
func priorMap(prior any) map[string]any {
	m, _ := prior.(map[string]any)
	return m
}

func enumOptions(values []any) ([]string, map[string]any) {
	options := make([]string, 0, len(values))
	byLabel := make(map[string]any, len(values))
	for _, value := range values {
		label := formatValue(value)
		options = append(options, label)
		byLabel[label] = value
	}
	return options, byLabel
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

func asBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}
