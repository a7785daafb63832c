// Package confwizard turns a configuration schema into an interactive
// wizard. It wires the source adapters, the normalizer, the validation
// bridge, and a rendering backend into a single entry point; the packages
// under pkg/ remain usable on their own for callers that need finer control.
package confwizard

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-confwizard/pkg/backend"
	"github.com/goliatone/go-confwizard/pkg/backends/prompt"
	"github.com/goliatone/go-confwizard/pkg/backends/tui"
	"github.com/goliatone/go-confwizard/pkg/backends/webform"
	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/normalize"
	"github.com/goliatone/go-confwizard/pkg/schema"
	"github.com/goliatone/go-confwizard/pkg/sources/jsonschema"
	"github.com/goliatone/go-confwizard/pkg/sources/openapi"
	"github.com/goliatone/go-confwizard/pkg/sources/settings"
	"github.com/goliatone/go-confwizard/pkg/validate"
	"github.com/goliatone/go-confwizard/pkg/wizard"
)

// Convenience aliases so most callers only import the root package.
type (
	// Tree is the renderable field tree.
	Tree = model.Tree
	// Field is one renderable field.
	Field = model.Field
	// Config is the validated nested configuration.
	Config = validate.Config
	// FieldError is one validation failure.
	FieldError = validate.FieldError
	// Source locates a schema document.
	Source = schema.Source
)

// Source constructors re-exported for convenience.
var (
	SourceFromFile = schema.SourceFromFile
	SourceFromFS   = schema.SourceFromFS
	SourceFromURL  = schema.SourceFromURL
)

// Option configures a Wizard.
type Option func(*Wizard)

// WithLoader replaces the document loader.
func WithLoader(l schema.Loader) Option {
	return func(w *Wizard) {
		if l != nil {
			w.loader = l
		}
	}
}

// WithAdapter registers an additional source adapter.
func WithAdapter(a schema.Adapter) Option {
	return func(w *Wizard) {
		w.adapters.MustRegister(a)
	}
}

// WithBackend registers an additional rendering backend.
func WithBackend(b backend.Backend) Option {
	return func(w *Wizard) {
		w.backends.MustRegister(b)
	}
}

// WithNormalizer replaces the schema normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(w *Wizard) {
		if n != nil {
			w.normalizer = n
		}
	}
}

// Wizard bundles the full pipeline: load, resolve, normalize, render,
// validate.
type Wizard struct {
	loader     schema.Loader
	adapters   *schema.Registry
	backends   *backend.Registry
	normalizer *normalize.Normalizer
}

// New constructs a Wizard with the built-in source adapters (jsonschema,
// openapi) and backends (prompt, tui, webform) pre-registered.
func New(options ...Option) *Wizard {
	w := &Wizard{
		loader: schema.NewLoader(schema.LoaderOptions{
			HTTPClient: http.DefaultClient,
		}),
		adapters:   schema.NewRegistry(),
		backends:   backend.NewRegistry(),
		normalizer: normalize.New(),
	}

	w.adapters.MustRegister(jsonschema.NewAdapter())
	w.adapters.MustRegister(openapi.NewAdapter())

	w.backends.MustRegister(prompt.New())
	w.backends.MustRegister(tui.New())
	w.backends.MustRegister(webform.New())

	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Backends lists the registered backend names.
func (w *Wizard) Backends() []string {
	return w.backends.List()
}

// Tree loads a schema document, resolves it through the detected adapter,
// and normalizes it into a field tree. adapterName pins a specific adapter;
// leave it empty to auto-detect.
func (w *Wizard) Tree(ctx context.Context, src schema.Source, adapterName string) (model.Tree, error) {
	doc, err := w.loader.Load(ctx, src)
	if err != nil {
		return model.Tree{}, fmt.Errorf("confwizard: load schema: %w", err)
	}

	var adapter schema.Adapter
	if adapterName != "" {
		adapter, err = w.adapters.Get(adapterName)
	} else {
		adapter, err = w.adapters.Detect(src, doc.Raw())
	}
	if err != nil {
		return model.Tree{}, fmt.Errorf("confwizard: pick adapter: %w", err)
	}

	node, err := adapter.Resolve(ctx, doc)
	if err != nil {
		return model.Tree{}, err
	}
	return w.normalizer.Normalize(node)
}

// TreeFromStruct derives a field tree from an application settings struct.
func (w *Wizard) TreeFromStruct(v any) (model.Tree, error) {
	node, err := settings.Describe(v)
	if err != nil {
		return model.Tree{}, err
	}
	return w.normalizer.Normalize(node)
}

// Run executes one full wizard pass: build the tree from the source, render
// it with the named backend until validation succeeds, and return the nested
// configuration.
func (w *Wizard) Run(ctx context.Context, src schema.Source, backendName string) (validate.Config, error) {
	tree, err := w.Tree(ctx, src, "")
	if err != nil {
		return nil, err
	}
	return w.RunTree(ctx, tree, backendName, nil)
}

// RunTree renders an already-built tree, optionally seeding the first pass
// with prefilled answers keyed by dotted path.
func (w *Wizard) RunTree(ctx context.Context, tree model.Tree, backendName string, prefill map[string]any) (validate.Config, error) {
	b, err := w.backends.Get(backendName)
	if err != nil {
		return nil, err
	}
	driver, err := wizard.New(tree, b)
	if err != nil {
		return nil, err
	}
	return driver.RunWithAnswers(ctx, prefill)
}
