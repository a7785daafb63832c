// Package webform renders the wizard as a single-submission HTML form. A
// throwaway HTTP server serves the form, the first valid POST becomes the
// answer map, and the server shuts down. Schema-supplied titles, labels, and
// descriptions are stripped of markup before rendering; submitted values
// reach validation untouched.
package webform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// DefaultBackendName is the registry identifier.
const DefaultBackendName = "webform"

const shutdownGrace = 3 * time.Second

// Option configures the backend.
type Option func(*Backend)

// WithAddr sets the listen address, default "127.0.0.1:0".
func WithAddr(addr string) Option {
	return func(b *Backend) {
		if addr != "" {
			b.addr = addr
		}
	}
}

// WithListener supplies a ready listener, overriding WithAddr.
func WithListener(ln net.Listener) Option {
	return func(b *Backend) {
		b.listener = ln
	}
}

// WithNotify receives the form URL once the server is listening.
func WithNotify(notify func(url string)) Option {
	return func(b *Backend) {
		b.notify = notify
	}
}

// Backend serves one HTML form per render pass.
type Backend struct {
	addr     string
	listener net.Listener
	notify   func(url string)
}

// New constructs a webform backend.
func New(opts ...Option) *Backend {
	b := &Backend{addr: "127.0.0.1:0"}
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

// Render serves the form and blocks until one submission arrives or the
// context is cancelled.
func (b *Backend) Render(ctx context.Context, tree model.Tree, prior map[string]any, errs validate.Errors) (map[string]any, error) {
	ln := b.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", b.addr)
		if err != nil {
			return nil, fmt.Errorf("webform: listen: %w", err)
		}
	}

	submissions := make(chan map[string]any, 1)
	handler := NewHandler(tree, prior, errs, func(answers map[string]any) {
		select {
		case submissions <- answers:
		default:
		}
	})

	server := &http.Server{Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if b.notify != nil {
		b.notify("http://" + ln.Addr().String() + "/")
	}

	var (
		answers map[string]any
		runErr  error
	)
	select {
	case answers = <-submissions:
	case err := <-serveErr:
		runErr = fmt.Errorf("webform: serve: %w", err)
	case <-ctx.Done():
		runErr = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if runErr != nil {
		return nil, runErr
	}
	return answers, nil
}

// NewHandler builds the HTTP handler serving the form. It is exposed so
// tests can drive submissions through httptest without a real listener.
// onSubmit fires once with the parsed answer map.
func NewHandler(tree model.Tree, prior map[string]any, errs validate.Errors, onSubmit func(map[string]any)) http.Handler {
	view := buildView(tree, prior, errs, bluemonday.StrictPolicy())

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := formTemplate.Execute(w, view); err != nil {
				http.Error(w, "render failed", http.StatusInternalServerError)
			}
		case http.MethodPost:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "malformed form", http.StatusBadRequest)
				return
			}
			answers := parseSubmission(tree, r.PostForm)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, submittedPage)
			onSubmit(answers)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	return mux
}

// parseSubmission maps posted values onto the flat answer map. Checkboxes
// post "on" when ticked and nothing at all when clear, so booleans are
// derived from presence. Values are kept verbatim: the bridge decides what is
// acceptable, and html/template escapes anything re-rendered.
func parseSubmission(tree model.Tree, form map[string][]string) map[string]any {
	answers := make(map[string]any)
	for _, field := range tree.Leaves() {
		values, posted := form[field.Name]

		switch field.Kind {
		case model.KindBoolean:
			answers[field.Name] = posted && len(values) > 0 && values[0] != ""
		case model.KindArray:
			if !posted {
				continue
			}
			if field.Constraints.Items != nil && field.Constraints.Items.Kind == model.KindEnum {
				list := make([]any, 0, len(values))
				for _, value := range values {
					list = append(list, value)
				}
				answers[field.Name] = list
				continue
			}
			// Free-form arrays post as one comma separated input.
			raw := strings.TrimSpace(values[0])
			if raw == "" {
				continue
			}
			var list []any
			for _, part := range strings.Split(raw, ",") {
				list = append(list, strings.TrimSpace(part))
			}
			answers[field.Name] = list
		default:
			if !posted || len(values) == 0 {
				continue
			}
			answers[field.Name] = values[0]
		}
	}
	return answers
}
