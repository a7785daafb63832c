package schema

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Document couples a fetched schema payload with the Source it came from so
// adapters and error paths can name the document's origin.
type Document struct {
	src Source
	raw []byte
}

// NewDocument wraps a raw payload, rejecting zero sources and empty bodies.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src.IsZero() {
		return Document{}, errors.New("schema: document needs a source")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: document " + src.Location() + " is empty")
	}
	return Document{src: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics on invalid input. Test wiring only.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns where the document was loaded from.
func (d Document) Source() Source {
	return d.src
}

// Raw returns a copy of the payload so adapters cannot mutate the original.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location shortcuts d.Source().Location().
func (d Document) Location() string {
	return d.src.Location()
}

// Loader fetches schema documents from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures the built-in loader.
type LoaderOptions struct {
	// FileSystem backs fs.FS sources.
	FileSystem fs.FS
	// HTTPClient enables URL sources when set.
	HTTPClient *http.Client
	// RequestTimeout bounds HTTP fetches. Zero means no loader-level timeout.
	RequestTimeout time.Duration
}

type loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader delegating to file, fs.FS, or HTTP
// strategies depending on the source kind.
func NewLoader(options LoaderOptions) Loader {
	return &loader{
		fs:      options.FileSystem,
		http:    options.HTTPClient,
		timeout: options.RequestTimeout,
	}
}

// Load fetches a document from the provided source and wraps it.
func (l *loader) Load(ctx context.Context, src Source) (Document, error) {
	if src.IsZero() {
		return Document{}, errors.New("schema loader: source is required")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = l.loadFile(src.Location())
	case SourceKindFS:
		data, err = l.loadFromFS(src.Location())
	case SourceKindURL:
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		err = errors.New("schema loader: unsupported source kind")
	}
	if err != nil {
		return Document{}, err
	}

	return NewDocument(src, data)
}

func (l *loader) loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("schema loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func (l *loader) loadFromFS(name string) ([]byte, error) {
	if l.fs == nil {
		return nil, errors.New("schema loader: fs.FS is not configured")
	}
	return fs.ReadFile(l.fs, name)
}

func (l *loader) loadHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("schema loader: http support disabled")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if l.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("schema loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
