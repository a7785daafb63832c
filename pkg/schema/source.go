package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// SourceKind selects the loader strategy for a schema document.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source tells the loader where a wizard schema lives. The three modalities
// cover how schemas reach a wizard in practice: a path on disk, an entry in
// an embedded fs.FS, or a URL the operator points the tool at. The zero
// Source is invalid; use one of the constructors.
type Source struct {
	kind     SourceKind
	location string
}

// Kind returns the loader modality.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Location returns the path, fs entry name, or URL.
func (s Source) Location() string {
	return s.location
}

// IsZero reports whether the source was never built through a constructor.
func (s Source) IsZero() bool {
	return s.kind == ""
}

// SourceFromFile points at a schema document on disk.
func SourceFromFile(path string) Source {
	return Source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS points at an entry inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return Source{kind: SourceKindFS, location: name}
}

// SourceFromURL points at an HTTP(S) endpoint serving the schema. It panics
// on an unparseable URL so wiring mistakes surface at startup, not mid-run.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return Source{kind: SourceKindURL, location: raw}
}
