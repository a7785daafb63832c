package jsonschema

import (
	"strings"

	"github.com/goliatone/go-confwizard/internal/ordered"
	"github.com/goliatone/go-confwizard/pkg/schema"
)

const defaultMaxRefDepth = 64

// resolver expands local $ref references ("#/$defs/..." and
// "#/definitions/...") in place of their usage sites. Remote references are
// out of scope for the wizard; anything non-local is rejected. A stack set
// tracks in-flight references so a definition that contains itself, directly
// or transitively, is rejected before any field is constructed.
type resolver struct {
	defs        map[string]*ordered.Object
	maxRefDepth int
}

type resolveState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *resolveState) push(ref string) {
	s.stack = append(s.stack, ref)
	if s.inStack == nil {
		s.inStack = make(map[string]struct{})
	}
	s.inStack[ref] = struct{}{}
}

func (s *resolveState) pop(ref string) {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, ref)
}

func (s *resolveState) contains(ref string) bool {
	_, ok := s.inStack[ref]
	return ok
}

func newResolver(root *ordered.Object) *resolver {
	r := &resolver{
		defs:        make(map[string]*ordered.Object),
		maxRefDepth: defaultMaxRefDepth,
	}
	r.indexDefs(root, "$defs")
	r.indexDefs(root, "definitions")
	return r
}

func (r *resolver) indexDefs(root *ordered.Object, key string) {
	defs, ok := root.GetObject(key)
	if !ok {
		return
	}
	for _, name := range defs.Keys {
		if def, ok := defs.Items[name].(*ordered.Object); ok {
			r.defs["#/"+key+"/"+name] = def
		}
	}
}

// resolve walks the payload and replaces every $ref with a clone of its
// target, carrying over the allowed sibling keys (title, description,
// default).
func (r *resolver) resolve(node any, path string, state *resolveState) (any, error) {
	switch typed := node.(type) {
	case *ordered.Object:
		if ref := strings.TrimSpace(typed.GetString("$ref")); ref != "" {
			return r.resolveRef(typed, ref, path, state)
		}

		out := ordered.NewObject()
		for _, key := range typed.Keys {
			resolved, err := r.resolve(typed.Items[key], joinPointer(path, key), state)
			if err != nil {
				return nil, err
			}
			out.Set(key, resolved)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(typed))
		for _, entry := range typed {
			resolved, err := r.resolve(entry, path, state)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
		}
		return out, nil
	default:
		return node, nil
	}
}

func (r *resolver) resolveRef(site *ordered.Object, ref, path string, state *resolveState) (any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, schema.NewSchemaError(path, "only local references are supported, got %q", ref)
	}
	target, ok := r.defs[ref]
	if !ok {
		return nil, schema.NewSchemaError(path, "reference %q not found", ref)
	}
	if state.contains(ref) {
		return nil, schema.NewSchemaError(path, "circular reference through %q", ref)
	}
	if len(state.stack) >= r.maxRefDepth {
		return nil, schema.NewSchemaError(path, "reference depth exceeds %d", r.maxRefDepth)
	}

	merged := target.Clone()
	for _, key := range site.Keys {
		if key == "$ref" {
			continue
		}
		switch key {
		case "title", "description", "default":
			merged.Set(key, ordered.CloneValue(site.Items[key]))
		default:
			return nil, schema.NewSchemaError(path, "unsupported $ref sibling %q", key)
		}
	}

	state.push(ref)
	resolved, err := r.resolve(merged, path, state)
	state.pop(ref)
	return resolved, err
}

func joinPointer(path, key string) string {
	if path == "" || path == "#" {
		return "#/" + key
	}
	return path + "/" + key
}
