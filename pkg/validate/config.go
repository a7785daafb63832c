package validate

import "strings"

// Config is the validated, tree-shaped output of a wizard run. Object fields
// become nested maps, so the shape mirrors the field tree exactly. It is
// handed to external serializers (YAML, JSON, .env) which own the byte
// format.
type Config map[string]any

// Get resolves a dotted path into the config.
func (c Config) Get(path string) (any, bool) {
	if c == nil || path == "" {
		return nil, false
	}
	current := any(map[string]any(c))
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func (c Config) set(path string, value any) {
	segments := strings.Split(path, ".")
	node := map[string]any(c)
	for i, segment := range segments {
		if i == len(segments)-1 {
			node[segment] = value
			return
		}
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
}
