package schema

import "context"

// Node is the canonical property descriptor produced by source adapters and
// consumed by the normalizer. It is the uniform view over JSON Schema,
// OpenAPI component schemas, and introspected settings structs: by the time
// a Node exists all $refs are resolved, nullable unions are unwrapped onto
// the inner schema, and circular definitions have been rejected.
type Node struct {
	Type             string
	Format           string
	Title            string
	Description      string
	Default          any
	Enum             []any
	Required         []string
	Properties       []Property
	Items            *Node
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinLength        *int
	MaxLength        *int
	Pattern          string
	Secret           bool
	Nullable         bool
}

// Property pairs a property name with its schema, preserving the source
// document's declaration order. Declaration order is significant: it drives
// field order in the tree and therefore wizard step order.
type Property struct {
	Name   string
	Schema Node
}

// Property returns the named child property.
func (n Node) Property(name string) (Node, bool) {
	for _, prop := range n.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return Node{}, false
}

// IsRequired reports whether the named property appears in the node's
// required list.
func (n Node) IsRequired(name string) bool {
	for _, item := range n.Required {
		if item == name {
			return true
		}
	}
	return false
}

// Adapter normalizes one kind of source document into the canonical Node
// descriptor. Implementations live under pkg/sources.
type Adapter interface {
	// Name returns the registry identifier.
	Name() string
	// Detect reports whether the raw payload looks like this adapter's format.
	Detect(src Source, raw []byte) bool
	// Resolve parses the document, resolves references, and returns the root
	// descriptor. Circular references and malformed payloads yield a
	// *SchemaError.
	Resolve(ctx context.Context, doc Document) (Node, error)
}
