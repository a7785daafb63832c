// Package openapi normalizes OpenAPI documents into the canonical property
// descriptor. The document is loaded and validated with kin-openapi, one
// component schema is selected as the wizard root, and property declaration
// order is recovered from the raw document since kin-openapi stores
// properties in maps.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-confwizard/internal/ordered"
	"github.com/goliatone/go-confwizard/pkg/schema"
)

// DefaultAdapterName is the registry identifier.
const DefaultAdapterName = "openapi"

const componentSchemaPrefix = "#/components/schemas/"

const defaultMaxRefDepth = 64

// Option configures the adapter.
type Option func(*Adapter)

// WithSchemaName pins the component schema used as the wizard root. Without
// it the adapter requires the document to carry exactly one component
// schema.
func WithSchemaName(name string) Option {
	return func(a *Adapter) {
		a.schemaName = strings.TrimSpace(name)
	}
}

// Adapter implements schema.Adapter for OpenAPI 3.x documents.
type Adapter struct {
	schemaName string
}

// NewAdapter constructs an OpenAPI adapter.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be an OpenAPI document.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return false
	}
	if _, ok := payload["openapi"]; ok {
		return true
	}
	_, ok := payload["swagger"]
	return ok
}

// Resolve loads and validates the document, selects the root component
// schema, and converts it into the canonical descriptor.
func (a *Adapter) Resolve(ctx context.Context, doc schema.Document) (schema.Node, error) {
	if err := ctx.Err(); err != nil {
		return schema.Node{}, err
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return schema.Node{}, schema.WrapSchemaError("#", err, "load openapi document")
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return schema.Node{}, schema.WrapSchemaError("#", err, "validate openapi document")
	}

	name, ref, err := a.selectSchema(spec)
	if err != nil {
		return schema.Node{}, err
	}

	converter := &converter{rawSchemas: rawComponentSchemas(doc.Raw())}
	return converter.convert(ref, converter.rawSchema(name), name, &refState{})
}

func (a *Adapter) selectSchema(spec *openapi3.T) (string, *openapi3.SchemaRef, error) {
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return "", nil, schema.NewSchemaError("#/components/schemas", "document has no component schemas")
	}
	schemas := spec.Components.Schemas

	if a.schemaName != "" {
		ref, ok := schemas[a.schemaName]
		if !ok {
			return "", nil, schema.NewSchemaError(componentSchemaPrefix+a.schemaName, "component schema not found")
		}
		return a.schemaName, ref, nil
	}

	if len(schemas) > 1 {
		names := make([]string, 0, len(schemas))
		for name := range schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", nil, schema.NewSchemaError("#/components/schemas",
			"document has %d component schemas, pick one of %s", len(schemas), strings.Join(names, ", "))
	}
	for name, ref := range schemas {
		return name, ref, nil
	}
	return "", nil, schema.NewSchemaError("#/components/schemas", "document has no component schemas")
}

// rawComponentSchemas extracts the ordered raw payloads under
// components.schemas. A nil result degrades property ordering to sorted
// names instead of failing the document.
func rawComponentSchemas(raw []byte) *ordered.Object {
	decoded, err := ordered.Decode(bytes.TrimSpace(raw))
	if err != nil {
		return nil
	}
	root, ok := decoded.(*ordered.Object)
	if !ok {
		return nil
	}
	components, ok := root.GetObject("components")
	if !ok {
		return nil
	}
	schemas, ok := components.GetObject("schemas")
	if !ok {
		return nil
	}
	return schemas
}

type refState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *refState) push(name string) {
	s.stack = append(s.stack, name)
	if s.inStack == nil {
		s.inStack = make(map[string]struct{})
	}
	s.inStack[name] = struct{}{}
}

func (s *refState) pop(name string) {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, name)
}

func (s *refState) contains(name string) bool {
	_, ok := s.inStack[name]
	return ok
}

type converter struct {
	rawSchemas *ordered.Object
}

func (c *converter) rawSchema(name string) *ordered.Object {
	if c.rawSchemas == nil {
		return nil
	}
	payload, ok := c.rawSchemas.GetObject(name)
	if !ok {
		return nil
	}
	return payload
}

// convert maps one kin-openapi schema onto the canonical descriptor. rawNode
// carries the matching ordered payload when available; refs through
// components switch rawNode to the target's payload so nested property order
// survives indirection.
func (c *converter) convert(ref *openapi3.SchemaRef, rawNode *ordered.Object, path string, state *refState) (schema.Node, error) {
	if ref == nil || ref.Value == nil {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "schema is missing")
	}

	if target := strings.TrimSpace(ref.Ref); target != "" {
		if !strings.HasPrefix(target, componentSchemaPrefix) {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "only component schema references are supported, got %q", target)
		}
		name := strings.TrimPrefix(target, componentSchemaPrefix)
		if state.contains(name) {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "circular reference through %q", target)
		}
		if len(state.stack) >= defaultMaxRefDepth {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "reference depth exceeds %d", defaultMaxRefDepth)
		}
		state.push(name)
		defer state.pop(name)
		rawNode = c.rawSchema(name)
	}

	sch := ref.Value
	if alts, key := unionAlternatives(sch); alts != nil {
		return c.convertUnion(sch, alts, key, rawNode, path, state)
	}

	node := schema.Node{
		Format:      strings.TrimSpace(sch.Format),
		Title:       strings.TrimSpace(sch.Title),
		Description: strings.TrimSpace(sch.Description),
		Default:     sch.Default,
		Pattern:     sch.Pattern,
		Secret:      sch.WriteOnly,
		Nullable:    sch.Nullable,
	}

	typ, nullable, err := schemaType(sch, path)
	if err != nil {
		return schema.Node{}, err
	}
	node.Type = typ
	node.Nullable = node.Nullable || nullable

	if len(sch.Enum) > 0 {
		node.Enum = append([]any(nil), sch.Enum...)
	}
	if len(sch.Required) > 0 {
		node.Required = append([]string(nil), sch.Required...)
	}

	node.Minimum = sch.Min
	node.Maximum = sch.Max
	node.ExclusiveMinimum = sch.ExclusiveMin
	node.ExclusiveMaximum = sch.ExclusiveMax
	if node.Type == "array" {
		if sch.MinItems > 0 {
			length := int(sch.MinItems)
			node.MinLength = &length
		}
		if sch.MaxItems != nil {
			length := int(*sch.MaxItems)
			node.MaxLength = &length
		}
	} else {
		if sch.MinLength > 0 {
			length := int(sch.MinLength)
			node.MinLength = &length
		}
		if sch.MaxLength != nil {
			length := int(*sch.MaxLength)
			node.MaxLength = &length
		}
	}

	if len(sch.Properties) > 0 {
		names := propertyOrder(sch.Properties, rawNode)
		var rawProps *ordered.Object
		if rawNode != nil {
			rawProps, _ = rawNode.GetObject("properties")
		}
		node.Properties = make([]schema.Property, 0, len(names))
		for _, name := range names {
			child := sch.Properties[name]
			var rawChild *ordered.Object
			if rawProps != nil {
				rawChild, _ = rawProps.GetObject(name)
			}
			converted, err := c.convert(child, rawChild, joinDotted(path, name), state)
			if err != nil {
				return schema.Node{}, err
			}
			node.Properties = append(node.Properties, schema.Property{Name: name, Schema: converted})
		}
	}

	if sch.Items != nil {
		var rawItems *ordered.Object
		if rawNode != nil {
			rawItems, _ = rawNode.GetObject("items")
		}
		converted, err := c.convert(sch.Items, rawItems, joinDotted(path, "items"), state)
		if err != nil {
			return schema.Node{}, err
		}
		node.Items = &converted
	}

	return node, nil
}

// unionAlternatives returns the anyOf or oneOf list when the schema declares
// one.
func unionAlternatives(sch *openapi3.Schema) (openapi3.SchemaRefs, string) {
	if len(sch.AnyOf) > 0 {
		return sch.AnyOf, "anyOf"
	}
	if len(sch.OneOf) > 0 {
		return sch.OneOf, "oneOf"
	}
	return nil, ""
}

// convertUnion unwraps nullable unions: one real alternative, optionally
// plus an explicit null schema. The wrapper's title, description, and
// default win over the alternative's own. Unions with two or more real
// alternatives fail the document.
func (c *converter) convertUnion(sch *openapi3.Schema, alts openapi3.SchemaRefs, key string, rawNode *ordered.Object, path string, state *refState) (schema.Node, error) {
	var inner *openapi3.SchemaRef
	innerIdx := -1
	nullable := sch.Nullable
	for idx, alt := range alts {
		if isNullSchema(alt) {
			nullable = true
			continue
		}
		if inner != nil {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "only nullable unions are supported")
		}
		inner, innerIdx = alt, idx
	}
	if inner == nil {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "%s declares no usable schema", key)
	}

	node, err := c.convert(inner, rawUnionEntry(rawNode, key, innerIdx), path, state)
	if err != nil {
		return schema.Node{}, err
	}
	node.Nullable = node.Nullable || nullable
	if title := strings.TrimSpace(sch.Title); title != "" {
		node.Title = title
	}
	if description := strings.TrimSpace(sch.Description); description != "" {
		node.Description = description
	}
	if sch.Default != nil {
		node.Default = sch.Default
	}
	return node, nil
}

func isNullSchema(ref *openapi3.SchemaRef) bool {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return false
	}
	types := ref.Value.Type.Slice()
	return len(types) == 1 && types[0] == "null"
}

// rawUnionEntry digs the ordered payload for one union alternative so
// property order survives inline object alternatives.
func rawUnionEntry(rawNode *ordered.Object, key string, idx int) *ordered.Object {
	if rawNode == nil || idx < 0 {
		return nil
	}
	raw, ok := rawNode.Get(key)
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok || idx >= len(list) {
		return nil
	}
	entry, _ := list[idx].(*ordered.Object)
	return entry
}

// schemaType maps the schema's type onto a single name, accepting the
// two-entry nullable form ["T", "null"].
func schemaType(sch *openapi3.Schema, path string) (string, bool, error) {
	if sch.Type == nil {
		return "", false, nil
	}
	var name string
	nullable := false
	for _, typ := range sch.Type.Slice() {
		if typ == "null" {
			nullable = true
			continue
		}
		if name != "" {
			return "", false, schema.NewSchemaError(pathOrRoot(path), "only nullable type unions are supported")
		}
		name = typ
	}
	return name, nullable, nil
}

func joinDotted(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "#"
	}
	return path
}

// propertyOrder prefers the raw document's declaration order, falling back
// to sorted names when the raw payload is unavailable.
func propertyOrder(props openapi3.Schemas, rawNode *ordered.Object) []string {
	if rawNode != nil {
		if rawProps, ok := rawNode.GetObject("properties"); ok {
			names := make([]string, 0, len(props))
			for _, name := range rawProps.Keys {
				if _, ok := props[name]; ok {
					names = append(names, name)
				}
			}
			if len(names) == len(props) {
				return names
			}
		}
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
