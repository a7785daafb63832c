// Package jsonschema normalizes JSON Schema documents into the canonical
// property descriptor consumed by the normalizer. Property declaration order
// is preserved, local $refs are expanded with cycle detection, and any
// construct outside the supported subset fails the whole document with a
// *schema.SchemaError naming the offending path.
package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/goliatone/go-confwizard/internal/ordered"
	"github.com/goliatone/go-confwizard/pkg/schema"
)

// DefaultAdapterName is the registry identifier.
const DefaultAdapterName = "jsonschema"

var supportedSchemaKeys = map[string]struct{}{
	"$schema":          {},
	"$id":              {},
	"$defs":            {},
	"definitions":      {},
	"$ref":             {},
	"anyOf":            {},
	"oneOf":            {},
	"type":             {},
	"properties":       {},
	"required":         {},
	"items":            {},
	"enum":             {},
	"title":            {},
	"description":      {},
	"default":          {},
	"minimum":          {},
	"maximum":          {},
	"exclusiveMinimum": {},
	"exclusiveMaximum": {},
	"minLength":        {},
	"maxLength":        {},
	"minItems":         {},
	"maxItems":         {},
	"pattern":          {},
	"format":           {},
	"writeOnly":        {},
}

// Adapter implements schema.Adapter for JSON Schema documents.
type Adapter struct{}

// NewAdapter constructs a JSON Schema adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be JSON Schema.
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
		return false
	}
	if _, ok := payload["swagger"]; ok {
		return false
	}
	for _, key := range []string{"$schema", "$id", "$defs", "properties", "type"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

// Resolve parses the document, expands local references, and converts the
// result into the canonical descriptor.
func (a *Adapter) Resolve(ctx context.Context, doc schema.Document) (schema.Node, error) {
	if err := ctx.Err(); err != nil {
		return schema.Node{}, err
	}

	raw := bytes.TrimSpace(doc.Raw())
	if len(raw) == 0 {
		return schema.Node{}, schema.NewSchemaError("#", "document is empty")
	}

	decoded, err := ordered.Decode(raw)
	if err != nil {
		return schema.Node{}, schema.WrapSchemaError("#", err, "parse schema")
	}
	root, ok := decoded.(*ordered.Object)
	if !ok {
		return schema.Node{}, schema.NewSchemaError("#", "schema must be a JSON object")
	}

	resolved, err := newResolver(root).resolve(root, "#", &resolveState{})
	if err != nil {
		return schema.Node{}, err
	}
	payload, ok := resolved.(*ordered.Object)
	if !ok {
		return schema.Node{}, schema.NewSchemaError("#", "resolved schema is not an object")
	}

	return nodeFromPayload(payload, "")
}

func nodeFromPayload(payload *ordered.Object, path string) (schema.Node, error) {
	if err := checkKeywords(payload, path); err != nil {
		return schema.Node{}, err
	}

	if entries, key, ok := unionEntries(payload); ok {
		return nodeFromUnion(payload, entries, key, path)
	}

	typeName, nullable, err := typeOf(payload, path)
	if err != nil {
		return schema.Node{}, err
	}

	node := schema.Node{
		Type:        typeName,
		Nullable:    nullable,
		Format:      strings.TrimSpace(payload.GetString("format")),
		Title:       strings.TrimSpace(payload.GetString("title")),
		Description: strings.TrimSpace(payload.GetString("description")),
	}

	if value, ok := payload.Get("default"); ok {
		node.Default = ordered.Plain(value)
	}
	if value, ok := payload.Get("writeOnly"); ok {
		if secret, ok := value.(bool); ok {
			node.Secret = secret
		}
	}

	if raw, ok := payload.Get("enum"); ok {
		list, ok := raw.([]any)
		if !ok || len(list) == 0 {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "enum must be a non-empty array")
		}
		node.Enum = make([]any, 0, len(list))
		for _, item := range list {
			node.Enum = append(node.Enum, ordered.Plain(item))
		}
	}

	if raw, ok := payload.Get("required"); ok {
		list, ok := raw.([]any)
		if !ok {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "required must be an array")
		}
		for _, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "required entries must be strings")
			}
			node.Required = append(node.Required, name)
		}
	}

	if err := numericConstraints(payload, path, &node); err != nil {
		return schema.Node{}, err
	}

	if raw, ok := payload.Get("properties"); ok {
		props, ok := raw.(*ordered.Object)
		if !ok {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "properties must be an object")
		}
		node.Properties = make([]schema.Property, 0, props.Len())
		for _, name := range props.Keys {
			child, ok := props.Items[name].(*ordered.Object)
			if !ok {
				return schema.Node{}, schema.NewSchemaError(joinDotted(path, name), "property schema must be an object")
			}
			converted, err := nodeFromPayload(child, joinDotted(path, name))
			if err != nil {
				return schema.Node{}, err
			}
			node.Properties = append(node.Properties, schema.Property{Name: name, Schema: converted})
		}
	}

	if raw, ok := payload.Get("items"); ok {
		items, ok := raw.(*ordered.Object)
		if !ok {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "items must be a single schema object")
		}
		converted, err := nodeFromPayload(items, joinDotted(path, "items"))
		if err != nil {
			return schema.Node{}, err
		}
		node.Items = &converted
	}

	return node, nil
}

// unionEntries returns the anyOf or oneOf list when the payload declares one.
func unionEntries(payload *ordered.Object) ([]any, string, bool) {
	for _, key := range []string{"anyOf", "oneOf"} {
		if raw, ok := payload.Get(key); ok {
			list, _ := raw.([]any)
			return list, key, true
		}
	}
	return nil, "", false
}

// nodeFromUnion unwraps nullable unions, the shape pydantic emits for
// optional fields: one real schema plus {"type": "null"}. The wrapper's
// title, description, and default win over the inner schema's own. Unions
// with two or more real alternatives fail the document.
func nodeFromUnion(payload *ordered.Object, entries []any, key, path string) (schema.Node, error) {
	for _, sibling := range []string{"type", "properties", "items", "enum"} {
		if payload.Has(sibling) {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "%s cannot be combined with %q", key, sibling)
		}
	}
	if len(entries) == 0 {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "%s must be a non-empty array", key)
	}

	var inner *ordered.Object
	nullable := false
	for _, entry := range entries {
		alt, ok := entry.(*ordered.Object)
		if !ok {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "%s entries must be schema objects", key)
		}
		if alt.GetString("type") == "null" {
			nullable = true
			continue
		}
		if inner != nil {
			return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "only nullable unions are supported")
		}
		inner = alt
	}
	if inner == nil {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "%s declares no usable schema", key)
	}

	node, err := nodeFromPayload(inner, path)
	if err != nil {
		return schema.Node{}, err
	}
	node.Nullable = node.Nullable || nullable
	if title := strings.TrimSpace(payload.GetString("title")); title != "" {
		node.Title = title
	}
	if description := strings.TrimSpace(payload.GetString("description")); description != "" {
		node.Description = description
	}
	if value, ok := payload.Get("default"); ok && value != nil {
		node.Default = ordered.Plain(value)
	}
	return node, nil
}

// typeOf reads the type keyword, accepting either a single name or the
// two-entry nullable form ["T", "null"].
func typeOf(payload *ordered.Object, path string) (string, bool, error) {
	raw, ok := payload.Get("type")
	if !ok {
		return "", false, nil
	}
	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed), false, nil
	case []any:
		var name string
		nullable := false
		for _, entry := range typed {
			alt, ok := entry.(string)
			if !ok {
				return "", false, schema.NewSchemaError(pathOrRoot(path), "type entries must be strings")
			}
			if alt == "null" {
				nullable = true
				continue
			}
			if name != "" {
				return "", false, schema.NewSchemaError(pathOrRoot(path), "only nullable type unions are supported")
			}
			name = alt
		}
		if name == "" {
			return "", false, schema.NewSchemaError(pathOrRoot(path), "type union declares no usable type")
		}
		return name, nullable, nil
	default:
		return "", false, schema.NewSchemaError(pathOrRoot(path), "type must be a string or an array of strings")
	}
}

func numericConstraints(payload *ordered.Object, path string, node *schema.Node) error {
	if raw, ok := payload.Get("minimum"); ok {
		value, ok := toFloat(raw)
		if !ok {
			return schema.NewSchemaError(pathOrRoot(path), "minimum must be a number")
		}
		node.Minimum = &value
	}
	if raw, ok := payload.Get("maximum"); ok {
		value, ok := toFloat(raw)
		if !ok {
			return schema.NewSchemaError(pathOrRoot(path), "maximum must be a number")
		}
		node.Maximum = &value
	}
	if raw, ok := payload.Get("exclusiveMinimum"); ok {
		value, ok := toFloat(raw)
		if !ok {
			return schema.NewSchemaError(pathOrRoot(path), "exclusiveMinimum must be a number")
		}
		if node.Minimum != nil {
			return schema.NewSchemaError(pathOrRoot(path), "minimum conflicts with exclusiveMinimum")
		}
		node.Minimum = &value
		node.ExclusiveMinimum = true
	}
	if raw, ok := payload.Get("exclusiveMaximum"); ok {
		value, ok := toFloat(raw)
		if !ok {
			return schema.NewSchemaError(pathOrRoot(path), "exclusiveMaximum must be a number")
		}
		if node.Maximum != nil {
			return schema.NewSchemaError(pathOrRoot(path), "maximum conflicts with exclusiveMaximum")
		}
		node.Maximum = &value
		node.ExclusiveMaximum = true
	}
	for _, key := range []string{"minLength", "minItems"} {
		if raw, ok := payload.Get(key); ok {
			value, ok := toInt(raw)
			if !ok {
				return schema.NewSchemaError(pathOrRoot(path), "%s must be an integer", key)
			}
			node.MinLength = &value
		}
	}
	for _, key := range []string{"maxLength", "maxItems"} {
		if raw, ok := payload.Get(key); ok {
			value, ok := toInt(raw)
			if !ok {
				return schema.NewSchemaError(pathOrRoot(path), "%s must be an integer", key)
			}
			node.MaxLength = &value
		}
	}
	if raw, ok := payload.Get("pattern"); ok {
		pattern, ok := raw.(string)
		if !ok {
			return schema.NewSchemaError(pathOrRoot(path), "pattern must be a string")
		}
		node.Pattern = pattern
	}
	return nil
}

func checkKeywords(payload *ordered.Object, path string) error {
	for _, key := range payload.Keys {
		if isVendorExtension(key) {
			continue
		}
		if _, ok := supportedSchemaKeys[key]; !ok {
			return schema.NewSchemaError(pathOrRoot(path), "unsupported keyword %q", key)
		}
	}
	return nil
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
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
