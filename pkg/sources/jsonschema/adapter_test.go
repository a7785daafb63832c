package jsonschema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-confwizard/pkg/schema"
)

func resolveRaw(t *testing.T, raw string) (schema.Node, error) {
	t.Helper()
	doc := schema.MustNewDocument(schema.SourceFromFile("app.schema.json"), []byte(raw))
	return NewAdapter().Resolve(context.Background(), doc)
}

func TestDetect(t *testing.T) {
	adapter := NewAdapter()
	src := schema.SourceFromFile("x.json")

	if !adapter.Detect(src, []byte(`{"$schema":"https://json-schema.org/draft/2020-12/schema"}`)) {
		t.Fatal("should detect $schema documents")
	}
	if !adapter.Detect(src, []byte(`{"type":"object","properties":{}}`)) {
		t.Fatal("should detect bare type/properties documents")
	}
	if adapter.Detect(src, []byte(`{"openapi":"3.0.0","properties":{}}`)) {
		t.Fatal("must not claim OpenAPI documents")
	}
	if adapter.Detect(src, []byte(`not json`)) {
		t.Fatal("must not claim unparseable payloads")
	}
}

func TestResolvePreservesPropertyOrder(t *testing.T) {
	node, err := resolveRaw(t, `{
		"type": "object",
		"properties": {
			"zebra": {"type": "string"},
			"apple": {"type": "integer"},
			"mango": {"type": "boolean"}
		}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, prop := range node.Properties {
		names = append(names, prop.Name)
	}
	if diff := cmp.Diff([]string{"zebra", "apple", "mango"}, names); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveConstraintsAndMetadata(t *testing.T) {
	node, err := resolveRaw(t, `{
		"type": "object",
		"title": "Server",
		"required": ["port"],
		"properties": {
			"port": {
				"type": "integer",
				"minimum": 1,
				"maximum": 65535,
				"default": 8080,
				"description": "listen port"
			},
			"token": {"type": "string", "writeOnly": true, "minLength": 8},
			"level": {"type": "string", "enum": ["debug", "info"]}
		}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if node.Title != "Server" || !node.IsRequired("port") {
		t.Fatalf("root metadata lost: %+v", node)
	}

	port, ok := node.Property("port")
	if !ok {
		t.Fatal("port property missing")
	}
	if port.Type != "integer" || *port.Minimum != 1 || *port.Maximum != 65535 {
		t.Fatalf("port constraints lost: %+v", port)
	}
	if port.Default != float64(8080) || port.Description != "listen port" {
		t.Fatalf("port metadata lost: %+v", port)
	}

	token, _ := node.Property("token")
	if !token.Secret || *token.MinLength != 8 {
		t.Fatalf("token should be secret with minLength 8: %+v", token)
	}

	level, _ := node.Property("level")
	if diff := cmp.Diff([]any{"debug", "info"}, level.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveExpandsLocalRefs(t *testing.T) {
	node, err := resolveRaw(t, `{
		"type": "object",
		"$defs": {
			"port": {"type": "integer", "minimum": 1}
		},
		"properties": {
			"http": {"$ref": "#/$defs/port", "description": "http port"},
			"grpc": {"$ref": "#/$defs/port"}
		}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	http, _ := node.Property("http")
	if http.Type != "integer" || *http.Minimum != 1 {
		t.Fatalf("ref target not expanded: %+v", http)
	}
	if http.Description != "http port" {
		t.Fatalf("ref sibling description lost: %+v", http)
	}
}

func TestResolveRejectsCircularRefs(t *testing.T) {
	_, err := resolveRaw(t, `{
		"type": "object",
		"$defs": {
			"a": {"properties": {"next": {"$ref": "#/$defs/b"}}},
			"b": {"properties": {"next": {"$ref": "#/$defs/a"}}}
		},
		"properties": {
			"root": {"$ref": "#/$defs/a"}
		}
	}`)
	if err == nil {
		t.Fatal("expected a circular reference error")
	}
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error %v is not a *schema.SchemaError", err)
	}
	if !strings.Contains(schemaErr.Message, "circular") {
		t.Fatalf("message %q should mention the cycle", schemaErr.Message)
	}
}

func TestResolveRejectsRemoteRefs(t *testing.T) {
	_, err := resolveRaw(t, `{
		"type": "object",
		"properties": {
			"x": {"$ref": "https://example.com/schema.json"}
		}
	}`)
	if err == nil {
		t.Fatal("expected remote refs to be rejected")
	}
}

func TestResolveUnwrapsNullableUnions(t *testing.T) {
	node, err := resolveRaw(t, `{
		"type": "object",
		"properties": {
			"nickname": {
				"title": "Nickname",
				"default": null,
				"anyOf": [
					{"type": "string", "minLength": 2},
					{"type": "null"}
				]
			},
			"retries": {"type": ["integer", "null"]}
		}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nickname, _ := node.Property("nickname")
	if nickname.Type != "string" || !nickname.Nullable || *nickname.MinLength != 2 {
		t.Fatalf("nickname = %+v, want nullable string with minLength 2", nickname)
	}
	if nickname.Title != "Nickname" {
		t.Fatalf("wrapper title lost: %+v", nickname)
	}

	retries, _ := node.Property("retries")
	if retries.Type != "integer" || !retries.Nullable {
		t.Fatalf("retries = %+v, want nullable integer", retries)
	}
}

func TestResolveRejectsHeterogeneousUnions(t *testing.T) {
	for name, raw := range map[string]string{
		"anyOf": `{
			"type": "object",
			"properties": {
				"x": {"anyOf": [{"type": "string"}, {"type": "integer"}]}
			}
		}`,
		"type array": `{
			"type": "object",
			"properties": {
				"x": {"type": ["string", "integer"]}
			}
		}`,
		"combined with type": `{
			"type": "object",
			"properties": {
				"x": {"type": "string", "oneOf": [{"type": "string"}]}
			}
		}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := resolveRaw(t, raw)
			if err == nil {
				t.Fatal("expected the union to be rejected")
			}
			var schemaErr *schema.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error %v is not a *schema.SchemaError", err)
			}
		})
	}
}

func TestResolveRejectsUnsupportedKeywords(t *testing.T) {
	_, err := resolveRaw(t, `{
		"type": "object",
		"properties": {
			"x": {"type": "string", "allOf": []}
		}
	}`)
	if err == nil {
		t.Fatal("expected unsupported keyword to fail the document")
	}
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error %v is not a *schema.SchemaError", err)
	}
	if schemaErr.Path != "x" {
		t.Fatalf("path = %q, want x", schemaErr.Path)
	}
}

func TestResolveAllowsVendorExtensions(t *testing.T) {
	_, err := resolveRaw(t, `{
		"type": "object",
		"x-generated-by": "tooling",
		"properties": {
			"x": {"type": "string", "x-widget": "textarea"}
		}
	}`)
	if err != nil {
		t.Fatalf("vendor extensions should pass: %v", err)
	}
}

func TestResolveExclusiveBoundConflicts(t *testing.T) {
	_, err := resolveRaw(t, `{
		"type": "object",
		"properties": {
			"x": {"type": "number", "minimum": 1, "exclusiveMinimum": 0}
		}
	}`)
	if err == nil {
		t.Fatal("expected minimum/exclusiveMinimum conflict to fail")
	}
}
