package openapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-confwizard/pkg/schema"
)

func document(t *testing.T, schemas string) schema.Document {
	t.Helper()
	raw := fmt.Sprintf(`{
		"openapi": "3.0.3",
		"info": {"title": "test", "version": "1.0.0"},
		"paths": {},
		"components": {"schemas": %s}
	}`, schemas)
	return schema.MustNewDocument(schema.SourceFromFile("api.json"), []byte(raw))
}

func TestDetect(t *testing.T) {
	adapter := NewAdapter()
	src := schema.SourceFromFile("api.json")

	if !adapter.Detect(src, []byte(`{"openapi":"3.0.3"}`)) {
		t.Fatal("should detect openapi documents")
	}
	if !adapter.Detect(src, []byte(`{"swagger":"2.0"}`)) {
		t.Fatal("should detect swagger documents")
	}
	if adapter.Detect(src, []byte(`{"$schema":"x","properties":{}}`)) {
		t.Fatal("must not claim JSON Schema documents")
	}
}

func TestResolveSingleComponentSchema(t *testing.T) {
	doc := document(t, `{
		"AppConfig": {
			"type": "object",
			"title": "App Config",
			"required": ["port"],
			"properties": {
				"port": {"type": "integer", "minimum": 1, "maximum": 65535, "default": 8080},
				"host": {"type": "string", "default": "localhost"},
				"token": {"type": "string", "writeOnly": true},
				"level": {"type": "string", "enum": ["debug", "info"]}
			}
		}
	}`)

	node, err := NewAdapter().Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if node.Title != "App Config" || !node.IsRequired("port") {
		t.Fatalf("root metadata lost: %+v", node)
	}

	var names []string
	for _, prop := range node.Properties {
		names = append(names, prop.Name)
	}
	if diff := cmp.Diff([]string{"port", "host", "token", "level"}, names); diff != "" {
		t.Fatalf("declaration order lost (-want +got):\n%s", diff)
	}

	port, _ := node.Property("port")
	if port.Type != "integer" || *port.Minimum != 1 || *port.Maximum != 65535 {
		t.Fatalf("port constraints lost: %+v", port)
	}

	token, _ := node.Property("token")
	if !token.Secret {
		t.Fatalf("writeOnly property should be secret: %+v", token)
	}

	level, _ := node.Property("level")
	if diff := cmp.Diff([]any{"debug", "info"}, level.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveRequiresSchemaNameWhenAmbiguous(t *testing.T) {
	doc := document(t, `{
		"First": {"type": "object", "properties": {"a": {"type": "string"}}},
		"Second": {"type": "object", "properties": {"b": {"type": "string"}}}
	}`)

	if _, err := NewAdapter().Resolve(context.Background(), doc); err == nil {
		t.Fatal("expected ambiguity error without a pinned schema name")
	}

	node, err := NewAdapter(WithSchemaName("Second")).Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := node.Property("b"); !ok {
		t.Fatalf("wrong schema selected: %+v", node)
	}
}

func TestResolveUnknownSchemaName(t *testing.T) {
	doc := document(t, `{
		"Only": {"type": "object", "properties": {"a": {"type": "string"}}}
	}`)
	_, err := NewAdapter(WithSchemaName("Missing")).Resolve(context.Background(), doc)
	if err == nil {
		t.Fatal("expected an error for an unknown schema name")
	}
}

func TestResolveFollowsComponentRefs(t *testing.T) {
	doc := document(t, `{
		"AppConfig": {
			"type": "object",
			"properties": {
				"server": {"$ref": "#/components/schemas/Server"}
			}
		},
		"Server": {
			"type": "object",
			"properties": {
				"zebra": {"type": "string"},
				"apple": {"type": "integer"}
			}
		}
	}`)

	node, err := NewAdapter(WithSchemaName("AppConfig")).Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	server, ok := node.Property("server")
	if !ok || server.Type != "object" {
		t.Fatalf("ref not followed: %+v", server)
	}

	var names []string
	for _, prop := range server.Properties {
		names = append(names, prop.Name)
	}
	if diff := cmp.Diff([]string{"zebra", "apple"}, names); diff != "" {
		t.Fatalf("ref target order lost (-want +got):\n%s", diff)
	}
}

func TestResolveRejectsCircularRefs(t *testing.T) {
	doc := document(t, `{
		"A": {
			"type": "object",
			"properties": {"next": {"$ref": "#/components/schemas/B"}}
		},
		"B": {
			"type": "object",
			"properties": {"back": {"$ref": "#/components/schemas/A"}}
		}
	}`)

	_, err := NewAdapter(WithSchemaName("A")).Resolve(context.Background(), doc)
	if err == nil {
		t.Fatal("expected a circular reference error")
	}
	var schemaErr *schema.SchemaError
	if errors.As(err, &schemaErr) && !strings.Contains(schemaErr.Message, "circular") {
		t.Fatalf("message %q should mention the cycle", schemaErr.Message)
	}
}

func TestResolveNullableAndUnions(t *testing.T) {
	doc := document(t, `{
		"AppConfig": {
			"type": "object",
			"required": ["nickname"],
			"properties": {
				"nickname": {"type": "string", "nullable": true},
				"timeout": {
					"title": "Timeout",
					"default": 30,
					"anyOf": [{"type": "integer", "minimum": 1}]
				}
			}
		}
	}`)

	node, err := NewAdapter().Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nickname, _ := node.Property("nickname")
	if nickname.Type != "string" || !nickname.Nullable {
		t.Fatalf("nickname = %+v, want nullable string", nickname)
	}

	timeout, _ := node.Property("timeout")
	if timeout.Type != "integer" || *timeout.Minimum != 1 {
		t.Fatalf("union not unwrapped: %+v", timeout)
	}
	if timeout.Title != "Timeout" || timeout.Default != float64(30) {
		t.Fatalf("wrapper metadata lost: %+v", timeout)
	}
}

func TestResolveRejectsHeterogeneousUnions(t *testing.T) {
	doc := document(t, `{
		"AppConfig": {
			"type": "object",
			"properties": {
				"value": {"anyOf": [{"type": "string"}, {"type": "integer"}]}
			}
		}
	}`)

	_, err := NewAdapter().Resolve(context.Background(), doc)
	if err == nil {
		t.Fatal("expected mixed unions to be rejected")
	}
	var schemaErr *schema.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error %v is not a *schema.SchemaError", err)
	}
}

func TestResolveArrayItems(t *testing.T) {
	doc := document(t, `{
		"AppConfig": {
			"type": "object",
			"properties": {
				"hosts": {
					"type": "array",
					"minItems": 1,
					"items": {"type": "string"}
				}
			}
		}
	}`)

	node, err := NewAdapter().Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hosts, _ := node.Property("hosts")
	if hosts.Items == nil || hosts.Items.Type != "string" {
		t.Fatalf("items lost: %+v", hosts)
	}
	if hosts.MinLength == nil || *hosts.MinLength != 1 {
		t.Fatalf("minItems lost: %+v", hosts)
	}
}
