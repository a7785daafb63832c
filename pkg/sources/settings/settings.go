// Package settings derives the canonical property descriptor from a Go
// struct, so applications can drive the wizard from their existing settings
// types without writing a schema document. Field names come from json tags,
// wizard tags add constraints, and the struct instance's non-zero values
// become defaults.
package settings

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-confwizard/pkg/schema"
)

// TagName is the struct tag consulted for wizard metadata.
//
//	Port int `json:"port" wizard:"required,min=1,max=65535"`
//	Key  string `json:"key" wizard:"secret,label=API Key"`
const TagName = "wizard"

// Describe converts a struct value (or pointer to one) into a descriptor
// tree rooted at an object node.
func Describe(v any) (schema.Node, error) {
	if v == nil {
		return schema.Node{}, schema.NewSchemaError("#", "settings value is nil")
	}
	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return schema.Node{}, schema.NewSchemaError("#", "settings value is a nil pointer")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return schema.Node{}, schema.NewSchemaError("#", "settings value must be a struct, got %s", value.Kind())
	}
	return describeStruct(value, "", map[reflect.Type]struct{}{})
}

func describeStruct(value reflect.Value, path string, seen map[reflect.Type]struct{}) (schema.Node, error) {
	typ := value.Type()
	if _, ok := seen[typ]; ok {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "circular reference through %s", typ)
	}
	seen[typ] = struct{}{}
	defer delete(seen, typ)

	node := schema.Node{Type: "object"}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldName(field)
		if name == "" {
			continue
		}

		childPath := joinDotted(path, name)
		child, opts, err := describeField(field, value.Field(i), childPath, seen)
		if err != nil {
			return schema.Node{}, err
		}
		node.Properties = append(node.Properties, schema.Property{Name: name, Schema: child})
		if opts.required {
			node.Required = append(node.Required, name)
		}
	}
	if len(node.Properties) == 0 {
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "struct %s has no usable fields", typ)
	}
	return node, nil
}

type tagOptions struct {
	required bool
}

func describeField(field reflect.StructField, value reflect.Value, path string, seen map[reflect.Type]struct{}) (schema.Node, tagOptions, error) {
	optional := false
	for value.Kind() == reflect.Pointer {
		optional = true
		if value.IsNil() {
			value = reflect.Zero(value.Type().Elem())
		} else {
			value = value.Elem()
		}
	}

	var (
		node schema.Node
		err  error
	)
	switch value.Kind() {
	case reflect.Struct:
		node, err = describeStruct(value, path, seen)
	case reflect.String:
		node = schema.Node{Type: "string"}
		if s := value.String(); s != "" {
			node.Default = s
		}
	case reflect.Bool:
		node = schema.Node{Type: "boolean"}
		if value.Bool() {
			node.Default = true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		node = schema.Node{Type: "integer"}
		if n := value.Int(); n != 0 {
			node.Default = float64(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		node = schema.Node{Type: "integer"}
		if n := value.Uint(); n != 0 {
			node.Default = float64(n)
		}
	case reflect.Float32, reflect.Float64:
		node = schema.Node{Type: "number"}
		if f := value.Float(); f != 0 {
			node.Default = f
		}
	case reflect.Slice, reflect.Array:
		node, err = describeSlice(value, path, seen)
	default:
		return schema.Node{}, tagOptions{}, schema.NewSchemaError(pathOrRoot(path), "unsupported field kind %s", value.Kind())
	}
	if err != nil {
		return schema.Node{}, tagOptions{}, err
	}

	opts, err := applyTag(field.Tag.Get(TagName), path, &node)
	if err != nil {
		return schema.Node{}, tagOptions{}, err
	}
	if optional {
		opts.required = false
	}
	return node, opts, nil
}

func describeSlice(value reflect.Value, path string, seen map[reflect.Type]struct{}) (schema.Node, error) {
	elem := reflect.Zero(value.Type().Elem())
	for elem.Kind() == reflect.Pointer {
		elem = reflect.Zero(elem.Type().Elem())
	}

	var item schema.Node
	switch elem.Kind() {
	case reflect.String:
		item = schema.Node{Type: "string"}
	case reflect.Bool:
		item = schema.Node{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		item = schema.Node{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		item = schema.Node{Type: "number"}
	default:
		return schema.Node{}, schema.NewSchemaError(pathOrRoot(path), "unsupported slice element kind %s", elem.Kind())
	}

	node := schema.Node{Type: "array", Items: &item}
	if value.Kind() == reflect.Slice && value.Len() > 0 {
		defaults := make([]any, 0, value.Len())
		for i := 0; i < value.Len(); i++ {
			defaults = append(defaults, value.Index(i).Interface())
		}
		node.Default = defaults
	}
	return node, nil
}

func applyTag(tag, path string, node *schema.Node) (tagOptions, error) {
	var opts tagOptions
	if strings.TrimSpace(tag) == "" {
		return opts, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "required":
			opts.required = true
		case "secret":
			node.Secret = true
		case "label":
			node.Title = value
		case "format":
			node.Format = value
		case "pattern":
			node.Pattern = value
		case "enum":
			if !hasValue || value == "" {
				return opts, schema.NewSchemaError(pathOrRoot(path), "enum tag requires values")
			}
			values := strings.Split(value, "|")
			node.Enum = make([]any, 0, len(values))
			for _, v := range values {
				node.Enum = append(node.Enum, v)
			}
		case "min", "max":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return opts, schema.NewSchemaError(pathOrRoot(path), "%s tag must be numeric: %v", key, err)
			}
			if key == "min" {
				node.Minimum = &f
			} else {
				node.Maximum = &f
			}
		case "minlen", "maxlen":
			n, err := strconv.Atoi(value)
			if err != nil {
				return opts, schema.NewSchemaError(pathOrRoot(path), "%s tag must be an integer: %v", key, err)
			}
			if key == "minlen" {
				node.MinLength = &n
			} else {
				node.MaxLength = &n
			}
		default:
			return opts, schema.NewSchemaError(pathOrRoot(path), "unknown wizard tag %q", key)
		}
	}
	return opts, nil
}

func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return defaultName(field.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return defaultName(field.Name)
	}
	return name
}

func defaultName(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s%s", strings.ToLower(name[:1]), name[1:])
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
