// Package ordered decodes JSON objects while preserving the declaration
// order of their keys. encoding/json unmarshals objects into maps, which
// lose ordering; wizard fields must appear in the order the schema author
// wrote them, so source adapters decode through this package instead.
package ordered

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Object is a JSON object with remembered key order.
type Object struct {
	Keys  []string
	Items map[string]any
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{Items: make(map[string]any)}
}

// Set stores a value under key, appending to the key order on first use.
func (o *Object) Set(key string, value any) {
	if _, exists := o.Items[key]; !exists {
		o.Keys = append(o.Keys, key)
	}
	o.Items[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	value, ok := o.Items[key]
	return value, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Items[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.Keys)
}

// GetString returns the string stored under key, or "" when absent or not
// a string.
func (o *Object) GetString(key string) string {
	value, ok := o.Items[key]
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// GetObject returns the nested ordered object stored under key.
func (o *Object) GetObject(key string) (*Object, bool) {
	value, ok := o.Items[key]
	if !ok {
		return nil, false
	}
	obj, ok := value.(*Object)
	return obj, ok
}

// Clone deep-copies the object.
func (o *Object) Clone() *Object {
	out := NewObject()
	for _, key := range o.Keys {
		out.Set(key, CloneValue(o.Items[key]))
	}
	return out
}

// CloneValue deep-copies any decoded JSON value.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case *Object:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return typed
	}
}

// Plain strips the ordered wrapper, returning ordinary maps and slices.
func Plain(value any) any {
	switch typed := value.(type) {
	case *Object:
		out := make(map[string]any, typed.Len())
		for _, key := range typed.Keys {
			out[key] = Plain(typed.Items[key])
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Plain(item)
		}
		return out
	default:
		return typed
	}
}

// Decode parses raw JSON, representing every object as *Object. Numbers
// decode as float64, matching encoding/json defaults.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("ordered: trailing content after document")
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, token)
}

func decodeFromToken(dec *json.Decoder, token json.Token) (any, error) {
	switch t := token.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyToken, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return nil, fmt.Errorf("ordered: object key is %T, not string", keyToken)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			var list []any
			for dec.More() {
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("ordered: unexpected delimiter %q", t)
		}
	default:
		return t, nil
	}
}
