// Package output serializes a validated configuration for consumption by
// the target application: YAML and JSON preserve nesting, dotenv flattens
// dotted paths into SCREAMING_SNAKE keys.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-confwizard/pkg/validate"
)

// Format identifies a serialization target.
type Format string

const (
	// FormatYAML emits nested YAML.
	FormatYAML Format = "yaml"
	// FormatJSON emits indented JSON.
	FormatJSON Format = "json"
	// FormatEnv emits dotenv lines with flattened keys.
	FormatEnv Format = "env"
)

// ParseFormat maps a user-supplied name (including common aliases) onto a
// Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "env", "dotenv":
		return FormatEnv, nil
	default:
		return "", fmt.Errorf("output: unknown format %q", name)
	}
}

// Write serializes the configuration to w in the given format.
func Write(w io.Writer, config validate.Config, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any(config)); err != nil {
			return fmt.Errorf("output: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any(config)); err != nil {
			return fmt.Errorf("output: encode json: %w", err)
		}
		return nil
	case FormatEnv:
		return writeEnv(w, config)
	default:
		return fmt.Errorf("output: unknown format %q", format)
	}
}

// Marshal is Write into a byte slice.
func Marshal(config validate.Config, format Format) ([]byte, error) {
	var buf strings.Builder
	if err := Write(&buf, config, format); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// writeEnv flattens the nested configuration into sorted KEY=value lines.
// "server.port" becomes SERVER_PORT; arrays join with commas.
func writeEnv(w io.Writer, config validate.Config) error {
	flat := make(map[string]string)
	flattenEnv("", map[string]any(config), flat)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, flat[key]); err != nil {
			return fmt.Errorf("output: write env: %w", err)
		}
	}
	return nil
}

func flattenEnv(prefix string, value any, out map[string]string) {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			flattenEnv(joinEnvKey(prefix, key), nested, out)
		}
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, envValue(item))
		}
		out[prefix] = quoteIfNeeded(strings.Join(parts, ","))
	default:
		out[prefix] = quoteIfNeeded(envValue(typed))
	}
}

func joinEnvKey(prefix, key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func envValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func quoteIfNeeded(value string) string {
	if strings.ContainsAny(value, " \t\"'#") {
		return strconv.Quote(value)
	}
	return value
}
