package output

import (
	"strings"
	"testing"

	"github.com/goliatone/go-confwizard/pkg/validate"
)

func sampleConfig() validate.Config {
	return validate.Config{
		"server": map[string]any{
			"host": "localhost",
			"port": int64(8080),
		},
		"debug": true,
		"tags":  []any{"a", "b"},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"yaml":   FormatYAML,
		"yml":    FormatYAML,
		"JSON":   FormatJSON,
		"env":    FormatEnv,
		"dotenv": FormatEnv,
	}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", input, got, err, want)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Fatal("unknown formats should fail")
	}
}

func TestMarshalYAML(t *testing.T) {
	data, err := Marshal(sampleConfig(), FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(data)
	for _, want := range []string{"server:", "port: 8080", "host: localhost", "debug: true"} {
		if !strings.Contains(text, want) {
			t.Errorf("yaml missing %q:\n%s", want, text)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := Marshal(sampleConfig(), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"server"`, `"port": 8080`, `"debug": true`} {
		if !strings.Contains(text, want) {
			t.Errorf("json missing %q:\n%s", want, text)
		}
	}
}

func TestMarshalEnv(t *testing.T) {
	data, err := Marshal(sampleConfig(), FormatEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"DEBUG=true",
		"SERVER_HOST=localhost",
		"SERVER_PORT=8080",
		"TAGS=a,b",
	}, "\n") + "\n"
	if string(data) != want {
		t.Fatalf("env output mismatch:\n got: %q\nwant: %q", data, want)
	}
}

func TestEnvQuotesAwkwardValues(t *testing.T) {
	config := validate.Config{"motd": "hello world"}
	data, err := Marshal(config, FormatEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "MOTD=\"hello world\"\n" {
		t.Fatalf("env output = %q", data)
	}
}
