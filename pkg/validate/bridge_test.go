package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-confwizard/pkg/model"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func portField() model.Field {
	return model.Field{
		Name:     "server.port",
		Kind:     model.KindInteger,
		Required: true,
		Constraints: model.Constraints{
			Min: floatPtr(1),
			Max: floatPtr(65535),
		},
	}
}

func TestFieldCoercesIntegerString(t *testing.T) {
	value, fieldErr := Field(portField(), "8000")
	if fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
	if got, want := value, int64(8000); got != want {
		t.Fatalf("value = %v (%T), want %v", got, got, want)
	}
}

func TestFieldRejectsOutOfRangeInteger(t *testing.T) {
	_, fieldErr := Field(portField(), "0")
	if fieldErr == nil {
		t.Fatal("expected a constraint error")
	}
	if fieldErr.Reason != ReasonConstraintViolated {
		t.Fatalf("reason = %s, want %s", fieldErr.Reason, ReasonConstraintViolated)
	}
	if fieldErr.Field != "server.port" {
		t.Fatalf("field = %s, want server.port", fieldErr.Field)
	}
}

func TestFieldRejectsFractionalInteger(t *testing.T) {
	_, fieldErr := Field(portField(), 80.5)
	if fieldErr == nil || fieldErr.Reason != ReasonTypeMismatch {
		t.Fatalf("expected type_mismatch, got %v", fieldErr)
	}
}

func TestFieldExclusiveBounds(t *testing.T) {
	field := model.Field{
		Name: "ratio",
		Kind: model.KindNumber,
		Constraints: model.Constraints{
			Min:          floatPtr(0),
			ExclusiveMin: true,
		},
	}
	if _, fieldErr := Field(field, "0"); fieldErr == nil {
		t.Fatal("expected exclusive minimum to reject 0")
	}
	value, fieldErr := Field(field, "0.5")
	if fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
	if value != 0.5 {
		t.Fatalf("value = %v, want 0.5", value)
	}
}

func TestFieldBooleanFromString(t *testing.T) {
	field := model.Field{Name: "debug", Kind: model.KindBoolean}
	value, fieldErr := Field(field, "true")
	if fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
	if value != true {
		t.Fatalf("value = %v, want true", value)
	}
	if _, fieldErr := Field(field, "yep"); fieldErr == nil {
		t.Fatal("expected a mismatch for unparseable boolean")
	}
}

func TestFieldEnumMatchesByStringForm(t *testing.T) {
	field := model.Field{
		Name:        "level",
		Kind:        model.KindEnum,
		Constraints: model.Constraints{Values: []any{float64(1), float64(2), float64(3)}},
	}
	value, fieldErr := Field(field, "2")
	if fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
	if got, want := value, float64(2); got != want {
		t.Fatalf("value = %v (%T), want the canonical enum member %v", got, got, want)
	}

	_, fieldErr = Field(field, "7")
	if fieldErr == nil || fieldErr.Reason != ReasonConstraintViolated {
		t.Fatalf("expected constraint_violated, got %v", fieldErr)
	}
}

func TestFieldMissingFallsBackToDefault(t *testing.T) {
	field := model.Field{
		Name:    "log.level",
		Kind:    model.KindString,
		Default: "info",
	}
	for _, raw := range []any{nil, "", "   "} {
		value, fieldErr := Field(field, raw)
		if fieldErr != nil {
			t.Fatalf("raw %#v: unexpected error: %v", raw, fieldErr)
		}
		if value != "info" {
			t.Fatalf("raw %#v: value = %v, want info", raw, value)
		}
	}
}

func TestFieldMissingRequired(t *testing.T) {
	field := model.Field{Name: "host", Kind: model.KindString, Required: true}
	_, fieldErr := Field(field, nil)
	if fieldErr == nil || fieldErr.Reason != ReasonMissingRequired {
		t.Fatalf("expected missing_required, got %v", fieldErr)
	}
}

func TestFieldMissingOptionalIsAbsent(t *testing.T) {
	field := model.Field{Name: "note", Kind: model.KindString}
	value, fieldErr := Field(field, nil)
	if fieldErr != nil || value != nil {
		t.Fatalf("want nil/nil, got %v / %v", value, fieldErr)
	}
}

func TestFieldObjectHoldsNoValue(t *testing.T) {
	field := model.Field{Name: "server", Kind: model.KindObject}
	_, fieldErr := Field(field, map[string]any{})
	if fieldErr == nil || fieldErr.Reason != ReasonTypeMismatch {
		t.Fatalf("expected type_mismatch, got %v", fieldErr)
	}
}

func TestFieldStringLengthAndPattern(t *testing.T) {
	field := model.Field{
		Name: "slug",
		Kind: model.KindString,
		Constraints: model.Constraints{
			MinLength: intPtr(3),
			Pattern:   "^[a-z-]+$",
		},
	}
	if _, fieldErr := Field(field, "ab"); fieldErr == nil {
		t.Fatal("expected minLength violation")
	}
	if _, fieldErr := Field(field, "Nope"); fieldErr == nil {
		t.Fatal("expected pattern violation")
	}
	if _, fieldErr := Field(field, "my-slug"); fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
}

func TestFieldFormatChecks(t *testing.T) {
	cases := []struct {
		format string
		ok     string
		bad    string
	}{
		{"email", "ops@example.com", "not-an-email"},
		{"ipv4", "10.0.0.1", "10.0.0.256"},
		{"uuid", "123e4567-e89b-12d3-a456-426614174000", "nope"},
		{"date-time", "2024-05-01T10:30:00Z", "yesterday"},
	}
	for _, tc := range cases {
		field := model.Field{Name: "value", Kind: model.KindString, Format: tc.format}
		if _, fieldErr := Field(field, tc.ok); fieldErr != nil {
			t.Errorf("format %s rejected %q: %v", tc.format, tc.ok, fieldErr)
		}
		if _, fieldErr := Field(field, tc.bad); fieldErr == nil {
			t.Errorf("format %s accepted %q", tc.format, tc.bad)
		}
	}
}

func TestFieldSensitiveDetailNeverEchoesValue(t *testing.T) {
	field := model.Field{
		Name:        "api.key",
		Kind:        model.KindSecret,
		Sensitive:   true,
		Constraints: model.Constraints{MinLength: intPtr(8)},
	}

	_, fieldErr := Field(field, 12345)
	if fieldErr == nil {
		t.Fatal("expected a mismatch")
	}
	if got, want := fieldErr.Detail, "expected a string"; got != want {
		t.Fatalf("detail = %q, want %q (no raw value)", got, want)
	}
}

func TestFieldArrayValidatesItems(t *testing.T) {
	item := model.Field{
		Name:        "ports[]",
		Kind:        model.KindInteger,
		Constraints: model.Constraints{Min: floatPtr(1)},
	}
	field := model.Field{
		Name:        "ports",
		Kind:        model.KindArray,
		Constraints: model.Constraints{Items: &item},
	}

	value, fieldErr := Field(field, []string{"80", "443"})
	if fieldErr != nil {
		t.Fatalf("unexpected error: %v", fieldErr)
	}
	if diff := cmp.Diff([]any{int64(80), int64(443)}, value); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	_, fieldErr = Field(field, []string{"80", "x"})
	if fieldErr == nil {
		t.Fatal("expected an item error")
	}
	if got, want := fieldErr.Field, "ports.1"; got != want {
		t.Fatalf("item error field = %s, want %s", got, want)
	}
}

func TestTreeAccumulatesAllErrors(t *testing.T) {
	tree := model.Tree{
		Fields: []model.Field{
			{
				Name: "server",
				Kind: model.KindObject,
				Children: []model.Field{
					portField(),
					{Name: "server.host", Kind: model.KindString, Required: true},
				},
			},
			{Name: "debug", Kind: model.KindBoolean, Default: false},
		},
	}

	config, errs := Tree(tree, map[string]any{
		"server.port": "0",
	})
	if config != nil {
		t.Fatalf("config should be nil on failure, got %v", config)
	}
	if len(errs) != 2 {
		t.Fatalf("want 2 accumulated errors, got %d: %v", len(errs), errs)
	}
	if len(errs.For("server.port")) != 1 || len(errs.For("server.host")) != 1 {
		t.Fatalf("errors not grouped per field: %v", errs)
	}
}

func TestTreeBuildsNestedConfig(t *testing.T) {
	tree := model.Tree{
		Fields: []model.Field{
			{
				Name: "server",
				Kind: model.KindObject,
				Children: []model.Field{
					portField(),
					{Name: "server.host", Kind: model.KindString, Default: "localhost"},
				},
			},
			{Name: "debug", Kind: model.KindBoolean, Default: false},
		},
	}

	config, errs := Tree(tree, map[string]any{
		"server.port": "8000",
		"debug":       "true",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := Config{
		"server": map[string]any{
			"port": int64(8000),
			"host": "localhost",
		},
		"debug": true,
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	port, ok := config.Get("server.port")
	if !ok || port != int64(8000) {
		t.Fatalf("Get(server.port) = %v, %v", port, ok)
	}
}

func TestTreeOmitsAbsentOptionalLeaves(t *testing.T) {
	tree := model.Tree{
		Fields: []model.Field{
			{Name: "note", Kind: model.KindString},
		},
	}
	config, errs := Tree(tree, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := config.Get("note"); ok {
		t.Fatal("absent optional leaf must not appear in the config")
	}
}
