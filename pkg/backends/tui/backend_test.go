package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

func testTree() model.Tree {
	return model.Tree{
		Title: "App Settings",
		Fields: []model.Field{
			{
				Name:  "server",
				Kind:  model.KindObject,
				Label: "Server",
				Children: []model.Field{
					{Name: "server.host", Kind: model.KindString, Label: "Host", Default: "localhost"},
					{Name: "server.port", Kind: model.KindInteger, Label: "Port", Default: float64(8080)},
				},
			},
			{Name: "apiKey", Kind: model.KindSecret, Label: "Api Key", Sensitive: true},
			{Name: "debug", Kind: model.KindBoolean, Label: "Debug", Default: true},
			{
				Name:        "level",
				Kind:        model.KindEnum,
				Label:       "Level",
				Default:     "info",
				Constraints: model.Constraints{Values: []any{"debug", "info"}},
			},
		},
	}
}

func TestGroupsMirrorTopLevelObjects(t *testing.T) {
	fb := &formBuilder{}
	groups := fb.groups(testTree())

	// One group for the root-level leaves plus one per top-level object.
	require.Len(t, groups, 2)
	require.Len(t, fb.bindings, 5)

	var names []string
	for _, bind := range fb.bindings {
		names = append(names, bind.field.Name)
	}
	assert.Equal(t, []string{"server.host", "server.port", "apiKey", "debug", "level"}, names)
}

func TestBindingsSeedFromDefaultsAndPrior(t *testing.T) {
	fb := &formBuilder{prior: map[string]any{"server.port": "9999"}}
	fb.groups(testTree())

	byName := map[string]*binding{}
	for _, bind := range fb.bindings {
		byName[bind.field.Name] = bind
	}

	assert.Equal(t, "localhost", *byName["server.host"].str)
	assert.Equal(t, "9999", *byName["server.port"].str, "prior answers win over defaults")
	assert.Equal(t, "", *byName["apiKey"].str, "secrets are never seeded")
	assert.True(t, *byName["debug"].flag)
	assert.Equal(t, "info", *byName["level"].str)
}

func TestBindingValuesProduceFlatAnswers(t *testing.T) {
	fb := &formBuilder{}
	fb.groups(testTree())

	for _, bind := range fb.bindings {
		switch bind.field.Name {
		case "server.port":
			*bind.str = "9090"
		case "apiKey":
			*bind.str = "hunter2secret"
		}
	}

	answers := map[string]any{}
	for _, bind := range fb.bindings {
		answers[bind.field.Name] = bind.value()
	}

	assert.Equal(t, "9090", answers["server.port"])
	assert.Equal(t, "hunter2secret", answers["apiKey"])
	assert.Equal(t, true, answers["debug"])
}

func TestEnumBindingMapsBackToCanonicalValue(t *testing.T) {
	tree := model.Tree{
		Fields: []model.Field{{
			Name:        "level",
			Kind:        model.KindEnum,
			Label:       "Level",
			Constraints: model.Constraints{Values: []any{float64(1), float64(2)}},
		}},
	}
	fb := &formBuilder{}
	fb.groups(tree)
	require.Len(t, fb.bindings, 1)

	*fb.bindings[0].str = "2"
	assert.Equal(t, float64(2), fb.bindings[0].value())
}

func TestArrayBindings(t *testing.T) {
	tree := model.Tree{
		Fields: []model.Field{
			{
				Name:  "tags",
				Kind:  model.KindArray,
				Label: "Tags",
				Constraints: model.Constraints{
					Items: &model.Field{Name: "tags[]", Kind: model.KindString},
				},
			},
			{
				Name:  "features",
				Kind:  model.KindArray,
				Label: "Features",
				Constraints: model.Constraints{
					Items: &model.Field{
						Name:        "features[]",
						Kind:        model.KindEnum,
						Constraints: model.Constraints{Values: []any{"a", "b", "c"}},
					},
				},
			},
		},
	}

	fb := &formBuilder{}
	fb.groups(tree)
	require.Len(t, fb.bindings, 2)

	*fb.bindings[0].str = "x, y"
	assert.Equal(t, []any{"x", "y"}, fb.bindings[0].value())

	*fb.bindings[1].list = []string{"a", "c"}
	assert.Equal(t, []any{"a", "c"}, fb.bindings[1].value())
}

func TestFailureDetailsAppearInDescriptions(t *testing.T) {
	errs := validate.Errors{
		{Field: "server.port", Reason: validate.ReasonConstraintViolated, Detail: "must be at least 1"},
	}
	fb := &formBuilder{failures: errs.ByField()}

	desc := fb.describe(model.Field{Name: "server.port", Description: "listen port"})
	assert.Contains(t, desc, "listen port")
	assert.Contains(t, desc, "must be at least 1")

	clean := fb.describe(model.Field{Name: "server.host"})
	assert.Empty(t, clean)
}
