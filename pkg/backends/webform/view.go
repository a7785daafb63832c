package webform

import (
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

type pageView struct {
	Title       string
	Description string
	HasErrors   bool
	Sections    []sectionView
}

type sectionView struct {
	Title       string
	Description string
	Fields      []fieldView
}

type fieldView struct {
	Name        string
	Label       string
	Description string
	// Control picks the template branch: text, password, number, checkbox,
	// select, multiselect, or list.
	Control  string
	Value    string
	Checked  bool
	Required bool
	Options  []optionView
	Errors   []string
}

type optionView struct {
	Label    string
	Selected bool
}

// buildView assembles the template payload. Schema text (titles, labels,
// descriptions) is the only place markup could ride in from the document, so
// it is the only thing the policy touches.
func buildView(tree model.Tree, prior map[string]any, errs validate.Errors, policy *bluemonday.Policy) pageView {
	page := pageView{
		Title:       cleanText(tree.Title, policy),
		Description: cleanText(tree.Description, policy),
		HasErrors:   len(errs) > 0,
	}
	failures := errs.ByField()

	var rootFields []fieldView
	for _, field := range tree.Fields {
		if field.Kind != model.KindObject {
			rootFields = append(rootFields, buildField(field, prior, failures, policy))
			continue
		}
		section := sectionView{
			Title:       cleanText(field.Label, policy),
			Description: cleanText(field.Description, policy),
		}
		collectFieldViews(field.Children, prior, failures, policy, &section.Fields)
		if len(section.Fields) > 0 {
			page.Sections = append(page.Sections, section)
		}
	}
	if len(rootFields) > 0 {
		page.Sections = append([]sectionView{{Title: page.Title, Fields: rootFields}}, page.Sections...)
	}
	return page
}

func collectFieldViews(fields []model.Field, prior map[string]any, failures map[string][]validate.FieldError, policy *bluemonday.Policy, out *[]fieldView) {
	for _, field := range fields {
		if field.Kind == model.KindObject {
			collectFieldViews(field.Children, prior, failures, policy, out)
			continue
		}
		*out = append(*out, buildField(field, prior, failures, policy))
	}
}

// cleanText strips markup from schema-supplied display text. bluemonday
// entity-escapes what it keeps, so the result is unescaped back to plain
// text before html/template escapes it once at render time.
func cleanText(s string, policy *bluemonday.Policy) string {
	return html.UnescapeString(policy.Sanitize(s))
}

func buildField(field model.Field, prior map[string]any, failures map[string][]validate.FieldError, policy *bluemonday.Policy) fieldView {
	view := fieldView{
		Name:        field.Name,
		Label:       cleanText(field.Label, policy),
		Description: cleanText(field.Description, policy),
		Required:    field.Required,
	}
	for _, fe := range failures[field.Name] {
		view.Errors = append(view.Errors, fe.Detail)
	}

	seed, hasSeed := seedValue(field, prior)

	switch field.Kind {
	case model.KindSecret:
		view.Control = "password"
	case model.KindBoolean:
		view.Control = "checkbox"
		if hasSeed {
			flag, _ := seed.(bool)
			view.Checked = flag
		}
	case model.KindEnum:
		view.Control = "select"
		selected := ""
		if hasSeed {
			selected = formatValue(seed)
		}
		for _, value := range field.Constraints.Values {
			label := formatValue(value)
			view.Options = append(view.Options, optionView{Label: label, Selected: label == selected})
		}
	case model.KindArray:
		if field.Constraints.Items != nil && field.Constraints.Items.Kind == model.KindEnum {
			view.Control = "multiselect"
			selected := map[string]bool{}
			if list, ok := seed.([]any); ok {
				for _, item := range list {
					selected[formatValue(item)] = true
				}
			}
			for _, value := range field.Constraints.Items.Constraints.Values {
				label := formatValue(value)
				view.Options = append(view.Options, optionView{Label: label, Selected: selected[label]})
			}
		} else {
			view.Control = "list"
			if hasSeed {
				view.Value = formatList(seed)
			}
		}
	case model.KindNumber, model.KindInteger:
		view.Control = "number"
		if hasSeed {
			view.Value = formatValue(seed)
		}
	default:
		view.Control = "text"
		if hasSeed {
			view.Value = formatValue(seed)
		}
	}
	return view
}

// seedValue never exposes secrets, even when a prior submission carried one.
func seedValue(field model.Field, prior map[string]any) (any, bool) {
	if field.Kind == model.KindSecret {
		return nil, false
	}
	if value, ok := prior[field.Name]; ok && value != nil {
		return value, true
	}
	if field.HasDefault() {
		return field.Default, true
	}
	return nil, false
}

func formatValue(value any) string {
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

func formatList(value any) string {
	list, ok := value.([]any)
	if !ok {
		return formatValue(value)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		parts = append(parts, formatValue(item))
	}
	return strings.Join(parts, ", ")
}

const submittedPage = `<!doctype html>
<html><body><p>Configuration submitted. You can close this tab.</p></body></html>
`

var formTemplate = template.Must(template.New("form").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}Configuration{{end}}</title>
</head>
<body>
<h1>{{if .Title}}{{.Title}}{{else}}Configuration{{end}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .HasErrors}}<p class="error">Some answers need attention. Fix the highlighted fields and resubmit.</p>{{end}}
<form method="post" action="/">
{{range .Sections}}
<fieldset>
{{if .Title}}<legend>{{.Title}}</legend>{{end}}
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{range .Fields}}
<div class="field">
<label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>
{{if eq .Control "checkbox"}}
<input type="checkbox" id="{{.Name}}" name="{{.Name}}"{{if .Checked}} checked{{end}}>
{{else if eq .Control "select"}}
<select id="{{.Name}}" name="{{.Name}}">
{{range .Options}}<option{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{else if eq .Control "multiselect"}}
<select id="{{.Name}}" name="{{.Name}}" multiple>
{{range .Options}}<option{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{else if eq .Control "password"}}
<input type="password" id="{{.Name}}" name="{{.Name}}">
{{else}}
<input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}">
{{end}}
{{if .Description}}<small>{{.Description}}</small>{{end}}
{{range .Errors}}<p class="error">{{.}}</p>
{{end}}
</div>
{{end}}
</fieldset>
{{end}}
<button type="submit">Save configuration</button>
</form>
</body>
</html>
`))
