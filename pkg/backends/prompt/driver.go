package prompt

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
)

// Prompt carries everything a driver needs to ask one question.
type Prompt struct {
	// Message is the label shown to the user.
	Message string
	// Help is the secondary line, usually the field description.
	Help string
	// Default is the value preselected when the user submits empty input.
	Default string
}

// Driver abstracts the terminal prompt library so tests can script
// interactions without a TTY.
type Driver interface {
	Input(ctx context.Context, p Prompt) (string, error)
	Password(ctx context.Context, p Prompt) (string, error)
	Confirm(ctx context.Context, p Prompt, def bool) (bool, error)
	Select(ctx context.Context, p Prompt, options []string, def string) (string, error)
	MultiSelect(ctx context.Context, p Prompt, options []string, defs []string) ([]string, error)
}

// surveyDriver asks questions through AlecAivazis/survey.
type surveyDriver struct {
	opts []survey.AskOpt
}

// NewSurveyDriver constructs the production driver. AskOpts are forwarded to
// every question, e.g. survey.WithStdio for custom streams.
func NewSurveyDriver(opts ...survey.AskOpt) Driver {
	return &surveyDriver{opts: opts}
}

func (d *surveyDriver) ask(ctx context.Context, q survey.Prompt, response any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return survey.AskOne(q, response, d.opts...)
}

func (d *surveyDriver) Input(ctx context.Context, p Prompt) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Input{
		Message: p.Message,
		Help:    p.Help,
		Default: p.Default,
	}, &answer)
	return answer, err
}

func (d *surveyDriver) Password(ctx context.Context, p Prompt) (string, error) {
	var answer string
	err := d.ask(ctx, &survey.Password{
		Message: p.Message,
		Help:    p.Help,
	}, &answer)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, p Prompt, def bool) (bool, error) {
	answer := def
	err := d.ask(ctx, &survey.Confirm{
		Message: p.Message,
		Help:    p.Help,
		Default: def,
	}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, p Prompt, options []string, def string) (string, error) {
	q := &survey.Select{
		Message: p.Message,
		Help:    p.Help,
		Options: options,
	}
	if def != "" {
		q.Default = def
	}
	var answer string
	err := d.ask(ctx, q, &answer)
	return answer, err
}

func (d *surveyDriver) MultiSelect(ctx context.Context, p Prompt, options []string, defs []string) ([]string, error) {
	q := &survey.MultiSelect{
		Message: p.Message,
		Help:    p.Help,
		Options: options,
	}
	if len(defs) > 0 {
		q.Default = defs
	}
	var answer []string
	err := d.ask(ctx, q, &answer)
	return answer, err
}
