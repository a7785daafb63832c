// Package wizard drives one schema-to-config pass: render the field tree
// through a backend, validate the raw answers, and re-render with the
// accumulated errors until every field validates. One Driver owns one
// answer map for the lifetime of one run; concurrent runs must use separate
// Driver instances (the field tree itself is immutable and safe to share).
package wizard

import (
	"context"
	"errors"

	"github.com/goliatone/go-confwizard/pkg/backend"
	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// State identifies where the driver is in its render/validate cycle.
type State string

const (
	// StateRendering means the backend is collecting answers.
	StateRendering State = "rendering"
	// StateValidating means a submission is being checked.
	StateValidating State = "validating"
	// StateSucceeded is terminal and carries the validated config.
	StateSucceeded State = "succeeded"
)

// Driver orchestrates one wizard pass over one field tree.
type Driver struct {
	tree    model.Tree
	backend backend.Backend

	state   State
	answers map[string]any
	errs    validate.Errors
}

// New constructs a Driver for the given tree and backend.
func New(tree model.Tree, b backend.Backend) (*Driver, error) {
	if b == nil {
		return nil, errors.New("wizard: backend is required")
	}
	if len(tree.Fields) == 0 {
		return nil, errors.New("wizard: tree has no fields")
	}
	return &Driver{
		tree:    tree,
		backend: b,
		state:   StateRendering,
	}, nil
}

// State reports the driver's current state.
func (d *Driver) State() State {
	return d.state
}

// Run executes the state machine to completion: Rendering -> Validating ->
// (Succeeded | Rendering-with-errors). Failed validations re-invoke the
// backend with the prior answers (so non-erroring input is preserved
// verbatim) plus the accumulated error list. The driver applies no timeout
// and performs no retries of its own; a backend that wants out returns an
// error, which aborts the run.
func (d *Driver) Run(ctx context.Context) (validate.Config, error) {
	return d.RunWithAnswers(ctx, nil)
}

// RunWithAnswers behaves like Run but seeds the first render with prefilled
// answers, e.g. values recovered from an existing configuration file.
func (d *Driver) RunWithAnswers(ctx context.Context, prefill map[string]any) (validate.Config, error) {
	if d.state != StateRendering {
		return nil, errors.New("wizard: driver has already run")
	}
	d.answers = cloneAnswers(prefill)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		submitted, err := d.backend.Render(ctx, d.tree, d.answers, d.errs)
		if err != nil {
			return nil, err
		}

		d.state = StateValidating
		d.answers = submitted

		config, errs := validate.Tree(d.tree, submitted)
		if len(errs) == 0 {
			d.state = StateSucceeded
			return config, nil
		}

		d.errs = errs
		d.state = StateRendering
	}
}

// Errors returns the error list from the most recent validation pass.
func (d *Driver) Errors() validate.Errors {
	return d.errs
}

func cloneAnswers(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
