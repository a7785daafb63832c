// Package backend defines the capability set every interactive renderer must
// implement. The field tree is the sole input a backend receives and the raw
// answer map is the sole output it hands back; the translation layer knows
// nothing else about how a backend draws itself.
package backend

import (
	"context"

	"github.com/goliatone/go-confwizard/pkg/model"
	"github.com/goliatone/go-confwizard/pkg/validate"
)

// Backend renders one field tree and collects raw answers. Render is invoked
// at most once per driver transition into a rendering state; it is
// synchronous from the driver's point of view, though implementations may
// run their own event loops internally as long as exactly one answer map is
// produced per call. Implementations must not mutate the tree.
//
// prior carries the previous submission's raw answers so a re-render can
// preserve the user's input; errs carries the per-field failures from the
// last validation pass so the offending fields can be highlighted. Both are
// nil on the first render.
type Backend interface {
	Name() string
	Render(ctx context.Context, tree model.Tree, prior map[string]any, errs validate.Errors) (map[string]any, error)
}

// Request is the per-field context handed to rendering hooks.
type Request struct {
	// Prior is the raw answer from the previous submission, nil when none.
	// For object fields it is the prefix-filtered slice of the flat answer
	// map, still keyed by full dotted path.
	Prior any
	// Errors lists validation failures recorded against this field.
	Errors []validate.FieldError
}

// HasPrior reports whether a previous answer exists.
func (r Request) HasPrior() bool {
	return r.Prior != nil
}

// Hook renders one field and returns its raw answer. Object hooks return a
// map keyed by dotted leaf path covering the object's children.
type Hook func(ctx context.Context, field model.Field, req Request) (any, error)
