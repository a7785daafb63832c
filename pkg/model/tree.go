package model

// Tree is the ordered sequence of root fields produced by one normalizer
// run. Order follows schema declaration order and drives rendering order.
// A Tree is immutable after construction: backends read it, never mutate it,
// so one normalized tree can back multiple concurrent wizard runs.
type Tree struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Walk visits every field depth-first in declaration order. Returning false
// from the visitor stops the walk.
func (t Tree) Walk(visit func(Field) bool) {
	walkFields(t.Fields, visit)
}

func walkFields(fields []Field, visit func(Field) bool) bool {
	for _, field := range fields {
		if !visit(field) {
			return false
		}
		if len(field.Children) > 0 {
			if !walkFields(field.Children, visit) {
				return false
			}
		}
	}
	return true
}

// Leaves returns every non-object field in declaration order. These are the
// fields an answer map must cover.
func (t Tree) Leaves() []Field {
	var out []Field
	t.Walk(func(f Field) bool {
		if f.Kind.Leaf() {
			out = append(out, f)
		}
		return true
	})
	return out
}

// Lookup resolves a dotted path to its field.
func (t Tree) Lookup(path string) (Field, bool) {
	var found Field
	ok := false
	t.Walk(func(f Field) bool {
		if f.Name == path {
			found = f
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// Len reports the number of root fields.
func (t Tree) Len() int {
	return len(t.Fields)
}
