// Package model defines the canonical, renderer-agnostic field model: the
// closed Kind tag set, per-kind Constraints, the Field node, and the ordered
// Tree a normalizer run produces. Backends and the validation bridge both
// consume this package and nothing else about each other. Field names are
// dotted paths so answer maps, error lists, and nested configs all share one
// addressing scheme.
package model
