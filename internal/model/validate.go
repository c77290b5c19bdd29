package model

import (
	"errors"
	"fmt"
)

// ModelError reports a structurally invalid class model. It is fatal for a
// run: no rule is evaluated against a model that fails validation.
type ModelError struct {
	Class  string // qualified name, or the source when the name is missing
	Field  string
	Reason string
}

func (e *ModelError) Error() string {
	switch {
	case e.Class == "":
		return "invalid model: " + e.Reason
	case e.Field == "":
		return fmt.Sprintf("invalid model: class %s: %s", e.Class, e.Reason)
	default:
		return fmt.Sprintf("invalid model: class %s field %s: %s", e.Class, e.Field, e.Reason)
	}
}

// Validate checks the model invariants of every class and returns all
// problems joined, each a *ModelError.
func Validate(classes []Class) error {
	var errs []error
	for i := range classes {
		c := &classes[i]
		id := c.QualifiedName()
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			if c.Source != "" {
				id += " (" + c.Source + ")"
			}
		}
		if c.Name == "" {
			errs = append(errs, &ModelError{Class: id, Reason: "empty simple name"})
		}
		if c.Package == "" {
			errs = append(errs, &ModelError{Class: id, Reason: "empty package"})
		}
		if dup, ok := duplicateMarker(c.Markers); ok {
			errs = append(errs, &ModelError{Class: id, Reason: fmt.Sprintf("duplicate marker %q", dup)})
		}
		for j := range c.Fields {
			f := &c.Fields[j]
			if f.Name == "" {
				errs = append(errs, &ModelError{Class: id, Field: fmt.Sprintf("#%d", j), Reason: "empty field name"})
			}
			if dup, ok := duplicateMarker(f.Markers); ok {
				errs = append(errs, &ModelError{Class: id, Field: f.Name, Reason: fmt.Sprintf("duplicate marker %q", dup)})
			}
		}
	}
	return errors.Join(errs...)
}

func duplicateMarker(ms []Marker) (string, bool) {
	seen := make(map[string]struct{}, len(ms))
	for _, m := range ms {
		if _, ok := seen[m.Name]; ok {
			return m.Name, true
		}
		seen[m.Name] = struct{}{}
	}
	return "", false
}
