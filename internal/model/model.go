// Package model holds the structural class model the rule engine inspects
// and the run/report types produced from it.
package model

import "time"

const Version = "1.0"

type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Source       string    `json:"source,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`

	Context Context `json:"context"`
	Classes []Class `json:"classes"`
	Report  Report  `json:"report"`
}

type Context struct {
	MinSeverity   string     `json:"min_severity,omitempty"`
	DisabledRules []string   `json:"disabled_rules,omitempty"`
	Rules         []RuleInfo `json:"rules,omitempty"`
}

// RuleInfo is the descriptive part of a rule, kept with a run so reports
// rendered later can show what each rule id meant at analysis time.
type RuleInfo struct {
	ID        string `json:"id"`
	Summary   string `json:"summary,omitempty"`
	Rationale string `json:"rationale,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

// Class describes one declared type.
type Class struct {
	Name         string        `json:"name" yaml:"name"`
	Package      string        `json:"package" yaml:"package"`
	Markers      []Marker      `json:"markers,omitempty" yaml:"markers,omitempty"`
	Fields       []Field       `json:"fields,omitempty" yaml:"fields,omitempty"`
	Constructors []Constructor `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
}

type Field struct {
	Name      string      `json:"name" yaml:"name"`
	Type      string      `json:"type,omitempty" yaml:"type,omitempty"`
	Modifiers ModifierSet `json:"modifiers" yaml:"modifiers"`
	Markers   []Marker    `json:"markers,omitempty" yaml:"markers,omitempty"`
}

type Constructor struct {
	Parameters []string `json:"parameters" yaml:"parameters"`
}

// Marker is an annotation-like tag. Two markers are the same when their
// names are equal; Value is free-form and never compared.
type Marker struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

func (c *Class) HasMarker(name string) bool { return hasMarker(c.Markers, name) }

func (f *Field) HasMarker(name string) bool { return hasMarker(f.Markers, name) }

// Arity is the number of declared parameters.
func (k Constructor) Arity() int { return len(k.Parameters) }

func hasMarker(ms []Marker, name string) bool {
	for _, m := range ms {
		if m.Name == name {
			return true
		}
	}
	return false
}
