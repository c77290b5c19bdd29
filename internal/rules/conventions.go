package rules

import (
	"errors"
	"strings"
)

// Conventions are the four names the built-in rules are constructed from.
// None has a default.
type Conventions struct {
	ComponentMarker     string `yaml:"component_marker" json:"component_marker"`
	NameSuffix          string `yaml:"name_suffix" json:"name_suffix"`
	Package             string `yaml:"package" json:"package"`
	InjectedFieldMarker string `yaml:"injected_field_marker" json:"injected_field_marker"`
}

const (
	IDComponentSuffix      = "DI-COMPONENT-SUFFIX"
	IDComponentPackage     = "DI-COMPONENT-PACKAGE"
	IDConstructorInjection = "DI-CONSTRUCTOR-INJECTION"
)

func (c Conventions) Validate() error {
	var errs []error
	check := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, errors.New("conventions."+key+" is required"))
		}
	}
	check("component_marker", c.ComponentMarker)
	check("name_suffix", c.NameSuffix)
	check("package", c.Package)
	check("injected_field_marker", c.InjectedFieldMarker)
	return errors.Join(errs...)
}

// Rules builds the three convention rules in a fixed order.
func (c Conventions) Rules() ([]Rule, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	scope := HasMarker(c.ComponentMarker)
	return []Rule{
		{
			ID:        IDComponentSuffix,
			Summary:   "Components are named with the " + c.NameSuffix + " suffix",
			Rationale: "A uniform suffix makes the role of a class obvious at every call site.",
			Priority:  "MEDIUM",
			That:      scope,
			Should:    []Condition{RequireSuffix(c.NameSuffix)},
		},
		{
			ID:        IDComponentPackage,
			Summary:   "Components live in " + c.Package,
			Rationale: "Classes annotated with @" + c.ComponentMarker + " should reside in " + c.Package + " so the layer stays in one place.",
			Priority:  "HIGH",
			That:      scope,
			Should:    []Condition{RequirePackage(c.Package)},
		},
		{
			ID:        IDConstructorInjection,
			Summary:   "Components use constructor injection only",
			Rationale: "Constructor injection keeps collaborators final and makes missing dependencies fail at construction.",
			Priority:  "HIGH",
			That:      scope,
			Should:    []Condition{ForbidFieldInjection(c.InjectedFieldMarker)},
		},
	}, nil
}
