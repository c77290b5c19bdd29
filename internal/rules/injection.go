package rules

import "github.com/codewithboateng/diguard/internal/model"

const (
	msgInjectedField   = "field must not be injection-marked"
	msgConstructorOnly = "class must receive its collaborators via a single matching constructor"
)

// beanModifiers is the exact modifier set of a constructor-injected field.
var beanModifiers = model.NewModifierSet(model.Private, model.Final)

// IsBeanField reports whether the field's modifiers are exactly
// {private, final}. A static final constant is not a bean field.
func IsBeanField(f *model.Field) bool { return f.Modifiers.Equal(beanModifiers) }

func BeanFieldCount(c *model.Class) int {
	n := 0
	for i := range c.Fields {
		if IsBeanField(&c.Fields[i]) {
			n++
		}
	}
	return n
}

// HasConstructorOfArity reports whether some constructor takes exactly n
// parameters. A class without declared constructors has the implicit
// zero-argument one.
func HasConstructorOfArity(c *model.Class, n int) bool {
	if len(c.Constructors) == 0 {
		return n == 0
	}
	for _, k := range c.Constructors {
		if k.Arity() == n {
			return true
		}
	}
	return false
}

// NoInjectedFields emits one violation per field carrying the injected marker.
func NoInjectedFields(injectedMarker string) Condition {
	return Condition{
		Description: "have no field annotated with @" + injectedMarker,
		Check: func(c *model.Class) []model.Violation {
			var out []model.Violation
			for i := range c.Fields {
				f := &c.Fields[i]
				if f.HasMarker(injectedMarker) {
					out = append(out, fieldViolation(c, f, msgInjectedField))
				}
			}
			return out
		},
	}
}

// ConstructorInjection requires a constructor whose arity equals the number
// of bean fields.
func ConstructorInjection() Condition {
	return Condition{
		Description: "only be constructor injection",
		Check: func(c *model.Class) []model.Violation {
			if HasConstructorOfArity(c, BeanFieldCount(c)) {
				return nil
			}
			return []model.Violation{classViolation(c, msgConstructorOnly)}
		},
	}
}

// ForbidFieldInjection combines NoInjectedFields and ConstructorInjection.
// Both checks always run.
func ForbidFieldInjection(injectedMarker string) Condition {
	fields, ctor := NoInjectedFields(injectedMarker), ConstructorInjection()
	return Condition{
		Description: fields.Description + " and " + ctor.Description,
		Check: func(c *model.Class) []model.Violation {
			return append(fields.Check(c), ctor.Check(c)...)
		},
	}
}
