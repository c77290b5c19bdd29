package rules

import (
	"regexp"
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

// HasMarker holds for classes carrying a marker with exactly this name.
func HasMarker(name string) Predicate {
	return Predicate{
		Description: "annotated with @" + name,
		Apply:       func(c *model.Class) bool { return c.HasMarker(name) },
	}
}

// ResideIn holds for classes whose package equals pkg.
func ResideIn(pkg string) Predicate {
	return Predicate{
		Description: "residing in package '" + pkg + "'",
		Apply:       func(c *model.Class) bool { return c.Package == pkg },
	}
}

// NameMatches holds for classes whose simple name matches re.
func NameMatches(re *regexp.Regexp) Predicate {
	return Predicate{
		Description: "with simple name matching '" + re.String() + "'",
		Apply:       func(c *model.Class) bool { return re.MatchString(c.Name) },
	}
}

// PackageMatches holds for classes whose package matches re.
func PackageMatches(re *regexp.Regexp) Predicate {
	return Predicate{
		Description: "in package matching '" + re.String() + "'",
		Apply:       func(c *model.Class) bool { return re.MatchString(c.Package) },
	}
}

// AnyClass holds for every class.
func AnyClass() Predicate {
	return Predicate{Description: "of any kind", Apply: func(*model.Class) bool { return true }}
}

func And(ps ...Predicate) Predicate {
	return Predicate{
		Description: joinDescriptions(ps, " and "),
		Apply: func(c *model.Class) bool {
			for _, p := range ps {
				if !p.Apply(c) {
					return false
				}
			}
			return true
		},
	}
}

func Or(ps ...Predicate) Predicate {
	return Predicate{
		Description: joinDescriptions(ps, " or "),
		Apply: func(c *model.Class) bool {
			for _, p := range ps {
				if p.Apply(c) {
					return true
				}
			}
			return false
		},
	}
}

func Not(p Predicate) Predicate {
	return Predicate{
		Description: "not " + p.Description,
		Apply:       func(c *model.Class) bool { return !p.Apply(c) },
	}
}

func joinDescriptions(ps []Predicate, sep string) string {
	ds := make([]string, 0, len(ps))
	for _, p := range ps {
		ds = append(ds, p.Description)
	}
	return strings.Join(ds, sep)
}
