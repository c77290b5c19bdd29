package rules

import (
	"fmt"

	"github.com/codewithboateng/diguard/internal/model"
)

// RequirePackage fails a class whose package is not exactly pkg. Sub-packages
// do not match.
func RequirePackage(pkg string) Condition {
	return Condition{
		Description: fmt.Sprintf("reside in a package '%s'", pkg),
		Check: func(c *model.Class) []model.Violation {
			if c.Package == pkg {
				return nil
			}
			return []model.Violation{classViolation(c, fmt.Sprintf("class must reside in package %q", pkg))}
		},
	}
}

// ForbidMarker fails a class that carries the named marker.
func ForbidMarker(name string) Condition {
	return Condition{
		Description: "not be annotated with @" + name,
		Check: func(c *model.Class) []model.Violation {
			if !c.HasMarker(name) {
				return nil
			}
			return []model.Violation{classViolation(c, fmt.Sprintf("class must not be marked @%s", name))}
		},
	}
}
