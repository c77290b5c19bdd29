package rules

import (
	"fmt"
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

// RequireSuffix fails a class whose simple name does not end with suffix.
// The comparison is literal and case-sensitive.
func RequireSuffix(suffix string) Condition {
	return Condition{
		Description: fmt.Sprintf("have simple name ending with '%s'", suffix),
		Check: func(c *model.Class) []model.Violation {
			if strings.HasSuffix(c.Name, suffix) {
				return nil
			}
			return []model.Violation{classViolation(c, fmt.Sprintf("class name must end with %q", suffix))}
		},
	}
}

func classViolation(c *model.Class, msg string) model.Violation {
	return model.Violation{
		Class:    c.QualifiedName(),
		Subject:  c.Name,
		Kind:     model.KindClass,
		Severity: model.SeverityBlocking,
		Message:  msg,
	}
}

func fieldViolation(c *model.Class, f *model.Field, msg string) model.Violation {
	return model.Violation{
		Class:    c.QualifiedName(),
		Subject:  f.Name,
		Kind:     model.KindField,
		Severity: model.SeverityBlocking,
		Message:  msg,
	}
}
