package rules

import (
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

// Predicate selects the classes a rule is evaluated against.
type Predicate struct {
	Description string
	Apply       func(c *model.Class) bool
}

// Condition inspects one class and returns its violations. Conditions leave
// RuleID and ID empty; Run fills them in.
type Condition struct {
	Description string
	Check       func(c *model.Class) []model.Violation
}

// Rule pairs a scope predicate with the conditions every in-scope class must
// satisfy.
type Rule struct {
	ID        string
	Summary   string
	Rationale string
	Priority  string // LOW|MEDIUM|HIGH, informational only

	That   Predicate
	Should []Condition

	// Severity, when set, replaces the severity emitted by the conditions.
	Severity model.Severity
}

// Describe renders the rule as a sentence, e.g.
// "classes annotated with @Service should have simple name ending with 'Service'".
func (r Rule) Describe() string {
	parts := make([]string, 0, len(r.Should))
	for _, c := range r.Should {
		parts = append(parts, "should "+c.Description)
	}
	return "classes " + r.That.Description + " " + strings.Join(parts, " and ")
}

func (r Rule) Info() model.RuleInfo {
	return model.RuleInfo{ID: r.ID, Summary: r.Summary, Rationale: r.Rationale, Priority: r.Priority}
}

// Infos returns the descriptive part of every rule, order kept.
func Infos(rs []Rule) []model.RuleInfo {
	out := make([]model.RuleInfo, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Info())
	}
	return out
}

// Find returns the rule with the given id (case-insensitive).
func Find(rs []Rule, id string) (Rule, bool) {
	key := strings.TrimSpace(id)
	for _, r := range rs {
		if strings.EqualFold(r.ID, key) {
			return r, true
		}
	}
	return Rule{}, false
}
