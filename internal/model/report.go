package model

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityBlocking Severity = "BLOCKING"
)

func (s Severity) Rank() int {
	switch s {
	case SeverityBlocking:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity is case-insensitive; an empty string means INFO.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return SeverityInfo, nil
	case "BLOCKING":
		return SeverityBlocking, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

type SubjectKind string

const (
	KindClass SubjectKind = "class"
	KindField SubjectKind = "field"
)

// Violation is one non-conformance of one class (or one of its fields)
// against one rule.
type Violation struct {
	ID       string      `json:"id"`
	RuleID   string      `json:"rule_id"`
	Class    string      `json:"class"`
	Subject  string      `json:"subject"`
	Kind     SubjectKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// Report keeps violations in discovery order.
type Report struct {
	Violations []Violation `json:"violations"`
	Waived     int         `json:"waived,omitempty"`
}

// HasFailures reports whether any blocking violation is present.
func (r Report) HasFailures() bool { return r.Blocking() > 0 }

func (r Report) Blocking() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityBlocking {
			n++
		}
	}
	return n
}

// AtLeast returns a copy holding only violations at or above min, order kept.
func (r Report) AtLeast(min Severity) Report {
	out := Report{Violations: make([]Violation, 0, len(r.Violations)), Waived: r.Waived}
	for _, v := range r.Violations {
		if v.Severity.Rank() >= min.Rank() {
			out.Violations = append(out.Violations, v)
		}
	}
	return out
}

// ByRule counts violations per rule id.
func (r Report) ByRule() map[string]int {
	out := make(map[string]int)
	for _, v := range r.Violations {
		out[v.RuleID]++
	}
	return out
}
