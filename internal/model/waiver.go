package model

import (
	"strings"
	"time"
)

// Waiver suppresses violations of one rule. Empty Class, Subject and Pattern
// match anything.
type Waiver struct {
	ID        int64      `json:"id"`
	RuleID    string     `json:"rule_id"`
	Class     string     `json:"class,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Pattern   string     `json:"pattern,omitempty"`
	Reason    string     `json:"reason"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the waiver is neither revoked nor expired at now.
func (w Waiver) Active(now time.Time) bool {
	return w.RevokedAt == nil && now.Before(w.ExpiresAt)
}

// Matches compares ids and names case-insensitively; Pattern is a
// case-insensitive substring of the message or the subject.
func (w Waiver) Matches(v Violation) bool {
	if !eqCI(w.RuleID, v.RuleID) {
		return false
	}
	if w.Class != "" && !eqCI(w.Class, v.Class) {
		return false
	}
	if w.Subject != "" && !eqCI(w.Subject, v.Subject) {
		return false
	}
	if w.Pattern != "" {
		p := strings.ToUpper(w.Pattern)
		if !strings.Contains(strings.ToUpper(v.Message), p) && !strings.Contains(strings.ToUpper(v.Subject), p) {
			return false
		}
	}
	return true
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
