package rules

import (
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

type Settings struct {
	Disabled    map[string]bool // upper-cased rule ids
	MinSeverity model.Severity
}

// NewSettings normalises disabled ids and parses the minimum severity.
func NewSettings(disabled []string, minSeverity string) (Settings, error) {
	sev, err := model.ParseSeverity(minSeverity)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{Disabled: map[string]bool{}, MinSeverity: sev}
	for _, id := range disabled {
		if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
			s.Disabled[id] = true
		}
	}
	return s, nil
}

func (s Settings) IsDisabled(id string) bool {
	return s.Disabled[strings.ToUpper(strings.TrimSpace(id))]
}

// Select drops disabled rules, order kept.
func (s Settings) Select(rs []Rule) []Rule {
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		if s.IsDisabled(r.ID) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DisabledIDs lists the disabled rule ids present in rs, in rule order.
func (s Settings) DisabledIDs(rs []Rule) []string {
	var out []string
	for _, r := range rs {
		if s.IsDisabled(r.ID) {
			out = append(out, r.ID)
		}
	}
	return out
}
