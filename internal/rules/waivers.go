package rules

import (
	"time"

	"github.com/codewithboateng/diguard/internal/model"
)

// ApplyWaivers removes violations matched by any waiver active at now and
// adds their number to the report's Waived count.
func ApplyWaivers(r model.Report, waivers []model.Waiver, now time.Time) model.Report {
	if len(waivers) == 0 || len(r.Violations) == 0 {
		return r
	}
	out := model.Report{Violations: make([]model.Violation, 0, len(r.Violations)), Waived: r.Waived}
nextViolation:
	for _, v := range r.Violations {
		for _, w := range waivers {
			if w.Active(now) && w.Matches(v) {
				out.Waived++
				continue nextViolation
			}
		}
		out.Violations = append(out.Violations, v)
	}
	return out
}
