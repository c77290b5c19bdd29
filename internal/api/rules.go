package api

import "net/http"

type ruleResp struct {
	ID          string `json:"id"`
	Summary     string `json:"summary,omitempty"`
	Rationale   string `json:"rationale,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description"`
}

// GET /api/v1/rules (read-only, no auth)
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	out := make([]ruleResp, 0, len(s.Rules))
	for _, rr := range s.Rules {
		out = append(out, ruleResp{
			ID:          rr.ID,
			Summary:     rr.Summary,
			Rationale:   rr.Rationale,
			Priority:    rr.Priority,
			Severity:    string(rr.Severity),
			Description: rr.Describe(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
