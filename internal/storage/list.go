package storage

import (
	"time"

	"github.com/codewithboateng/diguard/internal/model"
)

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Source       string    `json:"source,omitempty"`
	ModelVersion string    `json:"model_version,omitempty"`
	Classes      int       `json:"classes"`
	Violations   int       `json:"violations"`
	Blocking     int       `json:"blocking"`
}

// ListRuns returns runs newest first with violation counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.source, r.model_version, r.classes,
		       (SELECT COUNT(1) FROM violations v WHERE v.run_id = r.id),
		       (SELECT COUNT(1) FROM violations v WHERE v.run_id = r.id AND v.severity = 'BLOCKING')
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunRow{}
	for rows.Next() {
		var rr RunRow
		var startedAt string
		if err := rows.Scan(&rr.ID, &startedAt, &rr.Source, &rr.ModelVersion, &rr.Classes, &rr.Violations, &rr.Blocking); err != nil {
			return nil, err
		}
		rr.StartedAt = parseTime(startedAt)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListViolations returns a run's violations at or above minSeverity, in
// the order the run reported them.
func (db *DB) ListViolations(runID string, minSeverity model.Severity) ([]model.Violation, error) {
	const q = `
		SELECT id, rule_id, class, subject, kind, severity, message
		  FROM violations
		 WHERE run_id = ?
		   AND (CASE severity WHEN 'BLOCKING' THEN 2 ELSE 1 END)
		       >= (CASE ? WHEN 'BLOCKING' THEN 2 ELSE 1 END)
		 ORDER BY rowid`
	rows, err := db.conn.Query(q, runID, string(minSeverity))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Violation{}
	for rows.Next() {
		var v model.Violation
		var kind, sev string
		if err := rows.Scan(&v.ID, &v.RuleID, &v.Class, &v.Subject, &kind, &sev, &v.Message); err != nil {
			return nil, err
		}
		v.Kind, v.Severity = model.SubjectKind(kind), model.Severity(sev)
		out = append(out, v)
	}
	return out, rows.Err()
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
