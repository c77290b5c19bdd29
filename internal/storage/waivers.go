package storage

import (
	"database/sql"
	"time"

	"github.com/codewithboateng/diguard/internal/model"
)

// CreateWaiver stores w (ID, CreatedAt and RevokedAt are ignored) and
// returns its id.
func (db *DB) CreateWaiver(w model.Waiver) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO waivers(rule_id, class, subject, pattern, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?,?,?)`,
		w.RuleID, nz(w.Class), nz(w.Subject), nz(w.Pattern), w.Reason,
		w.ExpiresAt.UTC().Format(time.RFC3339Nano), w.CreatedBy, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RevokeWaiver marks an active waiver revoked. Revoking an unknown or
// already revoked waiver is ErrNoRows.
func (db *DB) RevokeWaiver(id int64) error {
	return execOne(db.conn, `UPDATE waivers SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
}

// ListWaivers returns waivers newest first; activeOnly drops revoked and
// expired ones.
func (db *DB) ListWaivers(activeOnly bool) ([]model.Waiver, error) {
	q := `
SELECT id, rule_id, COALESCE(class,''), COALESCE(subject,''), COALESCE(pattern,''),
       reason, expires_at, created_by, created_at, revoked_at
FROM waivers`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Waiver{}
	for rows.Next() {
		var (
			w       model.Waiver
			exp, ca string
			revoked sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.RuleID, &w.Class, &w.Subject, &w.Pattern, &w.Reason, &exp, &w.CreatedBy, &ca, &revoked); err != nil {
			return nil, err
		}
		w.ExpiresAt, w.CreatedAt = parseTime(exp), parseTime(ca)
		if revoked.Valid {
			t := parseTime(revoked.String)
			w.RevokedAt = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func nz(s string) any {
	if s == "" {
		return nil
	}
	return s
}
