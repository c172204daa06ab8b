package repositories

import (
	"database/sql"

	"washops/internal/config"
	"washops/internal/domain"
	"washops/internal/utils"
)

// VerificationRepository persists the audit trail of verification attempts.
// The in-memory recent-history list stays authoritative for the console UI;
// this table is the durable supplement for tenant audits. References are
// stored masked so PINs never land in the database verbatim.
type VerificationRepository struct {
	DB *sql.DB
}

func (r VerificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// Insert appends one verification attempt. Callers treat failures as
// warnings; an audit miss must never fail the verification itself.
func (r VerificationRepository) Insert(rec domain.VerificationRecord) error {
	db := r.db()
	if db == nil {
		return sql.ErrConnDone
	}
	_, err := db.Exec(`
		INSERT INTO verification_audit
			(reference_masked, kind, form, outcome, order_id, attempted_at)
		VALUES (?, ?, ?, ?, NULLIF(?,''), ?)`,
		utils.MaskReference(rec.Reference),
		string(rec.Kind),
		string(rec.Form),
		string(rec.Outcome),
		rec.OrderID,
		rec.At,
	)
	return err
}

// Recent loads the newest attempts, most recent first.
func (r VerificationRepository) Recent(limit int) ([]domain.VerificationRecord, error) {
	db := r.db()
	if db == nil {
		return nil, sql.ErrConnDone
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT
			reference_masked,
			kind,
			form,
			outcome,
			COALESCE(order_id,''),
			attempted_at
		FROM verification_audit
		ORDER BY attempted_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.VerificationRecord{}
	for rows.Next() {
		var rec domain.VerificationRecord
		var kind, form, outcome string
		if err := rows.Scan(&rec.Reference, &kind, &form, &outcome, &rec.OrderID, &rec.At); err != nil {
			return nil, err
		}
		rec.Kind = domain.ReferenceKind(kind)
		rec.Form = domain.ReferenceForm(form)
		rec.Outcome = domain.VerifyOutcome(outcome)
		out = append(out, rec)
	}
	return out, rows.Err()
}
