package repositories

import (
	"testing"
	"time"

	"washops/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestVerificationInsertMasksReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO verification_audit").
		WithArgs("4**1", "payment", "pin", "ok", "ord-77", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := VerificationRepository{DB: db}
	err = repo.Insert(domain.VerificationRecord{
		Reference: "4471",
		Kind:      domain.KindPayment,
		Form:      domain.FormPIN,
		Outcome:   domain.OutcomeOK,
		OrderID:   "ord-77",
		At:        at,
	})
	if err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerificationRecentOrdering(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	newer := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-5 * time.Minute)

	rows := sqlmock.NewRows([]string{"reference_masked", "kind", "form", "outcome", "order_id", "attempted_at"}).
		AddRow("4**1", "payment", "pin", "ok", "ord-77", newer).
		AddRow("R*****2", "pos", "receipt", "invalid", "", older)
	mock.ExpectQuery("SELECT(.+)FROM verification_audit").
		WithArgs(50).
		WillReturnRows(rows)

	repo := VerificationRepository{DB: db}
	got, err := repo.Recent(0) // out-of-range limit falls back to 50
	if err != nil {
		t.Fatalf("recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].OrderID != "ord-77" || got[0].Outcome != domain.OutcomeOK {
		t.Fatalf("newest record mismatch: %+v", got[0])
	}
	if got[1].Kind != domain.KindPOS || got[1].Outcome != domain.OutcomeInvalid {
		t.Fatalf("older record mismatch: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
