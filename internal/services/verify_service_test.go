package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"washops/internal/domain"
	"washops/internal/upstream"
)

func TestVerifyAtMostOneRedemption(t *testing.T) {
	redeemed := map[string]bool{}
	ledger := &fakeLedger{
		verifyFn: func(reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error) {
			if redeemed[reference] {
				return upstream.VerifyResult{OrderID: "ord-9", Outcome: domain.OutcomeAlreadyRedeemed}, nil
			}
			redeemed[reference] = true
			return upstream.VerifyResult{OrderID: "ord-9", Outcome: domain.OutcomeOK}, nil
		},
	}
	svc := &VerifyService{Ledger: ledger}

	first, err := svc.Verify(context.Background(), "7741", domain.KindPayment)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if first.Outcome != domain.OutcomeOK {
		t.Fatalf("first outcome = %s, want ok", first.Outcome)
	}

	// replaying the identical reference must never yield ok again
	second, err := svc.Verify(context.Background(), "7741", domain.KindPayment)
	if err != nil {
		t.Fatalf("already_redeemed is success-shaped, got error %v", err)
	}
	if second.Outcome != domain.OutcomeAlreadyRedeemed {
		t.Fatalf("second outcome = %s, want already_redeemed", second.Outcome)
	}

	history := svc.Recent()
	if len(history) != 2 {
		t.Fatalf("both attempts should land in history, got %d", len(history))
	}
	if history[0].Outcome != domain.OutcomeAlreadyRedeemed {
		t.Fatalf("history should be most recent first, got %s", history[0].Outcome)
	}
}

func TestVerifyInvalidIsTerminalAndUnrecorded(t *testing.T) {
	ledger := &fakeLedger{
		verifyFn: func(reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error) {
			return upstream.VerifyResult{Outcome: domain.OutcomeInvalid}, nil
		},
	}
	svc := &VerifyService{Ledger: ledger}

	rec, err := svc.Verify(context.Background(), "BAD-REF-123", domain.KindLoyalty)
	if !domain.IsInvalidReference(err) {
		t.Fatalf("expected invalid-reference error, got %v", err)
	}
	if rec.Outcome != domain.OutcomeInvalid {
		t.Fatalf("record should still carry the outcome, got %s", rec.Outcome)
	}
	if len(svc.Recent()) != 0 {
		t.Fatalf("invalid attempts must not enter the history")
	}
}

func TestVerifyUpstreamFailureIsRetriable(t *testing.T) {
	boom := true
	ledger := &fakeLedger{
		verifyFn: func(reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error) {
			if boom {
				boom = false
				return upstream.VerifyResult{}, domain.UpstreamError{Op: "verify", Err: errors.New("timeout")}
			}
			return upstream.VerifyResult{OrderID: "ord-2", Outcome: domain.OutcomeOK}, nil
		},
	}
	svc := &VerifyService{Ledger: ledger}

	if _, err := svc.Verify(context.Background(), "5520", domain.KindPayment); !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(svc.Recent()) != 0 {
		t.Fatalf("failed attempt must not enter the history")
	}

	rec, err := svc.Verify(context.Background(), "5520", domain.KindPayment)
	if err != nil || rec.Outcome != domain.OutcomeOK {
		t.Fatalf("retry after failure should succeed, got %v / %v", rec, err)
	}
}

func TestVerifyHistoryBounded(t *testing.T) {
	ledger := &fakeLedger{}
	svc := &VerifyService{Ledger: ledger, HistoryCap: 3}

	for i := 0; i < 5; i++ {
		ref := fmt.Sprintf("90%02d", i)
		if _, err := svc.Verify(context.Background(), ref, domain.KindPayment); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}

	history := svc.Recent()
	if len(history) != 3 {
		t.Fatalf("history should be capped at 3, got %d", len(history))
	}
	if history[0].Reference != "9004" {
		t.Fatalf("newest attempt should be first, got %s", history[0].Reference)
	}
}

type failingAudit struct{}

func (failingAudit) Insert(rec domain.VerificationRecord) error {
	return errors.New("audit store down")
}

func TestVerifyAuditFailureIsWarningOnly(t *testing.T) {
	svc := &VerifyService{Ledger: &fakeLedger{}, Audit: failingAudit{}}

	rec, err := svc.Verify(context.Background(), "3318", domain.KindPayment)
	if err != nil {
		t.Fatalf("audit failure must not fail verification: %v", err)
	}
	if rec.Outcome != domain.OutcomeOK {
		t.Fatalf("outcome = %s, want ok", rec.Outcome)
	}
	if len(svc.Recent()) != 1 {
		t.Fatalf("record should still enter the in-memory history")
	}
}

func TestVerifyRejectsBadInput(t *testing.T) {
	svc := &VerifyService{Ledger: &fakeLedger{}}

	if _, err := svc.Verify(context.Background(), "   ", domain.KindPayment); !domain.IsValidation(err) {
		t.Fatalf("blank reference should be a validation error, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "1234", domain.ReferenceKind("giftcard")); !domain.IsValidation(err) {
		t.Fatalf("unknown kind should be a validation error, got %v", err)
	}
}
