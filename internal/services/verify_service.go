package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"washops/internal/domain"
	"washops/internal/metrics"
	"washops/internal/utils"
)

const defaultHistoryCap = 50

// VerifyService resolves payment, loyalty, and POS references against the
// ledger and keeps the bounded most-recent-first history of attempts.
type VerifyService struct {
	Ledger    Ledger
	Audit     AuditStore
	Recorder  metrics.Recorder
	RequestID string

	// HistoryCap bounds the in-memory history; zero means the default.
	HistoryCap int

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time

	mu      sync.Mutex
	history []domain.VerificationRecord
}

// Verify resolves one reference. Outcomes ok and already_redeemed both come
// back as records (already_redeemed is success-shaped but terminal); invalid
// returns InvalidReferenceError; transport failures return UpstreamError and
// may be retried without consuming the reference.
func (s *VerifyService) Verify(ctx context.Context, reference string, kind domain.ReferenceKind) (domain.VerificationRecord, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.VerificationRecord{}, domain.ValidationError{Field: "reference", Msg: "must not be empty"}
	}
	if !domain.ValidKind(kind) {
		return domain.VerificationRecord{}, domain.ValidationError{Field: "kind", Msg: "must be payment, loyalty, or pos"}
	}

	res, err := s.Ledger.VerifyReference(ctx, reference, kind)
	if err != nil {
		utils.LogEvent(s.RequestID, "verify", "lookup",
			"ledger failure for "+utils.MaskReference(reference)+": "+err.Error())
		return domain.VerificationRecord{}, err
	}

	rec := domain.VerificationRecord{
		Reference:  reference,
		Kind:       kind,
		Form:       domain.ClassifyReference(reference, kind),
		Outcome:    res.Outcome,
		OrderID:    res.OrderID,
		PaymentPIN: res.PaymentPIN,
		At:         s.now(),
	}
	metrics.OrNop(s.Recorder).VerificationResult(string(kind), string(res.Outcome))

	switch res.Outcome {
	case domain.OutcomeOK, domain.OutcomeAlreadyRedeemed:
		s.remember(rec)
		return rec, nil
	case domain.OutcomeInvalid:
		return rec, domain.InvalidReferenceError{Reference: reference}
	default:
		return domain.VerificationRecord{}, domain.UpstreamError{Op: "verify reference"}
	}
}

// Recent returns a copy of the history, most recent first.
func (s *VerifyService) Recent() []domain.VerificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.VerificationRecord, len(s.history))
	copy(out, s.history)
	return out
}

// remember prepends the record to the bounded history and writes the audit
// copy. Audit failures are warnings, never verification failures.
func (s *VerifyService) remember(rec domain.VerificationRecord) {
	s.mu.Lock()
	limit := s.HistoryCap
	if limit <= 0 {
		limit = defaultHistoryCap
	}
	s.history = append([]domain.VerificationRecord{rec}, s.history...)
	if len(s.history) > limit {
		s.history = s.history[:limit]
	}
	s.mu.Unlock()

	if s.Audit != nil {
		if err := s.Audit.Insert(rec); err != nil {
			utils.LogEvent(s.RequestID, "verify", "audit", "insert warning: "+err.Error())
		}
	}
}

func (s *VerifyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
