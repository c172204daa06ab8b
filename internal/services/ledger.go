package services

import (
	"context"

	"washops/internal/domain"
	"washops/internal/upstream"
)

// Ledger is the slice of the wash-ledger boundary the engine consumes.
// *upstream.Client satisfies it; tests substitute fakes.
type Ledger interface {
	VerifyReference(ctx context.Context, reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error)
	StartWash(ctx context.Context, orderID, vehicleID string) error
	EndWash(ctx context.Context, orderID string) (upstream.EndResult, error)
	ListActive(ctx context.Context) ([]domain.Order, error)
	ListHistory(ctx context.Context, f upstream.HistoryFilter) (upstream.HistoryPage, error)
	FetchOrderDetail(ctx context.Context, orderID string) (upstream.OrderDetail, error)
	CreateVehicle(ctx context.Context, userID, registration, make, model string) (domain.Vehicle, error)
}

// AuditStore receives the durable copy of verification attempts. Optional;
// a nil store means the console keeps only the in-memory history.
type AuditStore interface {
	Insert(rec domain.VerificationRecord) error
}
