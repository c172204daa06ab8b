package services

import (
	"context"
	"sync"
	"time"

	"washops/internal/domain"
	"washops/internal/upstream"
)

// fakeLedger substitutes the wash-ledger boundary. Unset hooks return empty
// success values. Call counts are tracked per operation.
type fakeLedger struct {
	mu    sync.Mutex
	calls map[string]int

	verifyFn func(reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error)
	startFn  func(orderID, vehicleID string) error
	endFn    func(orderID string) (upstream.EndResult, error)
	activeFn func() ([]domain.Order, error)
	detailFn func(orderID string) (upstream.OrderDetail, error)
	createFn func(userID, registration, make, model string) (domain.Vehicle, error)
}

func (f *fakeLedger) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeLedger) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeLedger) VerifyReference(ctx context.Context, reference string, kind domain.ReferenceKind) (upstream.VerifyResult, error) {
	f.count("verify")
	if f.verifyFn != nil {
		return f.verifyFn(reference, kind)
	}
	return upstream.VerifyResult{OrderID: "ord-1", Outcome: domain.OutcomeOK}, nil
}

func (f *fakeLedger) StartWash(ctx context.Context, orderID, vehicleID string) error {
	f.count("start")
	if f.startFn != nil {
		return f.startFn(orderID, vehicleID)
	}
	return nil
}

func (f *fakeLedger) EndWash(ctx context.Context, orderID string) (upstream.EndResult, error) {
	f.count("end")
	if f.endFn != nil {
		return f.endFn(orderID)
	}
	return upstream.EndResult{EndedAt: time.Now()}, nil
}

func (f *fakeLedger) ListActive(ctx context.Context) ([]domain.Order, error) {
	f.count("active")
	if f.activeFn != nil {
		return f.activeFn()
	}
	return nil, nil
}

func (f *fakeLedger) ListHistory(ctx context.Context, hf upstream.HistoryFilter) (upstream.HistoryPage, error) {
	f.count("history")
	return upstream.HistoryPage{}, nil
}

func (f *fakeLedger) FetchOrderDetail(ctx context.Context, orderID string) (upstream.OrderDetail, error) {
	f.count("detail")
	if f.detailFn != nil {
		return f.detailFn(orderID)
	}
	return upstream.OrderDetail{
		User:     domain.User{ID: "usr-1", FirstName: "Dana", LastName: "Cole"},
		Vehicles: []domain.Vehicle{{ID: "veh-1", Registration: "AB12CDE"}},
	}, nil
}

func (f *fakeLedger) CreateVehicle(ctx context.Context, userID, registration, make, model string) (domain.Vehicle, error) {
	f.count("create_vehicle")
	if f.createFn != nil {
		return f.createFn(userID, registration, make, model)
	}
	return domain.Vehicle{ID: "veh-new", Registration: registration, Make: make, Model: model}, nil
}

func timePtr(t time.Time) *time.Time { return &t }
