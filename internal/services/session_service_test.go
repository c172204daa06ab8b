package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"washops/internal/domain"
	"washops/internal/upstream"
)

type fakeRegistry struct {
	mu          sync.Mutex
	invalidated int
}

func (f *fakeRegistry) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

func (f *fakeRegistry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

func okRecord() domain.VerificationRecord {
	return domain.VerificationRecord{
		Reference: "7741",
		Kind:      domain.KindPayment,
		Outcome:   domain.OutcomeOK,
		OrderID:   "ord-1",
		At:        time.Now(),
	}
}

func beginVerified(t *testing.T, svc *SessionService) {
	t.Helper()
	if err := svc.Begin(context.Background(), okRecord()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := svc.View().State; got != domain.StateVerified {
		t.Fatalf("state after begin = %s, want verified", got)
	}
}

func TestBeginLoadsCustomerAndVehicles(t *testing.T) {
	svc := &SessionService{Ledger: &fakeLedger{}, Registry: &fakeRegistry{}}
	beginVerified(t, svc)

	view := svc.View()
	if view.Customer == nil || view.Customer.ID != "usr-1" {
		t.Fatalf("customer not loaded: %+v", view.Customer)
	}
	if len(view.Vehicles) != 1 {
		t.Fatalf("expected 1 candidate vehicle, got %d", len(view.Vehicles))
	}
}

func TestBeginWithNoVehiclesAwaitsVehicle(t *testing.T) {
	ledger := &fakeLedger{
		detailFn: func(orderID string) (upstream.OrderDetail, error) {
			return upstream.OrderDetail{User: domain.User{ID: "usr-2"}}, nil
		},
	}
	svc := &SessionService{Ledger: ledger}

	if err := svc.Begin(context.Background(), okRecord()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := svc.View().State; got != domain.StateAwaitingVehicle {
		t.Fatalf("state = %s, want awaiting_vehicle", got)
	}

	// start is not enabled until a vehicle exists
	if err := svc.Start(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("start without vehicle should be rejected, got %v", err)
	}

	if _, err := svc.AddVehicle(context.Background(), "ZX99YYY", "Toyota", "Yaris"); err != nil {
		t.Fatalf("add vehicle: %v", err)
	}
	view := svc.View()
	if view.State != domain.StateVerified {
		t.Fatalf("state after add vehicle = %s, want verified", view.State)
	}
	if view.Selected == nil || view.Selected.Registration != "ZX99YYY" {
		t.Fatalf("new vehicle should be auto-selected, got %+v", view.Selected)
	}
}

func TestBeginFailureRetainsNoPartialState(t *testing.T) {
	ledger := &fakeLedger{
		detailFn: func(orderID string) (upstream.OrderDetail, error) {
			return upstream.OrderDetail{}, domain.UpstreamError{Op: "order detail", Err: errors.New("down")}
		},
	}
	svc := &SessionService{Ledger: ledger}

	if err := svc.Begin(context.Background(), okRecord()); !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	view := svc.View()
	if view.State != domain.StateIdle || view.Order != nil || view.Customer != nil {
		t.Fatalf("failed begin must leave no partial state: %+v", view)
	}
}

func TestSelectVehicleOnlyWhenVerified(t *testing.T) {
	svc := &SessionService{Ledger: &fakeLedger{}}

	if err := svc.SelectVehicle("veh-1"); !domain.IsInvalidTransition(err) {
		t.Fatalf("select in idle should be rejected, got %v", err)
	}

	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-unknown"); !domain.IsNotFound(err) {
		t.Fatalf("unknown vehicle should be not-found, got %v", err)
	}
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
}

func TestNoConcurrentStart(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ledger := &fakeLedger{
		startFn: func(orderID, vehicleID string) error {
			close(entered)
			<-release
			return nil
		},
	}
	reg := &fakeRegistry{}
	svc := &SessionService{Ledger: ledger, Registry: reg}
	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- svc.Start(context.Background()) }()
	<-entered

	// second start while the first is in flight is rejected, not queued
	if err := svc.Start(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("second start should be invalid transition, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first start should succeed: %v", err)
	}
	if got := svc.View().State; got != domain.StateStarted {
		t.Fatalf("state = %s, want started", got)
	}
	if ledger.callCount("start") != 1 {
		t.Fatalf("exactly one start call should reach the ledger, got %d", ledger.callCount("start"))
	}
	if reg.count() != 1 {
		t.Fatalf("confirmed start should invalidate the registry once, got %d", reg.count())
	}
}

func TestFailedStartReturnsToVerified(t *testing.T) {
	ledger := &fakeLedger{
		startFn: func(orderID, vehicleID string) error {
			return domain.UpstreamError{Op: "start wash", Err: errors.New("502")}
		},
	}
	svc := &SessionService{Ledger: ledger}
	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := svc.Start(context.Background()); !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if got := svc.View().State; got != domain.StateVerified {
		t.Fatalf("failed start must return to verified, got %s", got)
	}
}

func TestIdempotentEnd(t *testing.T) {
	endCalls := 0
	ledger := &fakeLedger{
		endFn: func(orderID string) (upstream.EndResult, error) {
			endCalls++
			if endCalls > 1 {
				return upstream.EndResult{AlreadyCompleted: true, EndedAt: time.Now()}, nil
			}
			return upstream.EndResult{EndedAt: time.Now(), DurationSeconds: 1500}, nil
		},
	}
	reg := &fakeRegistry{}
	svc := &SessionService{Ledger: ledger, Registry: reg}
	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	first, err := svc.End(context.Background())
	if err != nil {
		t.Fatalf("first end: %v", err)
	}
	if first.AlreadyCompleted {
		t.Fatalf("first end should be a fresh completion")
	}
	if got := svc.View().State; got != domain.StateEnded {
		t.Fatalf("state = %s, want ended", got)
	}
	if view := svc.View(); view.Order.EndedAt == nil {
		t.Fatalf("ended_at should be recorded")
	}

	// ending an already-ended order is success, never an error
	if err := svc.Abandon(); err != nil {
		t.Fatalf("abandon after ended: %v", err)
	}
	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	second, err := svc.End(context.Background())
	if err != nil {
		t.Fatalf("second end must not error: %v", err)
	}
	if !second.AlreadyCompleted {
		t.Fatalf("second end should report already_completed")
	}
}

func TestEndOnlyFromStarted(t *testing.T) {
	svc := &SessionService{Ledger: &fakeLedger{}}
	if _, err := svc.End(context.Background()); !domain.IsInvalidTransition(err) {
		t.Fatalf("end from idle should be rejected, got %v", err)
	}
}

func TestAbandonRules(t *testing.T) {
	svc := &SessionService{Ledger: &fakeLedger{}}

	if err := svc.Abandon(); !domain.IsInvalidTransition(err) {
		t.Fatalf("abandon from idle should be rejected, got %v", err)
	}

	beginVerified(t, svc)
	if err := svc.Abandon(); err != nil {
		t.Fatalf("abandon from verified: %v", err)
	}
	if got := svc.View().State; got != domain.StateIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

func TestEveryTransitionNotified(t *testing.T) {
	svc := &SessionService{Ledger: &fakeLedger{}, Registry: &fakeRegistry{}}
	var transitions []domain.Transition
	svc.Subscribe(func(tr domain.Transition) { transitions = append(transitions, tr) })

	beginVerified(t, svc)
	if err := svc.SelectVehicle("veh-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	want := []domain.SessionState{
		domain.StateVerifying,
		domain.StateVerified,
		domain.StateStarting,
		domain.StateStarted,
		domain.StateEnding,
		domain.StateEnded,
	}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %+v", len(want), len(transitions), transitions)
	}
	for i, state := range want {
		if transitions[i].To != state {
			t.Fatalf("transition %d = %s, want %s", i, transitions[i].To, state)
		}
	}
}
