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

// Invalidator is the registry hook the session pokes after a confirmed
// start or end.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// SessionService is the operator's wash-session state machine:
//
//	Idle -> Verifying -> Verified/AwaitingVehicle -> Starting -> Started
//	     -> Ending -> Ended
//
// At most one start and one end can be in flight; a second call while one is
// outstanding is rejected with InvalidTransition, not queued. A failed
// upstream call returns the machine to the state it left, never forward.
type SessionService struct {
	Ledger    Ledger
	Registry  Invalidator
	Recorder  metrics.Recorder
	RequestID string

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	state     domain.SessionState
	order     *domain.Order
	customer  *domain.User
	vehicles  []domain.Vehicle
	selected  *domain.Vehicle
	listeners []func(domain.Transition)
}

// SessionView is a consistent snapshot of the machine for the console.
type SessionView struct {
	State    domain.SessionState `json:"state"`
	Order    *domain.Order       `json:"order,omitempty"`
	Customer *domain.User        `json:"customer,omitempty"`
	Vehicles []domain.Vehicle    `json:"vehicles"`
	Selected *domain.Vehicle     `json:"selected_vehicle,omitempty"`
}

// Subscribe registers a transition listener. Every transition is delivered;
// none is dropped.
func (s *SessionService) Subscribe(fn func(domain.Transition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Begin binds a freshly verified order to the session and loads the customer
// and candidate vehicles. Only an outcome=ok record can begin a session.
func (s *SessionService) Begin(ctx context.Context, rec domain.VerificationRecord) error {
	if rec.Outcome != domain.OutcomeOK {
		return domain.ValidationError{Field: "outcome", Msg: "only a fresh ok verification can begin a session"}
	}

	s.mu.Lock()
	if s.currentState() != domain.StateIdle {
		state := s.currentState()
		s.mu.Unlock()
		return domain.InvalidTransitionError{State: state, Action: "begin"}
	}
	s.setStateLocked(domain.StateVerifying, rec.OrderID)
	s.mu.Unlock()

	detail, err := s.Ledger.FetchOrderDetail(ctx, rec.OrderID)

	s.mu.Lock()
	if err != nil {
		// no partial state is retained on a failed verification step
		s.resetLocked()
		s.setStateLocked(domain.StateIdle, rec.OrderID)
		s.mu.Unlock()
		return err
	}

	s.order = &domain.Order{
		ID:         rec.OrderID,
		Status:     domain.OrderVerified,
		PaymentPIN: rec.PaymentPIN,
		CreatedAt:  rec.At,
	}
	s.customer = &detail.User
	s.vehicles = detail.Vehicles
	s.selected = nil

	next := domain.StateVerified
	if len(detail.Vehicles) == 0 {
		// customer has no vehicle on file; one must be created before start
		next = domain.StateAwaitingVehicle
	}
	s.setStateLocked(next, rec.OrderID)
	s.mu.Unlock()

	utils.LogEvent(s.RequestID, "session", "begin", "order_id="+rec.OrderID)
	return nil
}

// SelectVehicle binds one of the customer's known vehicles. The selection is
// client-trusted: no confirmation round trip happens here, the ledger
// revalidates the order/vehicle pair on start.
func (s *SessionService) SelectVehicle(vehicleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentState() != domain.StateVerified {
		return domain.InvalidTransitionError{State: s.currentState(), Action: "select vehicle"}
	}
	for i := range s.vehicles {
		if s.vehicles[i].ID == vehicleID {
			v := s.vehicles[i]
			s.selected = &v
			return nil
		}
	}
	return domain.NotFoundError{Resource: "vehicle"}
}

// AddVehicle registers a new vehicle for the bound customer and selects it,
// lifting an AwaitingVehicle session into Verified.
func (s *SessionService) AddVehicle(ctx context.Context, registration, vehicleMake, model string) (domain.Vehicle, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return domain.Vehicle{}, domain.ValidationError{Field: "registration", Msg: "must not be empty"}
	}

	s.mu.Lock()
	state := s.currentState()
	if state != domain.StateVerified && state != domain.StateAwaitingVehicle {
		s.mu.Unlock()
		return domain.Vehicle{}, domain.InvalidTransitionError{State: state, Action: "add vehicle"}
	}
	customer := s.customer
	orderID := s.order.ID
	s.mu.Unlock()

	vehicle, err := s.Ledger.CreateVehicle(ctx, customer.ID, registration, vehicleMake, model)
	if err != nil {
		return domain.Vehicle{}, err
	}

	s.mu.Lock()
	// session may have been abandoned while the create was in flight
	if s.order == nil || s.order.ID != orderID {
		s.mu.Unlock()
		return vehicle, nil
	}
	s.vehicles = append(s.vehicles, vehicle)
	v := vehicle
	s.selected = &v
	if s.currentState() == domain.StateAwaitingVehicle {
		s.setStateLocked(domain.StateVerified, orderID)
	}
	s.mu.Unlock()

	return vehicle, nil
}

// Start moves the session through Starting to Started. Legal only from
// Verified with a vehicle selected; a concurrent second call sees Starting
// and is rejected.
func (s *SessionService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.currentState() != domain.StateVerified {
		state := s.currentState()
		s.mu.Unlock()
		return domain.InvalidTransitionError{State: state, Action: "start"}
	}
	if s.selected == nil {
		s.mu.Unlock()
		return domain.InvalidTransitionError{State: domain.StateVerified, Action: "start without vehicle"}
	}
	orderID := s.order.ID
	vehicleID := s.selected.ID
	s.setStateLocked(domain.StateStarting, orderID)
	s.mu.Unlock()

	err := s.Ledger.StartWash(ctx, orderID, vehicleID)

	s.mu.Lock()
	if err != nil {
		// failed start returns to Verified, never forward
		s.setStateLocked(domain.StateVerified, orderID)
		s.mu.Unlock()
		return err
	}
	now := s.now()
	s.order.Status = domain.OrderStarted
	s.order.StartedAt = &now
	vehicle := *s.selected
	s.order.Vehicle = &vehicle
	s.setStateLocked(domain.StateStarted, orderID)
	s.mu.Unlock()

	metrics.OrNop(s.Recorder).WashStarted()
	utils.LogEvent(s.RequestID, "session", "start", "order_id="+orderID)
	s.invalidateRegistry(ctx)
	return nil
}

// EndOutcome reports how a wash ended.
type EndOutcome struct {
	AlreadyCompleted bool      `json:"already_completed"`
	EndedAt          time.Time `json:"ended_at"`
	DurationSeconds  int64     `json:"duration_seconds,omitempty"`
}

// End moves the session through Ending to Ended. An order the ledger reports
// as already completed ends successfully; the server is the source of truth
// for idempotent completion.
func (s *SessionService) End(ctx context.Context) (EndOutcome, error) {
	s.mu.Lock()
	if s.currentState() != domain.StateStarted {
		state := s.currentState()
		s.mu.Unlock()
		return EndOutcome{}, domain.InvalidTransitionError{State: state, Action: "end"}
	}
	orderID := s.order.ID
	s.setStateLocked(domain.StateEnding, orderID)
	s.mu.Unlock()

	res, err := s.Ledger.EndWash(ctx, orderID)

	s.mu.Lock()
	if err != nil {
		s.setStateLocked(domain.StateStarted, orderID)
		s.mu.Unlock()
		return EndOutcome{}, err
	}
	endedAt := res.EndedAt
	if endedAt.IsZero() {
		endedAt = s.now()
	}
	s.order.Status = domain.OrderEnded
	s.order.EndedAt = &endedAt
	s.setStateLocked(domain.StateEnded, orderID)
	s.mu.Unlock()

	metrics.OrNop(s.Recorder).WashEnded()
	utils.LogEvent(s.RequestID, "session", "end", "order_id="+orderID)
	s.invalidateRegistry(ctx)

	return EndOutcome{
		AlreadyCompleted: res.AlreadyCompleted,
		EndedAt:          endedAt,
		DurationSeconds:  res.DurationSeconds,
	}, nil
}

// Abandon explicitly returns the session to Idle. Legal from Verified,
// AwaitingVehicle, and Ended; a wash in flight cannot be abandoned.
func (s *SessionService) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.currentState()
	switch state {
	case domain.StateVerified, domain.StateAwaitingVehicle, domain.StateEnded:
		orderID := ""
		if s.order != nil {
			orderID = s.order.ID
		}
		s.resetLocked()
		s.setStateLocked(domain.StateIdle, orderID)
		return nil
	default:
		return domain.InvalidTransitionError{State: state, Action: "abandon"}
	}
}

// View returns a consistent snapshot for the console.
func (s *SessionService) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SessionView{
		State:    s.currentState(),
		Vehicles: make([]domain.Vehicle, len(s.vehicles)),
	}
	copy(view.Vehicles, s.vehicles)
	if s.order != nil {
		o := *s.order
		view.Order = &o
	}
	if s.customer != nil {
		u := *s.customer
		view.Customer = &u
	}
	if s.selected != nil {
		v := *s.selected
		view.Selected = &v
	}
	return view
}

func (s *SessionService) currentState() domain.SessionState {
	if s.state == "" {
		return domain.StateIdle
	}
	return s.state
}

// setStateLocked changes state and notifies listeners. Callers hold s.mu;
// listeners run synchronously so no transition is dropped or reordered.
func (s *SessionService) setStateLocked(to domain.SessionState, orderID string) {
	from := s.currentState()
	s.state = to
	tr := domain.Transition{From: from, To: to, OrderID: orderID}
	for _, fn := range s.listeners {
		fn(tr)
	}
}

func (s *SessionService) resetLocked() {
	s.order = nil
	s.customer = nil
	s.vehicles = nil
	s.selected = nil
}

func (s *SessionService) invalidateRegistry(ctx context.Context) {
	if s.Registry == nil {
		return
	}
	if err := s.Registry.Invalidate(ctx); err != nil {
		utils.LogEvent(s.RequestID, "session", "invalidate", "registry refresh warning: "+err.Error())
	}
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
