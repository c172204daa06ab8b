package domain

// SessionState is the operator session's position in the wash workflow.
type SessionState string

const (
	StateIdle            SessionState = "idle"
	StateVerifying       SessionState = "verifying"
	StateVerified        SessionState = "verified"
	StateAwaitingVehicle SessionState = "awaiting_vehicle"
	StateStarting        SessionState = "starting"
	StateStarted         SessionState = "started"
	StateEnding          SessionState = "ending"
	StateEnded           SessionState = "ended"
)

// Transition is emitted on every session state change. No transition is
// dropped; listeners are called synchronously in subscription order.
type Transition struct {
	From    SessionState `json:"from"`
	To      SessionState `json:"to"`
	OrderID string       `json:"order_id,omitempty"`
}
