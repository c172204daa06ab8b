package domain

import "time"

// OrderStatus is the server-owned lifecycle position of an order.
type OrderStatus string

const (
	OrderCreated  OrderStatus = "created"
	OrderVerified OrderStatus = "verified"
	OrderStarted  OrderStatus = "started"
	OrderEnded    OrderStatus = "ended"
)

// Order is the unit of purchase tracked from payment through wash completion.
// The ledger server owns the record; the console only reads it and advances
// its status via the boundary operations.
type Order struct {
	ID          string      `json:"order_id"`
	Status      OrderStatus `json:"status"`
	PaymentPIN  string      `json:"payment_pin,omitempty"`
	ServiceName string      `json:"service_name"`
	Amount      int64       `json:"amount"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	EndedAt     *time.Time  `json:"ended_at,omitempty"`

	// Embedded on active-wash listings; weak references otherwise.
	User    *User    `json:"user,omitempty"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

// Completed reports whether the order finished with both timestamps present.
func (o Order) Completed() bool {
	return o.Status == OrderEnded && o.StartedAt != nil && o.EndedAt != nil
}

// User is the customer an order belongs to. Looked up by id, never owned.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Vehicle is a customer vehicle; exactly one is bound when a wash starts.
type Vehicle struct {
	ID           string `json:"id"`
	Registration string `json:"registration"`
	Make         string `json:"make"`
	Model        string `json:"model"`
}

// DurationClass buckets an active wash by elapsed time.
type DurationClass string

const (
	DurationNormal   DurationClass = "normal"
	DurationWarning  DurationClass = "warning"
	DurationCritical DurationClass = "critical"
)

// LongRunningThreshold flags active washes that likely need attention.
const LongRunningThreshold = time.Hour

// ClassifyDuration maps elapsed wash time onto a duration class.
// Boundaries are inclusive-exclusive: exactly 30m is warning, exactly 60m
// is critical.
func ClassifyDuration(elapsed time.Duration) DurationClass {
	switch {
	case elapsed < 30*time.Minute:
		return DurationNormal
	case elapsed < 60*time.Minute:
		return DurationWarning
	default:
		return DurationCritical
	}
}
