// Package upstream is the HTTP client for the wash-ledger server. The ledger
// owns every order record; the console only calls these boundary operations.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"washops/internal/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// VerifyResult is the ledger's answer to a verification attempt.
type VerifyResult struct {
	OrderID    string               `json:"order_id"`
	PaymentPIN string               `json:"payment_pin,omitempty"`
	Outcome    domain.VerifyOutcome `json:"outcome"`
}

// VerifyReference resolves a reference into an order. The outcome field
// carries ok/already_redeemed/invalid; transport and server errors surface as
// domain.UpstreamError so callers can retry without consuming the reference.
func (c *Client) VerifyReference(ctx context.Context, reference string, kind domain.ReferenceKind) (VerifyResult, error) {
	payload := map[string]string{
		"reference": reference,
		"kind":      string(kind),
		"form":      string(domain.ClassifyReference(reference, kind)),
	}
	var out VerifyResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/verifications", payload, &out); err != nil {
		return VerifyResult{}, err
	}
	return out, nil
}

// StartWash binds a vehicle and moves the order to started. The ledger
// rejects vehicle ids that do not belong to the order's customer.
func (c *Client) StartWash(ctx context.Context, orderID, vehicleID string) error {
	payload := map[string]string{"order_id": orderID, "vehicle_id": vehicleID}
	var out struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/washes/start", payload, &out); err != nil {
		return err
	}
	if out.Status != domain.OrderStarted {
		return domain.UpstreamError{Op: "start wash", Err: fmt.Errorf("unexpected status %q", out.Status)}
	}
	return nil
}

// EndResult reports a wash end. AlreadyCompleted means the ledger had closed
// the order before this call; callers treat that as success.
type EndResult struct {
	AlreadyCompleted bool
	EndedAt          time.Time
	DurationSeconds  int64
}

func (c *Client) EndWash(ctx context.Context, orderID string) (EndResult, error) {
	payload := map[string]string{"order_id": orderID}
	var out struct {
		Status          string    `json:"status"`
		EndedAt         time.Time `json:"ended_at"`
		DurationSeconds int64     `json:"duration_seconds,omitempty"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/washes/end", payload, &out); err != nil {
		return EndResult{}, err
	}
	switch out.Status {
	case "ended":
		return EndResult{EndedAt: out.EndedAt, DurationSeconds: out.DurationSeconds}, nil
	case "already_completed":
		return EndResult{AlreadyCompleted: true, EndedAt: out.EndedAt, DurationSeconds: out.DurationSeconds}, nil
	default:
		return EndResult{}, domain.UpstreamError{Op: "end wash", Err: fmt.Errorf("unexpected status %q", out.Status)}
	}
}

// ListActive fetches every order currently in the started state, with user
// and vehicle embedded.
func (c *Client) ListActive(ctx context.Context) ([]domain.Order, error) {
	var out struct {
		Items []domain.Order `json:"items"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/washes/active", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// HistoryFilter narrows the paginated wash-history feed.
type HistoryFilter struct {
	StartDate   string
	EndDate     string
	Status      string
	ServiceType string
	Customer    string
	PaymentType string
	Page        int
	Limit       int
}

// HistoryPage is one page of the wash-history feed.
type HistoryPage struct {
	Items []domain.Order `json:"items"`
	Total int            `json:"total"`
}

func (c *Client) ListHistory(ctx context.Context, f HistoryFilter) (HistoryPage, error) {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	set("status", f.Status)
	set("service_type", f.ServiceType)
	set("customer", f.Customer)
	set("payment_type", f.PaymentType)
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	path := "/api/v1/washes/history"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out HistoryPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return HistoryPage{}, err
	}
	return out, nil
}

// OrderDetail carries the customer and candidate vehicles for the vehicle
// selection step.
type OrderDetail struct {
	User     domain.User      `json:"user"`
	Vehicles []domain.Vehicle `json:"vehicles"`
}

func (c *Client) FetchOrderDetail(ctx context.Context, orderID string) (OrderDetail, error) {
	var out OrderDetail
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return OrderDetail{}, err
	}
	return out, nil
}

// CreateVehicle registers a vehicle for a customer who has none on file.
func (c *Client) CreateVehicle(ctx context.Context, userID, registration, make, model string) (domain.Vehicle, error) {
	payload := map[string]string{
		"user_id":      userID,
		"registration": registration,
		"make":         make,
		"model":        model,
	}
	var out domain.Vehicle
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/vehicles", payload, &out); err != nil {
		return domain.Vehicle{}, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.UpstreamError{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.UpstreamError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NotFoundError{Resource: "order"}
	case resp.StatusCode == http.StatusBadRequest:
		return domain.ValidationError{Msg: readErrorMessage(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.UpstreamError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.UpstreamError{Op: op, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.UpstreamError{Op: op, Err: err}
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "request rejected"
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "request rejected"
}
