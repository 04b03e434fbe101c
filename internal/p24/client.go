// Package p24 implements the client side of the undocumented booking
// protocol: day discovery, per-day slot discovery and the best-effort
// hold/release pair used by diagnostic self-checks.
package p24

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// Client talks to the booking backend. It is stateless per call; all
// per-burst state (the terminal id) is supplied by the caller.
type Client struct {
	api string
	hc  *http.Client
	log *zap.Logger
}

// New creates a protocol client against the given API base URL.
func New(api string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		api: strings.TrimRight(api, "/"),
		hc:  &http.Client{Timeout: timeout},
		log: log,
	}
}

type freeDaysResponse struct {
	Status       int     `json:"status"`
	CalendarDays []int64 `json:"calendar_days"`
}

type freeTurnsResponse struct {
	Status int `json:"status"`
	Result []struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
		Turn int   `json:"workhour_turn_num"`
	} `json:"result"`
}

type suspendResponse struct {
	Status      int    `json:"status"`
	RequestCode string `json:"request_code"`
}

// ListOpenDays returns the calendar-day timestamps the backend reports as
// having any opening for the given (center, service). An empty list is a
// valid "no slots" result. A non-success backend status is also "no data";
// only transport failures and unparseable bodies are errors.
func (c *Client) ListOpenDays(ctx context.Context, center domain.Center, svc domain.Service, terminalID string) ([]int64, error) {
	if !center.Pollable(svc) {
		return nil, &domain.ValidationError{Field: "identifiers", Reason: "placeholder or empty center/service ids"}
	}

	form := c.baseForm(center, svc, terminalID)
	var out freeDaysResponse
	if err := c.post(ctx, "getFreeDays", form, &out); err != nil {
		return nil, err
	}
	if out.Status != 1 {
		c.log.Debug("getFreeDays non-success status",
			zap.Int("status", out.Status), zap.String("center", center.CenterID))
		return nil, nil
	}
	return out.CalendarDays, nil
}

// ListSlotsForDay returns the open turns for one calendar day. Callers are
// expected to have run FilterDays first so day is within the look-ahead
// window.
func (c *Client) ListSlotsForDay(ctx context.Context, center domain.Center, svc domain.Service, terminalID string, day time.Time) ([]domain.AppointmentSlot, error) {
	if !center.Pollable(svc) {
		return nil, &domain.ValidationError{Field: "identifiers", Reason: "placeholder or empty center/service ids"}
	}

	form := c.baseForm(center, svc, terminalID)
	form.Set("date", strconv.FormatInt(day.Unix(), 10))

	var out freeTurnsResponse
	if err := c.post(ctx, "getFreeTurns", form, &out); err != nil {
		return nil, err
	}
	if out.Status != 1 {
		return nil, nil
	}

	slots := make([]domain.AppointmentSlot, 0, len(out.Result))
	for _, r := range out.Result {
		slots = append(slots, domain.AppointmentSlot{
			From: time.Unix(r.From, 0).UTC(),
			To:   time.Unix(r.To, 0).UTC(),
			Turn: r.Turn,
		})
	}
	return slots, nil
}

// HoldSlot places a best-effort temporary hold on one slot and returns the
// reservation code needed to release it. Used only by diagnostic self-checks;
// completing a booking is out of scope.
func (c *Client) HoldSlot(ctx context.Context, center domain.Center, svc domain.Service, terminalID string, slot domain.AppointmentSlot) (string, error) {
	form := c.baseForm(center, svc, terminalID)
	form.Set("from", strconv.FormatInt(slot.From.Unix(), 10))
	form.Set("to", strconv.FormatInt(slot.To.Unix(), 10))

	var out suspendResponse
	if err := c.post(ctx, "suspend", form, &out); err != nil {
		return "", err
	}
	if out.Status != 1 || out.RequestCode == "" {
		return "", &domain.ProtocolError{Op: "suspend", Detail: fmt.Sprintf("status %d without request code", out.Status)}
	}
	return out.RequestCode, nil
}

// ReleaseHold releases a hold previously placed by HoldSlot.
func (c *Client) ReleaseHold(ctx context.Context, center domain.Center, requestCode string) error {
	form := url.Values{}
	form.Set("center_id", center.CenterID)
	form.Set("request_code", requestCode)

	var out suspendResponse
	if err := c.post(ctx, "unsuspend", form, &out); err != nil {
		return err
	}
	if out.Status != 1 {
		return &domain.ProtocolError{Op: "unsuspend", Detail: fmt.Sprintf("status %d", out.Status)}
	}
	return nil
}

func (c *Client) baseForm(center domain.Center, svc domain.Service, terminalID string) url.Values {
	form := url.Values{}
	form.Set("center_id", center.CenterID)
	form.Set("user_center_id", center.UserCenterID)
	form.Set("service_id", svc.ServiceID)
	form.Set("terminal_id", terminalID)
	return form
}

// post issues one form POST and decodes the JSON body into out. HTTP-level
// non-2xx responses are mapped to an empty body (zero-value out), matching the
// backend's habit of answering errors with its own status field anyway.
func (c *Client) post(ctx context.Context, action string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.api+"/"+action, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.TransportError{Op: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &domain.TransportError{Op: action, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("backend http error treated as no data",
			zap.String("action", action), zap.Int("code", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: action, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ProtocolError{Op: action, Detail: "unexpected response shape: " + err.Error()}
	}
	return nil
}
