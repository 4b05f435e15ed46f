// Package oracle is the HTTP client for the remote availability oracle and
// its sibling, the booking authority.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/timewindow"
)

// ErrOracleUnavailable reports a transport or server failure of an
// availability query. Callers must treat it as "bound unknown", never as
// "zero available".
var ErrOracleUnavailable = errors.New("availability oracle unavailable")

// RejectionError is an authoritative booking rejection. Message carries the
// authority's human-readable reason and is surfaced unmodified.
type RejectionError struct {
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string { return e.Message }

const defaultRequestTimeout = 10 * time.Second

// Client talks to the court booking service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// QueryAvailability asks the oracle for the equipment snapshot of one
// (court, window) pair. The snapshot's arithmetic is the authority's; the
// client never recomputes it.
func (c *Client) QueryAvailability(ctx context.Context, courtID int64, win timewindow.Window) (booking.Snapshot, error) {
	params := url.Values{}
	params.Set("courtId", strconv.FormatInt(courtID, 10))
	params.Set("start", win.Start.UTC().Format(time.RFC3339))
	params.Set("end", win.End.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/equipment/availability?"+params.Encode(), nil)
	if err != nil {
		return booking.Snapshot{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return booking.Snapshot{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Int64("court_id", courtID).
			Msg("Availability query failed")
		return booking.Snapshot{}, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var snap booking.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return booking.Snapshot{}, fmt.Errorf("%w: decode response: %v", ErrOracleUnavailable, err)
	}
	return snap, nil
}

// CreateBooking submits one booking request. Each call may create a new
// booking; the client performs no retry and no deduplication. A non-2xx
// response surfaces the authority's message verbatim as a RejectionError.
func (c *Client) CreateBooking(ctx context.Context, request booking.Request) (booking.Booking, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("encode booking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(body))
	if err != nil {
		return booking.Booking{}, fmt.Errorf("build booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("submit booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return booking.Booking{}, &RejectionError{StatusCode: resp.StatusCode, Message: message}
	}

	var created booking.Booking
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return booking.Booking{}, fmt.Errorf("decode booking response: %w", err)
	}
	return created, nil
}

// ListCourts fetches the bookable courts. Consumed once at form
// initialization.
func (c *Client) ListCourts(ctx context.Context) ([]booking.Court, error) {
	var courts []booking.Court
	if err := c.getJSON(ctx, "/courts", &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

// ListCoaches fetches the coaches available for optional selection.
func (c *Client) ListCoaches(ctx context.Context) ([]booking.Coach, error) {
	var coaches []booking.Coach
	if err := c.getJSON(ctx, "/coaches", &coaches); err != nil {
		return nil, err
	}
	return coaches, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("fetch %s: %s", path, message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
