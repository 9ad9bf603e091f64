package assignment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/dateutil"
	"github.com/qhdzhm/happy-sub000/internal/location"
)

// Client implements Service against the admin backend's JSON REST API.
//
// Status lookups carry no client-side timeout: a drag session blocks until
// the conflict check resolves or errors, and the caller decides what to do
// with a failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	normalizer *location.Normalizer
}

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "assignment api error"
	}
	return fmt.Sprintf("assignment api error: %s %s: %s", e.Status, e.Endpoint, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// NewClient creates a Service backed by the REST API at baseURL.
// If httpClient is nil a default client without timeout is used.
// If normalizer is nil the built-in rule table applies.
func NewClient(baseURL, token string, httpClient *http.Client, normalizer *location.Normalizer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if normalizer == nil {
		normalizer = location.NewNormalizer(nil)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		normalizer: normalizer,
	}
}

// GetAssignmentStatus implements StatusProvider.
func (c *Client) GetAssignmentStatus(ctx context.Context, date time.Time, locationKey string) (Status, error) {
	var status Status
	endpoint := fmt.Sprintf("/api/assignments/status?date=%s&location=%s",
		dateutil.DayKey(date), url.QueryEscape(locationKey))
	if err := c.getJSON(ctx, endpoint, &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

// GetAssignmentDetails implements Service.
func (c *Client) GetAssignmentDetails(ctx context.Context, date time.Time, locationKey string) ([]Detail, error) {
	var details []Detail
	endpoint := fmt.Sprintf("/api/assignments?date=%s&location=%s",
		dateutil.DayKey(date), url.QueryEscape(locationKey))
	if err := c.getJSON(ctx, endpoint, &details); err != nil {
		return nil, err
	}
	return details, nil
}

// CancelAssignment implements Service.
func (c *Client) CancelAssignment(ctx context.Context, id int64, reason string) error {
	body := map[string]any{"reason": reason}
	endpoint := fmt.Sprintf("/api/assignments/%d/cancel", id)
	return c.postJSON(ctx, endpoint, body, nil)
}

// schedulePayload is the wire form of one day-entry for persistence.
type schedulePayload struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	LocationKey string `json:"locationKey"`
	TourID      int64  `json:"tourId"`
	TourType    string `json:"tourType"`
	ScheduleID  *int64 `json:"scheduleId,omitempty"`
	Pax         int    `json:"adultCount"`
	Pickup      string `json:"pickupLocation,omitempty"`
	Dropoff     string `json:"dropoffLocation,omitempty"`
	Remarks     string `json:"specialRequests,omitempty"`
}

// PersistSchedule implements Service. The backend replaces the booking's full
// day-entry list in one batch.
func (c *Client) PersistSchedule(ctx context.Context, bookingID int64, entries []ScheduleEntry) error {
	payload := make([]schedulePayload, 0, len(entries))
	for _, e := range entries {
		payload = append(payload, schedulePayload{
			Date:        dateutil.DayKey(e.Date),
			Title:       e.Title,
			LocationKey: e.LocationKey,
			TourID:      e.TourID,
			TourType:    e.TourType,
			ScheduleID:  e.ScheduleID,
			Pax:         e.Pax,
			Pickup:      e.Pickup,
			Dropoff:     e.Dropoff,
			Remarks:     e.Remarks,
		})
	}
	endpoint := fmt.Sprintf("/api/bookings/%d/schedule", bookingID)
	return c.postJSON(ctx, endpoint, map[string]any{"entries": payload}, nil)
}

// bookingPayload is the wire form of one booking with its day-entries.
type bookingPayload struct {
	ID           int64  `json:"id"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	Pax          int    `json:"adultCount"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Days         map[string]struct {
		Title      string `json:"title"`
		TourID     int64  `json:"tourId"`
		TourType   string `json:"tourType"`
		ScheduleID *int64 `json:"scheduleId"`
		Pax        int    `json:"adultCount"`
		Pickup     string `json:"pickupLocation"`
		Dropoff    string `json:"dropoffLocation"`
		Remarks    string `json:"specialRequests"`
	} `json:"days"`
}

// LoadBookingsInRange implements Service. Raw titles are normalized and
// color-tagged on decode so the rest of the board only sees canonical keys.
func (c *Client) LoadBookingsInRange(ctx context.Context, start, end time.Time) ([]*booking.Booking, error) {
	var payload []bookingPayload
	endpoint := fmt.Sprintf("/api/bookings?start=%s&end=%s", dateutil.DayKey(start), dateutil.DayKey(end))
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	bookings := make([]*booking.Booking, 0, len(payload))
	for _, p := range payload {
		b := &booking.Booking{
			ID:           p.ID,
			ContactName:  p.ContactName,
			ContactPhone: p.ContactPhone,
			Pax:          p.Pax,
			Days:         make(map[string]*booking.LocationAssignment, len(p.Days)),
		}
		if p.StartDate != "" {
			if d, err := dateutil.ParseDate(p.StartDate); err == nil {
				b.StartDate = d
			}
		}
		if p.EndDate != "" {
			if d, err := dateutil.ParseDate(p.EndDate); err == nil {
				b.EndDate = d
			}
		}
		for dayKey, day := range p.Days {
			key := c.normalizer.Normalize(day.Title)
			b.Days[dayKey] = &booking.LocationAssignment{
				Name:       day.Title,
				Key:        key,
				Color:      location.ColorTag(key),
				TourID:     day.TourID,
				TourType:   day.TourType,
				ScheduleID: day.ScheduleID,
				Pax:        day.Pax,
				Pickup:     day.Pickup,
				Dropoff:    day.Dropoff,
				Remarks:    day.Remarks,
			}
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Endpoint:   req.URL.Path,
			Body:       string(bytes.TrimSpace(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
