package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GetAssignmentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/assignments/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2025-01-05" {
			t.Errorf("expected date 2025-01-05, got %s", got)
		}
		if got := r.URL.Query().Get("location"); got != "亚" {
			t.Errorf("expected location 亚, got %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", got)
		}
		fmt.Fprint(w, `{"isAssigned":true,"guideName":"王导","vehicleInfo":"大巴A"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", nil, nil)
	status, err := c.GetAssignmentStatus(context.Background(), mustDate("2025-01-05"), "亚")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Assigned || status.GuideName != "王导" || status.VehicleInfo != "大巴A" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such location", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, nil)
	_, err := c.GetAssignmentStatus(context.Background(), mustDate("2025-01-05"), "亚")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestClient_CancelAssignment(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, nil)
	if err := c.CancelAssignment(context.Background(), 42, "day swap"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/assignments/42/cancel" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotBody["reason"] != "day swap" {
		t.Errorf("expected reason in body, got %v", gotBody)
	}
}

func TestClient_PersistSchedule(t *testing.T) {
	var got struct {
		Entries []schedulePayload `json:"entries"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings/7/schedule" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	scheduleID := int64(900)
	entries := []ScheduleEntry{
		{Date: mustDate("2025-01-01"), Title: "亚瑟港含门票", LocationKey: "亚(含)", TourID: 5, Pax: 4, ScheduleID: &scheduleID},
		{Date: mustDate("2025-01-02"), Title: "布鲁尼岛", LocationKey: "布", TourID: 6, Pax: 4},
	}

	c := NewClient(srv.URL, "", nil, nil)
	if err := c.PersistSchedule(context.Background(), 7, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Date != "2025-01-01" || got.Entries[0].LocationKey != "亚(含)" {
		t.Errorf("unexpected first entry: %+v", got.Entries[0])
	}
	if got.Entries[0].ScheduleID == nil || *got.Entries[0].ScheduleID != 900 {
		t.Error("expected schedule id carried through")
	}
}

func TestClient_LoadBookingsInRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{
				"id": 1,
				"contactName": "张三",
				"adultCount": 4,
				"startDate": "2025-01-01",
				"endDate": "2025-01-02",
				"days": {
					"2025-01-01": {"title": "第1天:亚瑟港含门票一日游", "tourId": 10, "tourType": "day_tour", "adultCount": 4},
					"2025-01-02": {"title": "布鲁尼岛一日游", "tourId": 11, "tourType": "day_tour", "adultCount": 4}
				}
			}
		]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, nil)
	bookings, err := c.LoadBookingsInRange(context.Background(), mustDate("2025-01-01"), mustDate("2025-01-07"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}

	b := bookings[0]
	day1 := b.AssignmentOn(mustDate("2025-01-01"))
	if day1 == nil {
		t.Fatal("missing day 1 assignment")
	}
	// Titles are normalized on decode.
	if day1.Key != "亚(含)" {
		t.Errorf("expected normalized key 亚(含), got %q", day1.Key)
	}
	if day1.Name != "第1天:亚瑟港含门票一日游" {
		t.Errorf("raw title should be preserved, got %q", day1.Name)
	}
	if day1.Color == "" {
		t.Error("expected color tag to be set")
	}
	day2 := b.AssignmentOn(mustDate("2025-01-02"))
	if day2 == nil || day2.Key != "布" {
		t.Errorf("expected day 2 key 布, got %+v", day2)
	}
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
