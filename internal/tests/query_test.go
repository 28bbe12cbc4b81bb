package tests

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"booking/internal/domain"
	"booking/internal/service"
	"booking/internal/userdirectory"
)

// ──────────────────────────────────────────────
// 7. LISTINGS AND FILTERS
// ──────────────────────────────────────────────

func seedRiderHistory(h *Harness) {
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h.Seed(domain.Booking{ID: "b-1", RiderID: "rider-1", Status: domain.BookingStatusCompleted, CreatedAt: day,
		Pickup: domain.Location{Address: "Indiranagar Metro"}, Dropoff: domain.Location{Address: "Airport Terminal 1"}})
	h.Seed(domain.Booking{ID: "b-2", RiderID: "rider-1", Status: domain.BookingStatusCancelled, CreatedAt: day.Add(2 * time.Hour),
		Pickup: domain.Location{Address: "HSR Layout"}, Dropoff: domain.Location{Address: "Indiranagar 100ft Road"}})
	h.Seed(domain.Booking{ID: "b-3", RiderID: "rider-1", Status: domain.BookingStatusPending, CreatedAt: day.AddDate(0, 0, 1),
		Pickup: domain.Location{Address: "Whitefield"}, Dropoff: domain.Location{Address: "MG Road"}})
	h.Seed(domain.Booking{ID: "b-4", RiderID: "rider-2", Status: domain.BookingStatusCompleted, CreatedAt: day,
		Pickup: domain.Location{Address: "Indiranagar Metro"}, Dropoff: domain.Location{Address: "Jayanagar"}})
}

func TestRiderBookings_FilterPrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		query   service.RiderBookingsQuery
		wantIDs []string
	}{
		{
			name:    "all, newest first",
			query:   service.RiderBookingsQuery{},
			wantIDs: []string{"b-3", "b-2", "b-1"},
		},
		{
			name:    "status",
			query:   service.RiderBookingsQuery{Status: "completed"},
			wantIDs: []string{"b-1"},
		},
		{
			name:    "status wins over search",
			query:   service.RiderBookingsQuery{Status: "PENDING", FilterType: "pickup", SearchTerm: "indiranagar"},
			wantIDs: []string{"b-3"},
		},
		{
			name:    "pickup search is case-insensitive",
			query:   service.RiderBookingsQuery{FilterType: "pickup", SearchTerm: "INDIRANAGAR"},
			wantIDs: []string{"b-1"},
		},
		{
			name:    "dropoff search",
			query:   service.RiderBookingsQuery{FilterType: "dropoff", SearchTerm: "indiranagar"},
			wantIDs: []string{"b-2"},
		},
		{
			name:    "travel date",
			query:   service.RiderBookingsQuery{FilterType: "travel_date", SearchTerm: "2026-03-14"},
			wantIDs: []string{"b-2", "b-1"},
		},
		{
			name:    "blank search term lists all",
			query:   service.RiderBookingsQuery{FilterType: "pickup", SearchTerm: "  "},
			wantIDs: []string{"b-3", "b-2", "b-1"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewHarness("10.00")
			seedRiderHistory(h)

			q := tc.query
			q.RiderID = "rider-1"
			q.Size = 10

			page, err := h.Queries.RiderBookings(context.Background(), q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(page.Content) != len(tc.wantIDs) {
				t.Fatalf("expected %d bookings, got %d", len(tc.wantIDs), len(page.Content))
			}
			for i, id := range tc.wantIDs {
				if page.Content[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, page.Content[i].ID)
				}
			}
		})
	}
}

func TestRiderBookings_InvalidFilters_Rejected(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")

	_, err := h.Queries.RiderBookings(context.Background(), service.RiderBookingsQuery{RiderID: "rider-1", Status: "flying"})
	if !errors.Is(err, domain.ErrInvalidStatusFilter) {
		t.Errorf("expected ErrInvalidStatusFilter, got %v", err)
	}

	_, err = h.Queries.RiderBookings(context.Background(), service.RiderBookingsQuery{
		RiderID:    "rider-1",
		FilterType: "travel_date",
		SearchTerm: "14/03/2026",
	})
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestListing_PageEnvelope(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		h.Seed(domain.Booking{RiderID: "rider-1", Status: domain.BookingStatusCompleted, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	first, err := h.Queries.AllBookings(context.Background(), "", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Content) != 10 || first.TotalElements != 15 || first.TotalPages != 2 || first.Last {
		t.Errorf("unexpected first page: len=%d total=%d pages=%d last=%v",
			len(first.Content), first.TotalElements, first.TotalPages, first.Last)
	}

	second, err := h.Queries.AllBookings(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Content) != 5 || !second.Last {
		t.Errorf("unexpected second page: len=%d last=%v", len(second.Content), second.Last)
	}
}

func TestRiderBookings_HugePageIsEmpty(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")
	seedRiderHistory(h)

	page, err := h.Queries.RiderBookings(context.Background(), service.RiderBookingsQuery{
		RiderID: "rider-1",
		Page:    math.MaxInt64 / 2,
		Size:    4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Content) != 0 || page.TotalElements != 3 || !page.Last {
		t.Errorf("expected an empty last page over 3 bookings, got len=%d total=%d last=%v",
			len(page.Content), page.TotalElements, page.Last)
	}
	if page.Page != service.MaxPage {
		t.Errorf("expected page clamped to %d, got %d", service.MaxPage, page.Page)
	}
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 10, 0, 10},
		{-3, 10, 0, 10},
		{2, 0, 2, 1},
		{1, 500, 1, 100},
		{math.MaxInt64 / 2, 4, service.MaxPage, 4},
	}

	for _, tc := range testCases {
		got := service.NormalizePage(tc.page, tc.size)
		if got.Page != tc.wantPage || got.Size != tc.wantSize {
			t.Errorf("NormalizePage(%d, %d) = %+v, want page=%d size=%d",
				tc.page, tc.size, got, tc.wantPage, tc.wantSize)
		}
	}
}

func TestDriverBookings_OwnOnlyAndActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := NewHarness("10.00")
	h.Seed(domain.Booking{ID: "b-1", RiderID: "r-1", DriverID: "driver-1", Status: domain.BookingStatusCompleted})
	h.Seed(domain.Booking{ID: "b-2", RiderID: "r-2", DriverID: "driver-1", Status: domain.BookingStatusStarted})
	h.Seed(domain.Booking{ID: "b-3", RiderID: "r-3", DriverID: "driver-2", Status: domain.BookingStatusCompleted})

	page, err := h.Queries.DriverBookings(ctx, "driver-1", "completed", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].ID != "b-1" {
		t.Errorf("expected only b-1, got %+v", page.Content)
	}

	active, err := h.Queries.ActiveBooking(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active == nil || active.ID != "b-2" {
		t.Errorf("expected active b-2, got %+v", active)
	}

	idle, err := h.Queries.ActiveBooking(ctx, "driver-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idle != nil {
		t.Errorf("expected no active booking, got %s", idle.ID)
	}
}

// ──────────────────────────────────────────────
// 8. DETAILS AND ENRICHMENT
// ──────────────────────────────────────────────

func TestGetDetails_Visibility(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		booking domain.Booking
		caller  domain.Identity
		wantErr error
	}{
		{
			name:    "own rider",
			booking: domain.Booking{ID: "b-1", RiderID: "rider-1", Status: domain.BookingStatusPending},
			caller:  domain.Identity{UserID: "rider-1", Role: domain.RoleRider},
		},
		{
			name:    "other rider",
			booking: domain.Booking{ID: "b-1", RiderID: "rider-1", Status: domain.BookingStatusPending},
			caller:  domain.Identity{UserID: "rider-2", Role: domain.RoleRider},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "driver browsing open booking",
			booking: domain.Booking{ID: "b-1", RiderID: "rider-1", Status: domain.BookingStatusPending},
			caller:  domain.Identity{UserID: "driver-1", Role: domain.RoleDriver},
		},
		{
			name:    "driver on someone else's booking",
			booking: domain.Booking{ID: "b-1", RiderID: "rider-1", DriverID: "driver-2", Status: domain.BookingStatusAccepted},
			caller:  domain.Identity{UserID: "driver-1", Role: domain.RoleDriver},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "admin",
			booking: domain.Booking{ID: "b-1", RiderID: "rider-1", DriverID: "driver-2", Status: domain.BookingStatusCompleted},
			caller:  domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewHarness("10.00")
			h.Seed(tc.booking)

			view, err := h.Queries.GetDetails(context.Background(), "b-1", tc.caller)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if view.ID != "b-1" {
				t.Errorf("expected b-1, got %s", view.ID)
			}
		})
	}
}

func TestGetDetails_UnknownBooking_NotFound(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")

	_, err := h.Queries.GetDetails(context.Background(), "nope", domain.Identity{UserID: "rider-1", Role: domain.RoleRider})
	if !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestEnrichment_AddsCounterpartProfile(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")
	h.Directory.AddProfile(&userdirectory.Profile{ID: "driver-1", FirstName: "Asha", LastName: "Rao", PhoneNumber: "+919800000001"})
	h.Directory.AddProfile(&userdirectory.Profile{ID: "rider-1", FirstName: "Vikram", PhoneNumber: "+919800000002"})
	h.Seed(domain.Booking{ID: "b-1", RiderID: "rider-1", DriverID: "driver-1", Status: domain.BookingStatusAccepted})

	riderView, err := h.Queries.GetDetails(context.Background(), "b-1", domain.Identity{UserID: "rider-1", Role: domain.RoleRider})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if riderView.Driver == nil || riderView.Driver.Name != "Asha Rao" || riderView.Driver.Phone != "+919800000001" {
		t.Errorf("expected driver Asha Rao, got %+v", riderView.Driver)
	}
	if riderView.Rider != nil {
		t.Error("expected rider view to omit the rider's own profile")
	}

	adminView, err := h.Queries.GetDetails(context.Background(), "b-1", domain.Identity{UserID: "admin", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adminView.Rider == nil || adminView.Rider.Name != "Vikram" {
		t.Errorf("expected rider Vikram, got %+v", adminView.Rider)
	}
	if adminView.Driver == nil {
		t.Error("expected admin view to include the driver")
	}
}

func TestEnrichment_DirectoryDown_QueryStillSucceeds(t *testing.T) {
	t.Parallel()

	h := NewHarness("10.00")
	h.Directory.GetUserError = errDirectoryDown
	h.Seed(domain.Booking{ID: "b-1", RiderID: "rider-1", DriverID: "driver-1", Status: domain.BookingStatusCompleted})

	page, err := h.Queries.DriverBookings(context.Background(), "driver-1", "", 0, 10)
	if err != nil {
		t.Fatalf("expected query to succeed, got %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Rider != nil {
		t.Fatalf("expected one booking without rider details, got %+v", page.Content)
	}

	entry := h.LogHook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["user_id"] != "rider-1" {
		t.Errorf("expected a warning naming rider-1, got %+v", entry)
	}
}
