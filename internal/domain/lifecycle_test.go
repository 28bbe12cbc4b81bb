package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func pendingBooking() Booking {
	return Booking{
		ID:             "booking-1",
		RiderID:        "rider-1",
		VehicleType:    VehicleTypeSedan,
		Status:         BookingStatusPending,
		PaymentStatus:  PaymentStatusPending,
		FareAmount:     decimal.RequireFromString("200.00"),
		TripDistanceKm: decimal.RequireFromString("10.00"),
	}
}

func withStatus(b Booking, status BookingStatus, driverID string) Booking {
	b.Status = status
	b.DriverID = driverID
	if driverID != "" {
		b.VehicleID = "vehicle-1"
	}
	return b
}

func TestAccept_AssignsDriverOnce(t *testing.T) {
	t.Parallel()

	b := pendingBooking()
	accepted, err := b.Accept("driver-1", "vehicle-1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.DriverID != "driver-1" || accepted.VehicleID != "vehicle-1" {
		t.Errorf("expected driver-1/vehicle-1, got %s/%s", accepted.DriverID, accepted.VehicleID)
	}
	if accepted.Status != BookingStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", accepted.Status)
	}
	if b.Status != BookingStatusPending || b.DriverID != "" {
		t.Error("expected original booking to be untouched")
	}

	_, err = accepted.Accept("driver-2", "vehicle-2", testNow)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on second accept, got %v", err)
	}
}

func TestAccept_PendingWithDriverIsRejected(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusPending, "driver-9")
	_, err := b.Accept("driver-1", "vehicle-1", testNow)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !strings.Contains(err.Error(), "already assigned") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestTransitions_OnlyLifecycleEdgesSucceed(t *testing.T) {
	t.Parallel()

	type op func(Booking) (Booking, error)
	accept := func(b Booking) (Booking, error) { return b.Accept("driver-1", "vehicle-1", testNow) }
	start := func(b Booking) (Booking, error) { return b.Start("driver-1", testNow) }
	complete := func(b Booking) (Booking, error) { return b.Complete("driver-1", CompletionMetrics{}, testNow) }
	cancel := func(b Booking) (Booking, error) { return b.Cancel("rider-1", testNow) }

	ops := map[string]op{"accept": accept, "start": start, "complete": complete, "cancel": cancel}

	allowed := map[BookingStatus]map[string]BookingStatus{
		BookingStatusPending:   {"accept": BookingStatusAccepted, "cancel": BookingStatusCancelled},
		BookingStatusAccepted:  {"start": BookingStatusStarted, "cancel": BookingStatusCancelled},
		BookingStatusStarted:   {"complete": BookingStatusCompleted},
		BookingStatusCompleted: {},
		BookingStatusCancelled: {},
	}

	for from, edges := range allowed {
		for name, fn := range ops {
			driver := "driver-1"
			if from == BookingStatusPending && name == "accept" {
				driver = ""
			}
			b := withStatus(pendingBooking(), from, driver)

			got, err := fn(b)
			want, ok := edges[name]
			if ok {
				if err != nil {
					t.Errorf("%s from %s: unexpected error: %v", name, from, err)
					continue
				}
				if got.Status != want {
					t.Errorf("%s from %s: expected %s, got %s", name, from, want, got.Status)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("%s from %s: expected ErrInvalidState, got %v", name, from, err)
			}
			if got.Status != from {
				t.Errorf("%s from %s: status changed to %s on failure", name, from, got.Status)
			}
		}
	}
}

func TestStart_WrongDriverIsUnauthorized(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusAccepted, "driver-1")
	_, err := b.Start("driver-2", testNow)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	started, err := b.Start("driver-1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !started.PickupTime.Equal(testNow) {
		t.Errorf("expected pickup time %v, got %v", testNow, started.PickupTime)
	}
}

func TestComplete_FinalDistanceRecomputesFare(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	distance := decimal.RequireFromString("12.5")

	done, err := b.Complete("driver-1", CompletionMetrics{DistanceKm: &distance}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.FareAmount.StringFixed(2) != "237.50" {
		t.Errorf("expected 237.50, got %s", done.FareAmount.StringFixed(2))
	}
	if done.TripDurationMinutes != b.TripDurationMinutes {
		t.Errorf("expected duration untouched without final duration, got %d", done.TripDurationMinutes)
	}
	if !done.DropoffTime.Equal(testNow) {
		t.Errorf("expected dropoff time to be set")
	}
}

func TestComplete_ExplicitFareWins(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	distance := decimal.RequireFromString("30")
	fare := decimal.RequireFromString("250.00")
	duration := 45

	done, err := b.Complete("driver-1", CompletionMetrics{DistanceKm: &distance, DurationMinutes: &duration, Fare: &fare}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done.FareAmount.Equal(fare) {
		t.Errorf("expected fare 250.00, got %s", done.FareAmount)
	}
	if done.TripDurationMinutes != 45 {
		t.Errorf("expected duration 45, got %d", done.TripDurationMinutes)
	}
	if !done.TripDistanceKm.Equal(distance) {
		t.Errorf("expected distance 30, got %s", done.TripDistanceKm)
	}
}

func TestComplete_ResetsFailedPayment(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	b.PaymentStatus = PaymentStatusFailed

	done, err := b.Complete("driver-1", CompletionMetrics{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.PaymentStatus != PaymentStatusPending {
		t.Errorf("expected payment status PENDING, got %s", done.PaymentStatus)
	}
}

func TestComplete_RejectsNonPositiveMetrics(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	zero := decimal.Zero
	_, err := b.Complete("driver-1", CompletionMetrics{Fare: &zero}, testNow)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCancel_StartedMentionsStatus(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	got, err := b.Cancel("rider-1", testNow)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !strings.Contains(err.Error(), "started") {
		t.Errorf("expected message to mention started, got %q", err.Error())
	}
	if got.Status != BookingStatusStarted {
		t.Errorf("expected booking to remain STARTED, got %s", got.Status)
	}
}

func TestCancel_OtherRiderIsUnauthorized(t *testing.T) {
	t.Parallel()

	_, err := pendingBooking().Cancel("rider-2", testNow)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCanView(t *testing.T) {
	t.Parallel()

	open := pendingBooking()
	mine := withStatus(pendingBooking(), BookingStatusAccepted, "driver-1")

	testCases := []struct {
		name    string
		booking Booking
		id      Identity
		want    bool
	}{
		{name: "rider own", booking: open, id: Identity{UserID: "rider-1", Role: RoleRider}, want: true},
		{name: "rider other", booking: open, id: Identity{UserID: "rider-2", Role: RoleRider}, want: false},
		{name: "driver open booking", booking: open, id: Identity{UserID: "driver-7", Role: RoleDriver}, want: true},
		{name: "driver own booking", booking: mine, id: Identity{UserID: "driver-1", Role: RoleDriver}, want: true},
		{name: "driver someone else's", booking: mine, id: Identity{UserID: "driver-7", Role: RoleDriver}, want: false},
		{name: "admin", booking: mine, id: Identity{UserID: "admin-1", Role: RoleAdmin}, want: true},
		{name: "no role", booking: open, id: Identity{UserID: "rider-1"}, want: false},
	}

	for _, tc := range testCases {
		if got := tc.booking.CanView(tc.id); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestMarkCashPaid_RiderIsUnauthorized(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusCompleted, "driver-1")
	_, err := b.MarkCashPaid("rider-1", testNow)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	paid, err := b.MarkCashPaid("driver-1", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.PaymentMethod != PaymentMethodCash || paid.PaymentStatus != PaymentStatusCompleted {
		t.Errorf("expected cash/COMPLETED, got %s/%s", paid.PaymentMethod, paid.PaymentStatus)
	}
}

func TestConfirmPayment_DefaultsToCardAndRejectsRepeat(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusCompleted, "driver-1")
	paid, err := b.ConfirmPayment("pi_123", "", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.PaymentMethod != PaymentMethodCard {
		t.Errorf("expected card, got %s", paid.PaymentMethod)
	}
	if !paid.PaidAt.Equal(testNow) {
		t.Errorf("expected paidAt to be set")
	}

	_, err = paid.ConfirmPayment("pi_456", "card", testNow)
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestConfirmPayment_RequiresCompletedBooking(t *testing.T) {
	t.Parallel()

	b := withStatus(pendingBooking(), BookingStatusStarted, "driver-1")
	_, err := b.ConfirmPayment("pi_123", "card", testNow)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestMarkPaymentFailed_IgnoresBookingStatus(t *testing.T) {
	t.Parallel()

	b := pendingBooking()
	failed := b.MarkPaymentFailed(testNow)
	if failed.PaymentStatus != PaymentStatusFailed {
		t.Errorf("expected FAILED, got %s", failed.PaymentStatus)
	}
	if failed.Status != BookingStatusPending {
		t.Errorf("expected booking status untouched, got %s", failed.Status)
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := ErrInvalidState.WithMessage("custom")
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected copy to match sentinel")
	}
	if errors.Is(err, ErrAlreadyPaid) {
		t.Error("expected different codes not to match")
	}
	if err.Error() != "custom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
