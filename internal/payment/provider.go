package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntentRequest describes the charge to open for a booking.
type IntentRequest struct {
	BookingID   string
	RiderID     string
	DriverID    string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// Intent is the client-usable handle for a pending charge.
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Error is a processor failure whose Message is safe to show to the caller.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Provider opens charges with an external payment processor.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// ToMinorUnits converts a decimal amount to the smallest currency unit (paise, cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// MockProvider is an in-process Provider used when no processor key is configured.
type MockProvider struct {
	calls int64
}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// CreatePaymentIntent returns a synthetic intent. Always succeeds.
func (p *MockProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	atomic.AddInt64(&p.calls, 1)
	id := "pi_mock_" + uuid.NewString()
	return &Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, req.BookingID),
		AmountMinor:  ToMinorUnits(req.Amount),
		Currency:     req.Currency,
	}, nil
}

// Calls returns how many intents were created.
func (p *MockProvider) Calls() int64 { return atomic.LoadInt64(&p.calls) }

var _ Provider = (*MockProvider)(nil)
