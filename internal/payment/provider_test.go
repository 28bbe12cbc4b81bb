package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestToMinorUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(20000), ToMinorUnits(decimal.RequireFromString("200.00")))
	assert.Equal(t, int64(23751), ToMinorUnits(decimal.RequireFromString("237.505")))
	assert.Equal(t, int64(9), ToMinorUnits(decimal.RequireFromString("0.09")))
}

func TestMockProvider_CreatePaymentIntent(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	intent, err := p.CreatePaymentIntent(context.Background(), IntentRequest{
		BookingID: "b-1",
		Amount:    decimal.RequireFromString("96.50"),
		Currency:  "inr",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(intent.ID, "pi_mock_"))
	assert.Contains(t, intent.ClientSecret, "b-1")
	assert.Equal(t, int64(9650), intent.AmountMinor)
	assert.Equal(t, int64(1), p.Calls())
}

func TestStripeMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Your card was declined.", stripeMessage(&stripe.Error{Msg: "Your card was declined."}))
	assert.Equal(t, "dial tcp: timeout", stripeMessage(errors.New("dial tcp: timeout")))
	assert.Equal(t, "N/A", metadataValue(""))
}
