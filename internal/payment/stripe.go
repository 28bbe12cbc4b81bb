package payment

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider opens PaymentIntents through the Stripe API.
type StripeProvider struct {
	client *client.API
}

// NewStripeProvider creates a StripeProvider for the given secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{client: sc}
}

// CreatePaymentIntent opens a PaymentIntent with automatic payment methods enabled.
func (s *StripeProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(ToMinorUnits(req.Amount)),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("riderId", req.RiderID)
	params.AddMetadata("driverId", metadataValue(req.DriverID))

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, &Error{Message: stripeMessage(err), Err: err}
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func metadataValue(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// stripeMessage extracts the human-readable message from a Stripe API error.
func stripeMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

var _ Provider = (*StripeProvider)(nil)
