package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrBookingNotFound, http.StatusNotFound},
		{"missing identity", domain.ErrMissingIdentity, http.StatusUnauthorized},
		{"not owner", domain.ErrUnauthorized, http.StatusForbidden},
		{"bad input", domain.ErrInvalidVehicleType, http.StatusBadRequest},
		{"bad transition", domain.ErrInvalidState, http.StatusBadRequest},
		{"busy driver", domain.ErrConflictingActiveBooking, http.StatusConflict},
		{"already paid", domain.ErrAlreadyPaid, http.StatusConflict},
		{"provider", domain.ErrPaymentProvider, http.StatusBadGateway},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToHTTPStatus(tt.err))
		})
	}
}

func TestRespondError_Body(t *testing.T) {
	t.Run("business error carries its message without the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		err := domain.ErrInvalidState.WithMessage("Cannot cancel booking in 'started' status").Wrap(errors.New("row locked"))
		respondError(c, err)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusBadRequest, body.Status)
		assert.Equal(t, "Bad Request", body.Error)
		assert.Equal(t, "Cannot cancel booking in 'started' status", body.Message)
		assert.False(t, body.Timestamp.IsZero())
	})

	t.Run("internal error is redacted", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, errors.New("pq: connection refused"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, internalErrorMessage, body.Message)
		assert.Len(t, c.Errors, 1)
	})
}

func TestBindJSON_ValidationMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bookingId":"b-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req UpdatePaymentRequest
	err := bindJSON(c, &req)

	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Validation failed: paymentId: required, amount: required", de.Message)
}

func TestBindJSON_MalformedBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bookingId":`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req CreatePaymentIntentRequest
	err := bindJSON(c, &req)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Malformed request body", de.Message)
}

func TestBookingResponse_Presentation(t *testing.T) {
	b := &domain.Booking{
		ID:             "b-1",
		RiderID:        "r-1",
		VehicleType:    domain.VehicleTypeSedan,
		Status:         domain.BookingStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		FareAmount:     decimal.RequireFromString("200"),
		TripDistanceKm: decimal.RequireFromString("10"),
	}

	data, err := json.Marshal(newBookingResponse(b))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "sedan", got["vehicleType"])
	assert.Equal(t, "pending", got["bookingStatus"])
	assert.Equal(t, "pending", got["paymentStatus"])
	assert.Equal(t, 200.0, got["fareAmount"])
	assert.Contains(t, string(data), `"fareAmount":200.00`)
	assert.NotContains(t, got, "driverId")
	assert.NotContains(t, got, "pickupTime")
	assert.NotContains(t, got, "riderRating")
}
