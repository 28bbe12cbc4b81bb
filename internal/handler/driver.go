package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"booking/internal/domain"
	"booking/internal/service"
)

// DriverHandler handles the driver's booking endpoints.
type DriverHandler struct {
	bookingService *service.BookingService
	queryService   *service.QueryService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(bookingService *service.BookingService, queryService *service.QueryService) *DriverHandler {
	return &DriverHandler{
		bookingService: bookingService,
		queryService:   queryService,
	}
}

// AcceptBookingRequest is the HTTP request body for accepting a booking.
type AcceptBookingRequest struct {
	VehicleID string `json:"vehicleId"`
}

// CompleteBookingRequest is the HTTP request body for completing a ride.
// Every field is optional; absent values keep the estimate taken at booking time.
type CompleteBookingRequest struct {
	FinalDistanceKm      *decimal.Decimal `json:"finalDistanceKm"`
	FinalDurationMinutes *int             `json:"finalDurationMinutes"`
	FinalFare            *decimal.Decimal `json:"finalFare"`
}

// GetAvailable handles GET /api/v1/driver/bookings/available
func (h *DriverHandler) GetAvailable(c *gin.Context) {
	views, err := h.bookingService.ListAvailable(c.Request.Context(), callerID(c), c.Query("vehicleType"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverBookingResponse, 0, len(views))
	for _, v := range views {
		response = append(response, newDriverBookingResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetMyBookings handles GET /api/v1/driver/bookings/me
func (h *DriverHandler) GetMyBookings(c *gin.Context) {
	page, size, err := pageParams(c, service.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.queryService.DriverBookings(c.Request.Context(), callerID(c), c.Query("status"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPageResponse(result, newDriverBookingResponse))
}

// GetActive handles GET /api/v1/driver/bookings/active
func (h *DriverHandler) GetActive(c *gin.Context) {
	view, err := h.queryService.ActiveBooking(c.Request.Context(), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if view == nil {
		c.Status(http.StatusNoContent)
		return
	}

	respondJSON(c, http.StatusOK, newDriverBookingResponse(*view))
}

// GetBooking handles GET /api/v1/driver/bookings/:id
func (h *DriverHandler) GetBooking(c *gin.Context) {
	view, err := h.queryService.GetDetails(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDriverBookingResponse(*view))
}

// AcceptBooking handles PUT /api/v1/driver/bookings/:id/accept
func (h *DriverHandler) AcceptBooking(c *gin.Context) {
	var req AcceptBookingRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.bookingService.AcceptBooking(c.Request.Context(), service.AcceptBookingRequest{
		BookingID: c.Param("id"),
		DriverID:  callerID(c),
		VehicleID: req.VehicleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDriverBookingResponse(*view))
}

// StartRide handles PUT /api/v1/driver/bookings/:id/start
func (h *DriverHandler) StartRide(c *gin.Context) {
	view, err := h.bookingService.StartRide(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDriverBookingResponse(*view))
}

// CompleteRide handles PUT /api/v1/driver/bookings/:id/complete
func (h *DriverHandler) CompleteRide(c *gin.Context) {
	var req CompleteBookingRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
	}

	view, err := h.bookingService.CompleteRide(c.Request.Context(), service.CompleteRideRequest{
		BookingID: c.Param("id"),
		DriverID:  callerID(c),
		Metrics: domain.CompletionMetrics{
			DistanceKm:      req.FinalDistanceKm,
			DurationMinutes: req.FinalDurationMinutes,
			Fare:            req.FinalFare,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newDriverBookingResponse(*view))
}
