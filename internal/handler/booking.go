package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"booking/internal/domain"
	"booking/internal/middleware"
	"booking/internal/service"
)

// BookingHandler handles the rider's booking endpoints.
type BookingHandler struct {
	bookingService *service.BookingService
	queryService   *service.QueryService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, queryService *service.QueryService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		queryService:   queryService,
	}
}

// CreateBookingRequest is the HTTP request body for requesting a ride.
type CreateBookingRequest struct {
	PickupLatitude   *float64 `json:"pickupLatitude" binding:"required"`
	PickupLongitude  *float64 `json:"pickupLongitude" binding:"required"`
	PickupAddress    string   `json:"pickupAddress" binding:"required"`
	DropoffLatitude  *float64 `json:"dropoffLatitude" binding:"required"`
	DropoffLongitude *float64 `json:"dropoffLongitude" binding:"required"`
	DropoffAddress   string   `json:"dropoffAddress" binding:"required"`
	VehicleType      string   `json:"vehicleType" binding:"required"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		RiderID: callerID(c),
		Pickup: domain.Location{
			Latitude:  *req.PickupLatitude,
			Longitude: *req.PickupLongitude,
			Address:   req.PickupAddress,
		},
		Dropoff: domain.Location{
			Latitude:  *req.DropoffLatitude,
			Longitude: *req.DropoffLongitude,
			Address:   req.DropoffAddress,
		},
		VehicleType: req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newRiderBookingResponse(*view))
}

// GetMyBookings handles GET /api/v1/bookings/me
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	page, size, err := pageParams(c, service.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.queryService.RiderBookings(c.Request.Context(), service.RiderBookingsQuery{
		RiderID:    callerID(c),
		Status:     c.Query("status"),
		FilterType: c.Query("filterType"),
		SearchTerm: c.Query("searchTerm"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPageResponse(result, newRiderBookingResponse))
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	view, err := h.queryService.GetDetails(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRiderBookingResponse(*view))
}

// CancelBooking handles PUT /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	view, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRiderBookingResponse(*view))
}

// caller returns the identity stamped by the identity middleware.
func caller(c *gin.Context) domain.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func callerID(c *gin.Context) string {
	return caller(c).UserID
}

// pageParams reads page and size. Range clamping happens in the query service.
func pageParams(c *gin.Context, defaultSize int) (int, int, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		return 0, 0, domain.ErrInvalidInput.WithMessage("Invalid page parameter: " + c.Query("page"))
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil {
		return 0, 0, domain.ErrInvalidInput.WithMessage("Invalid size parameter: " + c.Query("size"))
	}
	return page, size, nil
}
