package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking/internal/service"
)

// AdminHandler handles the global booking listing for administrators.
type AdminHandler struct {
	queryService *service.QueryService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(queryService *service.QueryService) *AdminHandler {
	return &AdminHandler{queryService: queryService}
}

// GetAll handles GET /api/v1/admin/bookings
func (h *AdminHandler) GetAll(c *gin.Context) {
	page, size, err := pageParams(c, service.AdminPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.queryService.AllBookings(c.Request.Context(), c.Query("status"), page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPageResponse(result, newAdminBookingResponse))
}

// GetBooking handles GET /api/v1/admin/bookings/:id
func (h *AdminHandler) GetBooking(c *gin.Context) {
	view, err := h.queryService.GetDetails(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newAdminBookingResponse(*view))
}
