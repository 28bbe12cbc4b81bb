package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"booking/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
	receiptService *service.ReceiptService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, receiptService *service.ReceiptService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		receiptService: receiptService,
	}
}

// CreatePaymentIntentRequest is the HTTP request body for opening a card payment.
type CreatePaymentIntentRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// UpdatePaymentRequest is the HTTP request body for confirming a settled payment.
type UpdatePaymentRequest struct {
	BookingID     string           `json:"bookingId" binding:"required"`
	PaymentID     string           `json:"paymentId" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string           `json:"paymentMethod"`
}

// PaymentFailedRequest is the optional HTTP request body for reporting a failed payment.
type PaymentFailedRequest struct {
	Reason string `json:"reason"`
}

// CreatePaymentIntent handles POST /api/v1/payments/rider/create-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), req.BookingID, callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentIntentResponse{
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
		Amount:          money(result.Amount),
		Currency:        result.Currency,
		BookingID:       result.BookingID,
	})
}

// ConfirmPayment handles POST /api/v1/payments
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	details, err := h.paymentService.ConfirmPayment(c.Request.Context(), service.ConfirmPaymentRequest{
		BookingID: req.BookingID,
		PaymentID: req.PaymentID,
		Amount:    *req.Amount,
		Method:    req.PaymentMethod,
		UserID:    callerID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentDetailsResponse(details))
}

// MarkFailed handles POST /api/v1/payments/:id/failed
func (h *PaymentHandler) MarkFailed(c *gin.Context) {
	var req PaymentFailedRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
	}

	bookingID := c.Param("id")
	if err := h.paymentService.MarkFailed(c.Request.Context(), bookingID, callerID(c), req.Reason); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{
		Message:   "Payment marked as failed",
		BookingID: bookingID,
	})
}

// MarkCashComplete handles POST /api/v1/payments/driver/:id/complete
func (h *PaymentHandler) MarkCashComplete(c *gin.Context) {
	bookingID := c.Param("id")
	if err := h.paymentService.MarkCashComplete(c.Request.Context(), bookingID, callerID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, MessageResponse{
		Message:   "Cash payment recorded",
		BookingID: bookingID,
	})
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	details, err := h.paymentService.GetPaymentDetails(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentDetailsResponse(details))
}

// GetReceipt handles GET /api/v1/payments/:id/receipt
// With ?format=text the printable receipt is returned instead of JSON.
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.receiptService.GenerateReceipt(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, h.receiptService.FormatReceipt(receipt))
		return
	}

	respondJSON(c, http.StatusOK, newReceiptResponse(receipt))
}
