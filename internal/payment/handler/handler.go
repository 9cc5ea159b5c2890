package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/payment"
	"fruitbox-be/internal/utils"

	"go.uber.org/zap"
)

const (
	msgCreateOrderFailed  = "Failed to create Razorpay order"
	msgVerificationError  = "Payment verification error"
	msgVerificationFailed = "Verification failed"
	msgInvalidBody        = "invalid request body"
)

type CreateOrderRequest struct {
	Amount   json.RawMessage  `json:"amount"`
	Currency string           `json:"currency,omitempty"`
	Customer *CustomerPayload `json:"customer,omitempty"`
}

type CustomerPayload struct {
	ID       string           `json:"id,omitempty"`
	Email    string           `json:"email,omitempty"`
	Name     string           `json:"name,omitempty"`
	Address  string           `json:"address,omitempty"`
	Location *LocationPayload `json:"location,omitempty"`
}

type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	KeyID    string `json:"keyId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest mirrors the checkout widget's success callback.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Handler struct {
	PaymentSvc payment.Service
}

func NewHandler(svc payment.Service) *Handler {
	return &Handler{PaymentSvc: svc}
}

// CreateOrder handles POST /create-order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	var req CreateOrderRequest
	if err := utils.DecodeJSONStrict(w, r, &req); err != nil {
		log.Info("Invalid create-order body", zap.Error(err))
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, err, msgCreateOrderFailed)
		return
	}

	in := payment.OrderRequest{Amount: amount, Currency: req.Currency}
	if req.Customer != nil {
		in.Customer = payment.Customer{
			ID:      strings.TrimSpace(req.Customer.ID),
			Email:   strings.TrimSpace(req.Customer.Email),
			Name:    strings.TrimSpace(req.Customer.Name),
			Address: strings.TrimSpace(req.Customer.Address),
		}
		if loc := req.Customer.Location; loc != nil {
			in.Customer.Location = &payment.Location{Lat: loc.Lat, Lng: loc.Lng}
		}
	}

	order, err := h.PaymentSvc.CreateOrder(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgCreateOrderFailed)
		return
	}

	utils.WriteJSON(w, http.StatusOK, CreateOrderResponse{
		OrderID:  order.ProviderOrderID,
		KeyID:    order.KeyID,
		Amount:   order.AmountMinor,
		Currency: order.Currency,
	})
}

// VerifyPayment handles POST /verify-payment.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	var req VerifyPaymentRequest
	if err := utils.DecodeJSONStrict(w, r, &req); err != nil {
		log.Info("Invalid verify-payment body", zap.Error(err))
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	res, err := h.PaymentSvc.VerifyPayment(r.Context(), payment.VerificationRequest{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		writeServiceError(w, err, msgVerificationError)
		return
	}

	if !res.Verified {
		utils.WriteJSON(w, http.StatusBadRequest, VerifyPaymentResponse{Success: false, Message: msgVerificationFailed})
		return
	}
	utils.WriteJSON(w, http.StatusOK, VerifyPaymentResponse{Success: true})
}

// writeServiceError maps validation errors to 400 with their message and
// everything else to 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error, generic string) {
	var vErr *payment.ValidationError
	if errors.As(err, &vErr) {
		utils.WriteJSONError(w, vErr.Message, http.StatusBadRequest)
		return
	}
	utils.WriteJSONError(w, generic, http.StatusInternalServerError)
}

// parseAmount accepts a JSON number or a numeric string, as the storefront
// has sent both.
func parseAmount(raw json.RawMessage) (float64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, &payment.ValidationError{Field: "amount", Message: "amount is required"}
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, nil
		}
	}
	return 0, &payment.ValidationError{Field: "amount", Message: "amount must be a number"}
}
