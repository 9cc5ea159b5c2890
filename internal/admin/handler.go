package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fruitbox-be/internal/auth"
	"fruitbox-be/internal/logger"
	"fruitbox-be/internal/middleware"
	"fruitbox-be/internal/order"
	"fruitbox-be/internal/subscription"
	"fruitbox-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type DeliveryRequest struct {
	Status string `json:"status"`
}

type Handler struct {
	OrderSvc order.Service
	Auth     *auth.Authenticator
	now      func() time.Time
}

func NewHandler(orderSvc order.Service, authenticator *auth.Authenticator) *Handler {
	return &Handler{
		OrderSvc: orderSvc,
		Auth:     authenticator,
		now:      time.Now,
	}
}

// Routes mounts the dashboard under the caller's router. Everything except
// login requires an admin token.
func (h *Handler) Routes(limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.With(limiter.Middleware).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.Auth.Secret()))
		r.Use(limiter.Middleware)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Patch("/orders/{id}/delivery", h.UpdateDelivery)
		r.Get("/subscriptions", h.Subscriptions)
		r.Get("/attendance", h.Attendance)
		r.Get("/analytics", h.Analytics)
	})

	return r
}

// Login handles POST /admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSONStrict(w, r, &req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.WriteJSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrAdminNotConfigured):
		utils.WriteJSONError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		logger.FromCtx(r.Context()).Error("Admin login failed", zap.Error(err))
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	utils.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// ListOrders handles GET /admin/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		utils.WriteJSONError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		utils.WriteJSONError(w, "offset must be an integer", http.StatusBadRequest)
		return
	}

	orders, err := h.OrderSvc.List(r.Context(), order.ListFilter{
		Status:         order.Status(q.Get("status")),
		DeliveryStatus: order.DeliveryStatus(q.Get("delivery")),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, MapOrders(orders))
}

// GetOrder handles GET /admin/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrderSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, MapOrder(o))
}

// UpdateDelivery handles PATCH /admin/orders/{id}/delivery.
func (h *Handler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequest
	if err := utils.DecodeJSONStrict(w, r, &req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.OrderSvc.UpdateDeliveryStatus(r.Context(), chi.URLParam(r, "id"), order.DeliveryStatus(req.Status))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	logger.FromCtx(r.Context()).Info("Delivery marked by admin",
		zap.String("provider_order_id", o.ProviderOrderID),
		zap.String("actor", utils.GetActorEmailFromContext(r.Context())),
	)
	utils.WriteJSON(w, http.StatusOK, MapOrder(o))
}

// Subscriptions handles GET /admin/subscriptions.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderSvc.ConfirmedOrders(r.Context())
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, MapSummaries(subscription.Summarize(orders, h.now())))
}

// Attendance handles GET /admin/attendance?date=YYYY-MM-DD. Today (UTC) when
// date is omitted.
func (h *Handler) Attendance(w http.ResponseWriter, r *http.Request) {
	day := h.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			utils.WriteJSONError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	a, err := h.OrderSvc.Attendance(r.Context(), day)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, MapAttendance(a))
}

// Analytics handles GET /admin/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.OrderSvc.Analytics(r.Context())
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, MapAnalytics(a))
}

func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidDeliveryStatus):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrDeliveryNotAllowed),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrStatusConflict):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromCtx(r.Context()).Error("Admin request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
