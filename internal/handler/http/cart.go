package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/service"
	"github.com/eldenfruit/storefront/pkg/httputil"
	"github.com/eldenfruit/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
// The service validates product id and name so the storefront gets its
// notice for those too.
type AddItemRequest struct {
	ProductID domain.ProductID `json:"product_id"`
	Name      string           `json:"name"`
	Price     string           `json:"price"`
	Image     string           `json:"image"`
	Quantity  int              `json:"quantity" validate:"gte=0,lte=99"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
// Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// ApplyPromoRequest is the JSON request body for applying a promo code.
type ApplyPromoRequest struct {
	Code string `json:"code"`
}

// ConfirmRequest answers a pending confirmation.
type ConfirmRequest struct {
	Accept bool `json:"accept"`
}

// pendingResponse is returned with 202 when a mutation awaits confirmation.
type pendingResponse struct {
	Confirmation *service.Confirmation `json:"confirmation"`
}

// confirmResponse is returned once a confirmation is answered.
type confirmResponse struct {
	Outcome *service.Outcome `json:"outcome"`
	Cart    *service.Summary `json:"cart"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeSummary(w, r, http.StatusOK)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	_, err := h.service.AddItem(r.Context(), service.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSummary(w, r, http.StatusOK)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := h.service.SetQuantity(r.Context(), productIDParam(r), *req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeSummary(w, r, http.StatusOK)
}

// IncrementItem handles POST /api/v1/cart/items/{productId}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Increment(r.Context(), productIDParam(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// DecrementItem handles POST /api/v1/cart/items/{productId}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Decrement(r.Context(), productIDParam(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}. The removal only
// happens once the returned confirmation is accepted.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RequestRemoval(r.Context(), productIDParam(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if c == nil {
		h.writeSummary(w, r, http.StatusOK)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, pendingResponse{Confirmation: c})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RequestClear(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if c == nil {
		h.writeSummary(w, r, http.StatusOK)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, pendingResponse{Confirmation: c})
}

// Checkout handles POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RequestCheckout(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusAccepted, pendingResponse{Confirmation: c})
}

// GetQuote handles GET /api/v1/cart/quote
func (h *CartHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.Quote(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, q)
}

// Confirm handles POST /api/v1/cart/confirmations/{id}
func (h *CartHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	out, err := h.service.Confirm(r.Context(), id.String(), req.Accept)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sum, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, confirmResponse{Outcome: out, Cart: sum})
}

// ApplyPromo handles POST /api/v1/cart/promo
func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req ApplyPromoRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := h.service.ApplyPromo(r.Context(), req.Code); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

// ClearPromo handles DELETE /api/v1/cart/promo
func (h *CartHandler) ClearPromo(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.ClearPromo(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeSummary(w, r, http.StatusOK)
}

func (h *CartHandler) writeSummary(w http.ResponseWriter, r *http.Request, status int) {
	sum, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, status, sum)
}

func productIDParam(r *http.Request) domain.ProductID {
	return domain.ProductID(chi.URLParam(r, "productId"))
}
