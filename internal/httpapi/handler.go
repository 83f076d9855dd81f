// Package httpapi serves a cart over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bft-labs/cartkeeper/pkg/cart"
	"github.com/bft-labs/cartkeeper/pkg/log"
)

// CartService is the cart surface exposed over HTTP. *cart.Cart implements it.
type CartService interface {
	Products() ([]cart.LineItem, error)
	AddToCart(ctx context.Context, item cart.ItemDescriptor) ([]cart.LineItem, error)
	Increment(ctx context.Context, id string) ([]cart.LineItem, error)
	Decrement(ctx context.Context, id string) ([]cart.LineItem, error)
	Reload(ctx context.Context) (bool, error)
	Reset(ctx context.Context) error
}

// CartResponse is the body of every successful cart request.
type CartResponse struct {
	Items []cart.LineItem `json:"items"`

	// Changed is set by reload.
	Changed *bool `json:"changed,omitempty"`

	// Warning is set when the change was applied but not persisted.
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// Handler handles cart API requests.
type Handler struct {
	cart   CartService
	logger log.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc CartService, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Handler{cart: svc, logger: logger}
}

// RegisterRoutes registers the cart API routes with the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/cart", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/cart", h.ResetCart).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}/increment", h.IncrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}/decrement", h.DecrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/reload", h.ReloadCart).Methods(http.MethodPost)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// ListItems handles GET /api/v1/cart requests.
func (h *Handler) ListItems(w http.ResponseWriter, _ *http.Request) {
	items, err := h.cart.Products()
	if err != nil {
		h.handleCartError(w, items, err, "list items")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items)})
}

// AddItem handles POST /api/v1/cart/items requests.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var input cart.ItemDescriptor
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", log.Err(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.cart.AddToCart(r.Context(), input)
	if err != nil {
		h.handleCartError(w, items, err, "add item")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items)})
}

// IncrementItem handles POST /api/v1/cart/items/{id}/increment requests.
func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	items, err := h.cart.Increment(r.Context(), id)
	if err != nil {
		h.handleCartError(w, items, err, "increment item")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items)})
}

// DecrementItem handles POST /api/v1/cart/items/{id}/decrement requests.
func (h *Handler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	items, err := h.cart.Decrement(r.Context(), id)
	if err != nil {
		h.handleCartError(w, items, err, "decrement item")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items)})
}

// ReloadCart handles POST /api/v1/cart/reload requests.
func (h *Handler) ReloadCart(w http.ResponseWriter, r *http.Request) {
	changed, err := h.cart.Reload(r.Context())
	if err != nil {
		h.handleCartError(w, nil, err, "reload cart")
		return
	}
	items, err := h.cart.Products()
	if err != nil {
		h.handleCartError(w, nil, err, "reload cart")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items), Changed: &changed})
}

// ResetCart handles DELETE /api/v1/cart requests.
func (h *Handler) ResetCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Reset(r.Context()); err != nil {
		h.handleCartError(w, nil, err, "reset cart")
		return
	}
	h.writeJSON(w, http.StatusOK, CartResponse{Items: []cart.LineItem{}})
}

// handleCartError maps cart errors to HTTP responses. A write failure still
// answers 200 because the change is already visible in the cart.
func (h *Handler) handleCartError(w http.ResponseWriter, items []cart.LineItem, err error, operation string) {
	var pwe *cart.PersistenceWriteError
	switch {
	case errors.As(err, &pwe):
		h.logger.Warn("cart change not persisted", log.String("operation", operation), log.Err(err))
		h.writeJSON(w, http.StatusOK, CartResponse{Items: nonNil(items), Warning: "change not persisted: " + err.Error()})
	case errors.Is(err, cart.ErrInvalidItem):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, cart.ErrNotInitialized):
		h.writeError(w, http.StatusServiceUnavailable, "cart not available")
	default:
		h.logger.Error("cart operation failed", log.String("operation", operation), log.Err(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", log.Err(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func nonNil(items []cart.LineItem) []cart.LineItem {
	if items == nil {
		return []cart.LineItem{}
	}
	return items
}
