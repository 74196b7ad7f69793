package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/egannguyen/go-ecommerce-backend/internal/auth"
	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/service"
)

// Handler handles HTTP requests for the application. It only parses and
// shape-validates input; business rules live in the services.
type Handler struct {
	users   *service.UserService
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
	tokens  *auth.TokenIssuer
}

func NewHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	tokens *auth.TokenIssuer,
) *Handler {
	return &Handler{
		users:   users,
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		tokens:  tokens,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.Handle("GET /api/auth/me", h.requireAuth(h.handleMe))

	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.Handle("POST /api/products", h.requireAdmin(h.handleCreateProduct))
	mux.Handle("PATCH /api/products/{id}", h.requireAdmin(h.handleUpdateProduct))
	mux.Handle("DELETE /api/products/{id}", h.requireAdmin(h.handleDeleteProduct))

	mux.HandleFunc("GET /api/categories", h.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", h.handleGetCategory)
	mux.Handle("POST /api/categories", h.requireAdmin(h.handleCreateCategory))

	mux.Handle("GET /api/cart", h.requireAuth(h.handleGetCart))
	mux.Handle("POST /api/cart/items", h.requireAuth(h.handleAddToCart))
	mux.Handle("PATCH /api/cart/items/{id}", h.requireAuth(h.handleUpdateCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", h.requireAuth(h.handleRemoveFromCart))
	mux.Handle("DELETE /api/cart", h.requireAuth(h.handleClearCart))

	mux.Handle("POST /api/orders", h.requireAuth(h.handleCreateOrder))
	mux.Handle("GET /api/orders", h.requireAuth(h.handleGetOrders))
	mux.Handle("GET /api/orders/{id}", h.requireAuth(h.handleGetOrder))
	mux.Handle("DELETE /api/orders/{id}", h.requireAuth(h.handleCancelOrder))
	mux.Handle("GET /api/admin/orders", h.requireAdmin(h.handleGetAllOrders))
	mux.Handle("PATCH /api/admin/orders/{id}/status", h.requireAdmin(h.handleUpdateOrderStatus))
}

// requireAuth verifies the bearer token and stores the identity in the
// request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := h.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// requireAdmin is requireAuth plus a role check.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		if !identity.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnableCORS is a middleware to allow browser frontends to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// writeServiceError maps business errors to HTTP statuses. Anything not in
// the taxonomy is an infrastructure failure and stays opaque to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		notFound   *entity.NotFoundError
		noStock    *entity.InsufficientStockError
		badTransit *entity.InvalidTransitionError
		badRequest *entity.BadRequestError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &noStock), errors.As(err, &badTransit), errors.As(err, &badRequest),
		errors.Is(err, entity.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("Request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
