package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lumenmarket/storefront/internal/cart"
	"github.com/lumenmarket/storefront/internal/catalog"
	"github.com/lumenmarket/storefront/internal/copywriter"
	"github.com/lumenmarket/storefront/internal/coupon"
	"github.com/lumenmarket/storefront/internal/entity"
	"github.com/lumenmarket/storefront/internal/order"
	"github.com/lumenmarket/storefront/internal/pricing"
	"github.com/lumenmarket/storefront/internal/repository"
	"github.com/lumenmarket/storefront/internal/storeerr"
)

// Handler handles HTTP requests for the storefront.
type Handler struct {
	catalog *catalog.Service
	orders  *order.Engine
	coupons *coupon.Ledger
	carts   *cart.Service
	pricer  *pricing.Calculator
	copy    *copywriter.Client
	audit   repository.AuditRepository
}

func NewHandler(
	catalogSvc *catalog.Service,
	orders *order.Engine,
	coupons *coupon.Ledger,
	carts *cart.Service,
	pricer *pricing.Calculator,
	copy *copywriter.Client,
	audit repository.AuditRepository,
) *Handler {
	return &Handler{catalog: catalogSvc, orders: orders, coupons: coupons, carts: carts, pricer: pricer, copy: copy, audit: audit}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("POST /api/products", h.handleSaveProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.handleDeleteProduct)
	mux.HandleFunc("POST /api/products/{id}/stock", h.handleAdjustStock)
	mux.HandleFunc("GET /api/products/export", h.handleExportProducts)
	mux.HandleFunc("POST /api/products/{id}/copy", h.handleGenerateCopy)

	mux.HandleFunc("GET /api/orders", h.handleListOrders)
	mux.HandleFunc("POST /api/orders", h.handleCheckout)
	mux.HandleFunc("POST /api/orders/{id}/status", h.handleUpdateOrderStatus)

	mux.HandleFunc("GET /api/coupons", h.handleListCoupons)
	mux.HandleFunc("POST /api/coupons", h.handleCreateCoupon)
	mux.HandleFunc("DELETE /api/coupons/{id}", h.handleDeleteCoupon)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart/items", h.handleAddCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{lineID}", h.handleRemoveCartItem)

	mux.HandleFunc("GET /api/audit", h.handleRecentAudit)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context(), listFilterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func listFilterFromQuery(r *http.Request) catalog.ListFilter {
	q := r.URL.Query()
	return catalog.ListFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Stock:    catalog.StockBucket(q.Get("stock")),
		SortBy:   q.Get("sort"),
		SortDesc: q.Get("dir") == "desc",
	}
}

func (h *Handler) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var p entity.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	saved, err := h.catalog.Save(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	policy := catalog.DeletePolicy(r.URL.Query().Get("policy"))
	if err := h.catalog.Delete(r.Context(), r.PathValue("id"), policy); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.catalog.AdjustStock(r.Context(), r.PathValue("id"), req.Delta); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ExportDelimited(r.Context(), listFilterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+catalog.ExportFilename(time.Now()))
	w.Write([]byte(out))
}

// handleGenerateCopy returns marketing copy for a product. Generated
// text is cached per product version; when the provider is in cooldown
// the response carries empty text and the client falls back to the
// stored description.
func (h *Handler) handleGenerateCopy(w http.ResponseWriter, r *http.Request) {
	if h.copy == nil {
		http.Error(w, "copy generation is not configured", http.StatusServiceUnavailable)
		return
	}
	p, err := h.catalog.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	cacheKey := "product:" + p.ID + ":" + p.UpdatedAt.UTC().Format(time.RFC3339)
	text, err := h.copy.Generate(r.Context(), cacheKey, p.Name+" | "+p.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"product_id": p.ID, "text": text})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// CheckoutRequest places an order from the session cart.
type CheckoutRequest struct {
	CustomerName    string  `json:"customer_name"`
	CustomerEmail   string  `json:"customer_email"`
	PaymentMethod   string  `json:"payment_method"`
	ShippingAddress string  `json:"shipping_address"`
	CouponCode      string  `json:"coupon_code"`
	ShippingFee     float64 `json:"shipping_fee"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lines, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	applied, err := h.coupons.FindApplicable(r.Context(), req.CouponCode)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.CouponCode != "" && applied == nil {
		http.Error(w, "coupon code is not valid", http.StatusBadRequest)
		return
	}

	quote := h.pricer.Quote(lines, applied, req.ShippingFee)
	placed, err := h.orders.PlaceOrder(r.Context(), lines, order.CustomerInfo{
		Name:            req.CustomerName,
		Email:           req.CustomerEmail,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}, quote)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		slog.Error("Failed to clear cart after checkout", "session", sessionID, "err", err)
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status entity.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

func (h *Handler) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c entity.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.coupons.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleDeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	lines, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	lines, err := h.carts.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFrom(r)
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	lines, err := h.carts.RemoveLine(r.Context(), sessionID, r.PathValue("lineID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	if n <= 0 {
		n = 100
	}
	entries, err := h.audit.Recent(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func sessionIDFrom(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses, keeping the specific
// precondition message for the client.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *storeerr.Error
	if errors.As(err, &domainErr) {
		http.Error(w, domainErr.Message, domainErr.Code.HTTPStatus())
		return
	}
	slog.Error("Request failed", "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// EnableCORS is middleware to allow the storefront frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
