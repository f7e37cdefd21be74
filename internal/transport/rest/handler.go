// Package rest provides HTTP handlers for storefront operations.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CatalogHandler serves the read-only catalog endpoints.
type CatalogHandler struct {
	service catalog.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new instance of CatalogHandler with the provided service.
func NewCatalogHandler(service catalog.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog.
func (h *CatalogHandler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/{id}", h.FindByID)
	})
	r.Get("/api/v1/categories", h.Categories)
	r.Get("/healthz", h.HealthCheck)
}

// List retrieves a catalog page filtered, sorted and paginated per the query parameters.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParseValidateGteDefault(r, w, mLogger, "page", 1, 1)
	if !ok {
		return
	}
	query := catalog.ListQuery{
		Search:    r.URL.Query().Get("search"),
		Category:  r.URL.Query().Get("category"),
		Sort:      r.URL.Query().Get("sort"),
		Direction: r.URL.Query().Get("direction"),
		Page:      page,
	}

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"search", query.Search, "category", query.Category, "sort", query.Sort, "direction", query.Direction, "page", query.Page)
	result, err := h.service.List(r.Context(), query)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(result.Items), "total", result.Pagination.Total)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// FindByID retrieves a product by its ID.
func (h *CatalogHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Categories retrieves the list of product categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving categories", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, categories)
}

// Featured retrieves the latest products for the home page.
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	products, err := h.service.Featured(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving featured products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch featured products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

// HealthCheck is a simple health check endpoint.
func (h *CatalogHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *CatalogHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
