package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/cart"
	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// AddItemDto represents the request body for adding a product to the cart.
// Quantity defaults to 1 when omitted.
type AddItemDto struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int32 `json:"quantity" validate:"omitempty,min=1,max=10"`
}

// UpdateItemDto represents the request body for setting a cart line's quantity.
type UpdateItemDto struct {
	Quantity int32 `json:"quantity" validate:"required,min=1,max=10"`
}

// CartHandler serves the session-scoped cart endpoints.
type CartHandler struct {
	service  cart.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCartHandler creates a new instance of CartHandler with the provided service.
func NewCartHandler(service cart.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the cart. All routes require
// the X-Session-Id header.
func (h *CartHandler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(web.SessionMiddleware)
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.View)
			r.Post("/", h.Add)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.SetQuantity)
				r.Delete("/", h.Remove)
			})
		})
	})
}

// View retrieves the session's cart with totals.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	sessionID, ok := web.GetSessionID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to view cart")
	view, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved cart", "lines", len(view.Items), "item_count", view.ItemCount)
	web.RespondJSON(w, mLogger, http.StatusOK, view)
}

// Add handles adding a product to the session's cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	sessionID, ok := web.GetSessionID(w, r, mLogger)
	if !ok {
		return
	}
	var addItemDto AddItemDto
	if err := json.NewDecoder(r.Body).Decode(&addItemDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, addItemDto) {
		return
	}
	// Quantity is optional on add, one unit by default.
	if addItemDto.Quantity == 0 {
		addItemDto.Quantity = 1
	}

	mLogger.DebugContext(r.Context(), "Received request to add product to cart", "product_id", addItemDto.ProductID, "quantity", addItemDto.Quantity)
	item, err := h.service.Add(r.Context(), sessionID, addItemDto.ProductID, addItemDto.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, sferrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found", "product_id", addItemDto.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", addItemDto.ProductID))
		case errors.Is(err, sferrors.ErrProductUnavailable):
			mLogger.WarnContext(r.Context(), "Product not available", "product_id", addItemDto.ProductID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Product is not available")
		case errors.Is(err, sferrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Insufficient stock", "product_id", addItemDto.ProductID, "quantity", addItemDto.Quantity)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Not enough stock available")
		default:
			mLogger.ErrorContext(r.Context(), "Error adding product to cart", "product_id", addItemDto.ProductID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add product to cart")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product added to cart", "line_id", item.ID, "quantity", item.Quantity)
	web.RespondJSON(w, mLogger, http.StatusCreated, item)
}

// SetQuantity handles overwriting the quantity of a cart line.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	sessionID, ok := web.GetSessionID(w, r, mLogger)
	if !ok {
		return
	}
	var updateItemDto UpdateItemDto
	if err := json.NewDecoder(r.Body).Decode(&updateItemDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateDto(w, r, mLogger, updateItemDto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update cart line", "ID", id, "quantity", updateItemDto.Quantity)
	item, err := h.service.SetQuantity(r.Context(), sessionID, id, updateItemDto.Quantity)
	if err != nil {
		h.respondCartLineError(w, r, mLogger, id, err, "Error updating cart line")
		return
	}
	mLogger.InfoContext(r.Context(), "Cart line updated", "line_id", item.ID, "quantity", item.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, item)
}

// Remove handles deleting a cart line.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	sessionID, ok := web.GetSessionID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to remove cart line", "ID", id)
	if err := h.service.Remove(r.Context(), sessionID, id); err != nil {
		h.respondCartLineError(w, r, mLogger, id, err, "Error removing cart line")
		return
	}
	mLogger.InfoContext(r.Context(), "Cart line removed", "line_id", id)
	web.RespondJSON(w, mLogger, http.StatusNoContent, nil)
}

// respondCartLineError maps cart line errors shared by SetQuantity and Remove.
func (h *CartHandler) respondCartLineError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id int64, err error, logMessage string) {
	switch {
	case errors.Is(err, sferrors.ErrCartItemNotFound):
		mLogger.WarnContext(r.Context(), "Cart line not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Cart line with ID %d not found", id))
	case errors.Is(err, sferrors.ErrAccessDenied):
		mLogger.WarnContext(r.Context(), "Access denied to cart line", "ID", id)
		web.RespondError(w, mLogger, http.StatusForbidden, fmt.Sprintf("Access denied to cart line with ID %d", id))
	case errors.Is(err, sferrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product of cart line not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product of cart line with ID %d not found", id))
	case errors.Is(err, sferrors.ErrInsufficientStock):
		mLogger.WarnContext(r.Context(), "Insufficient stock", "ID", id)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Not enough stock available")
	default:
		mLogger.ErrorContext(r.Context(), logMessage, "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to process cart line")
	}
}

// validateDto runs struct validation and writes field errors to the response.
func (h *CartHandler) validateDto(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		// If it's not a validation error, we can return a generic error.
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *CartHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
