// Package store provides interfaces for product and cart storage operations.
package store

import (
	"context"
	"time"
)

// Product represents a catalog product entity.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64 // Price in cents
	ImageURL    string
	Stock       int32
	Category    string
	IsActive    bool
	CreatedAt   *time.Time
}

// CartItem represents one product's quantity commitment within one session's cart.
// Price is a snapshot of the product price at the time of the first add.
type CartItem struct {
	ID        int64
	SessionID string
	ProductID int64
	Quantity  int32
	Price     int64 // Price in cents, captured at first add
	CreatedAt *time.Time
}

// ListProductsParams carries catalog filtering, sorting and pagination criteria.
// SortBy and SortDir must already be normalized to the supported values.
type ListProductsParams struct {
	Search   string
	Category string
	SortBy   string
	SortDir  string
	Offset   int32
	Limit    int32
}

// CreateCartItemParams carries the fields required to create a new cart line.
type CreateCartItemParams struct {
	SessionID string
	ProductID int64
	Quantity  int32
	Price     int64
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindByIDs retrieves products by IDs.
	// It returns a slice of products, which may be empty if no products exist.
	FindByIDs(ctx context.Context, ids []int64) ([]Product, error)

	// List returns active, in-stock products matching the given criteria,
	// together with the total number of matches before pagination.
	List(ctx context.Context, params ListProductsParams) ([]Product, int64, error)

	// Categories returns the distinct non-empty categories of active products,
	// sorted ascending.
	Categories(ctx context.Context) ([]string, error)

	// FindLatestActive returns up to limit active, in-stock products,
	// newest first.
	FindLatestActive(ctx context.Context, limit int32) ([]Product, error)
}

// CartStore is an interface for cart line storage operations.
// At most one line exists per (session, product) pair.
type CartStore interface {
	// FindItemByID retrieves a single cart line by its unique identifier.
	// Returns ErrCartItemNotFound if no line exists with the given ID.
	FindItemByID(ctx context.Context, id int64) (*CartItem, error)

	// FindBySessionAndProduct retrieves the line for the given session and product.
	// Returns ErrCartItemNotFound if the session has no line for the product.
	FindBySessionAndProduct(ctx context.Context, sessionID string, productID int64) (*CartItem, error)

	// FindBySession returns all lines of the given session in insertion order.
	// Returns an empty slice if the session has no lines.
	FindBySession(ctx context.Context, sessionID string) ([]CartItem, error)

	// Create adds a new cart line.
	// Returns error if the line cannot be created.
	Create(ctx context.Context, params CreateCartItemParams) (*CartItem, error)

	// UpdateQuantity overwrites the quantity of an existing line.
	// Returns ErrCartItemNotFound if no line exists with the given ID.
	UpdateQuantity(ctx context.Context, id int64, quantity int32) (*CartItem, error)

	// Delete removes a cart line by its unique identifier.
	// Returns ErrCartItemNotFound if no line exists with the given ID.
	Delete(ctx context.Context, id int64) error
}
