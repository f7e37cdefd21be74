// Package cart provides the implementation of session-scoped cart
// reconciliation logic. A cart holds at most one line per product, and a
// line's quantity never exceeds the product's stock as observed at
// operation time. Stock checks are advisory snapshots: no lock is held
// between the check and the write.
package cart

import (
	"context"
	"errors"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/shopspring/decimal"
)

// CartService defines the methods for managing a session's shopping cart.
// It abstracts the underlying business logic and data access.
type CartService interface {
	// Add puts quantity units of a product into the session's cart,
	// incrementing the existing line if one exists. The unit price is
	// snapshotted from the product on first add and never updated.
	// Returns ErrProductNotFound if the product does not exist,
	// ErrProductUnavailable if it is inactive or out of stock, and
	// ErrInsufficientStock if the resulting quantity would exceed stock.
	Add(ctx context.Context, sessionID string, productID int64, quantity int32) (*ItemDto, error)

	// SetQuantity overwrites the quantity of an existing line. Unlike Add
	// this is an absolute set, not an increment.
	// Returns ErrCartItemNotFound if the line does not exist,
	// ErrAccessDenied if it belongs to another session, and
	// ErrInsufficientStock if quantity exceeds the product's stock.
	SetQuantity(ctx context.Context, sessionID string, itemID int64, quantity int32) (*ItemDto, error)

	// Remove deletes a line from the session's cart.
	// Returns ErrCartItemNotFound if the line does not exist and
	// ErrAccessDenied if it belongs to another session.
	Remove(ctx context.Context, sessionID string, itemID int64) error

	// View returns all lines of the session joined with their products,
	// plus the computed total and item count.
	View(ctx context.Context, sessionID string) (*CartDto, error)
}

// Service implements CartService and provides methods to manage cart lines.
type Service struct {
	cartStore    store.CartStore
	productStore store.ProductStore
}

// NewService creates a new instance of CartService with the provided stores.
func NewService(cartStore store.CartStore, productStore store.ProductStore) *Service {
	return &Service{
		cartStore:    cartStore,
		productStore: productStore,
	}
}

// ProductSummaryDto is the slice of a product a cart line exposes.
type ProductSummaryDto struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Stock    int32  `json:"stock"`
}

// ItemDto represents the data transfer object for a cart line.
// UnitPrice is the snapshot captured at first add, not the live product price.
type ItemDto struct {
	ID        int64             `json:"id"`
	Product   ProductSummaryDto `json:"product"`
	Quantity  int32             `json:"quantity"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	LineTotal decimal.Decimal   `json:"line_total"`
}

// CartDto represents the data transfer object for a session's cart view.
type CartDto struct {
	Items     []ItemDto       `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int32           `json:"item_count"`
}

// Add puts quantity units of a product into the session's cart.
func (s *Service) Add(ctx context.Context, sessionID string, productID int64, quantity int32) (*ItemDto, error) {
	product, err := s.productStore.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || product.Stock < 1 {
		return nil, sferrors.ErrProductUnavailable
	}

	existing, err := s.cartStore.FindBySessionAndProduct(ctx, sessionID, productID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			return nil, sferrors.ErrInsufficientStock
		}
		updated, err := s.cartStore.UpdateQuantity(ctx, existing.ID, newQuantity)
		if err != nil {
			return nil, err
		}
		return toItemDto(updated, product), nil
	case errors.Is(err, sferrors.ErrCartItemNotFound):
		if quantity > product.Stock {
			return nil, sferrors.ErrInsufficientStock
		}
		created, err := s.cartStore.Create(ctx, store.CreateCartItemParams{
			SessionID: sessionID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
		if err != nil {
			return nil, err
		}
		return toItemDto(created, product), nil
	default:
		return nil, err
	}
}

// SetQuantity overwrites the quantity of an existing line.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, itemID int64, quantity int32) (*ItemDto, error) {
	item, err := s.cartStore.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.SessionID != sessionID {
		return nil, sferrors.ErrAccessDenied
	}

	product, err := s.productStore.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, sferrors.ErrInsufficientStock
	}

	updated, err := s.cartStore.UpdateQuantity(ctx, item.ID, quantity)
	if err != nil {
		return nil, err
	}
	return toItemDto(updated, product), nil
}

// Remove deletes a line from the session's cart.
func (s *Service) Remove(ctx context.Context, sessionID string, itemID int64) error {
	item, err := s.cartStore.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.SessionID != sessionID {
		return sferrors.ErrAccessDenied
	}
	return s.cartStore.Delete(ctx, item.ID)
}

// View returns all lines of the session joined with their products.
func (s *Service) View(ctx context.Context, sessionID string) (*CartDto, error) {
	items, err := s.cartStore.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productStore.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[int64]*store.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	cart := &CartDto{
		Items: make([]ItemDto, 0, len(items)),
		Total: decimal.Zero,
	}
	for i := range items {
		// Product rows can disappear underneath a line; such lines are
		// dropped from the view rather than rendered without a product.
		product, ok := productsByID[items[i].ProductID]
		if !ok {
			continue
		}
		dto := toItemDto(&items[i], product)
		cart.Items = append(cart.Items, *dto)
		cart.Total = cart.Total.Add(dto.LineTotal)
		cart.ItemCount += items[i].Quantity
	}
	return cart, nil
}

// toItemDto converts a store.CartItem and its product to an ItemDto.
func toItemDto(item *store.CartItem, product *store.Product) *ItemDto {
	unitPrice := decimal.NewFromInt(item.Price).Shift(-2)
	return &ItemDto{
		ID: item.ID,
		Product: ProductSummaryDto{
			ID:       product.ID,
			Name:     product.Name,
			ImageURL: product.ImageURL,
			Stock:    product.Stock,
		},
		Quantity:  item.Quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
	}
}
