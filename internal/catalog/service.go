// Package catalog provides the implementation of catalog browsing logic.
package catalog

import (
	"context"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/shopspring/decimal"
)

// PageSize is the fixed number of products per catalog page.
const PageSize = 12

// FeaturedCount is the number of products shown on the home page.
const FeaturedCount = 8

// CatalogService defines the methods for browsing the product catalog.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// List returns the catalog page matching the given query.
	// Unmatched filters yield an empty page, not an error.
	List(ctx context.Context, query ListQuery) (*PageDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if the product is absent or inactive.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// Categories returns the distinct non-empty categories of active
	// products, sorted ascending.
	Categories(ctx context.Context) ([]string, error)

	// Featured returns the latest active, in-stock products, newest first.
	Featured(ctx context.Context) ([]ProductDto, error)
}

// Service implements CatalogService on top of a ProductStore.
type Service struct {
	productStore store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided productStore.
func NewService(productStore store.ProductStore) *Service {
	return &Service{productStore: productStore}
}

// ListQuery carries the catalog filter, sort and pagination criteria.
// Zero values mean "no filter"; unrecognized sort keys fall back to name.
type ListQuery struct {
	Search    string
	Category  string
	Sort      string
	Direction string
	Page      int32
}

// ProductDto represents the data transfer object for a catalog product.
type ProductDto struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Stock       int32           `json:"stock"`
	Category    string          `json:"category,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// PaginationDto describes the position of a page within the full result set.
type PaginationDto struct {
	Page       int32 `json:"page"`
	PerPage    int32 `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int32 `json:"total_pages"`
}

// FiltersDto echoes the normalized filters the page was built with.
type FiltersDto struct {
	Search    string `json:"search,omitempty"`
	Category  string `json:"category,omitempty"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
}

// PageDto represents one catalog page with its pagination metadata.
type PageDto struct {
	Items      []ProductDto  `json:"items"`
	Pagination PaginationDto `json:"pagination"`
	Filters    FiltersDto    `json:"filters"`
}

// List returns the catalog page matching the given query. Only active
// products with stock > 0 are returned.
func (s *Service) List(ctx context.Context, query ListQuery) (*PageDto, error) {
	sortBy := normalizeSort(query.Sort)
	sortDir := normalizeDirection(query.Direction)
	page := query.Page
	if page < 1 {
		page = 1
	}

	products, total, err := s.productStore.List(ctx, store.ListProductsParams{
		Search:   query.Search,
		Category: query.Category,
		SortBy:   sortBy,
		SortDir:  sortDir,
		Offset:   (page - 1) * PageSize,
		Limit:    PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ProductDto, 0, len(products))
	for i := range products {
		items = append(items, *toDto(&products[i]))
	}

	return &PageDto{
		Items: items,
		Pagination: PaginationDto{
			Page:       page,
			PerPage:    PageSize,
			Total:      total,
			TotalPages: int32((total + PageSize - 1) / PageSize),
		},
		Filters: FiltersDto{
			Search:    query.Search,
			Category:  query.Category,
			Sort:      sortBy,
			Direction: sortDir,
		},
	}, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Inactive products are hidden and reported as not found.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.productStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, sferrors.ErrProductNotFound
	}
	return toDto(product), nil
}

// Categories returns the distinct non-empty categories of active products.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.productStore.Categories(ctx)
}

// Featured returns the latest active, in-stock products as ProductDtos.
func (s *Service) Featured(ctx context.Context) ([]ProductDto, error) {
	products, err := s.productStore.FindLatestActive(ctx, FeaturedCount)
	if err != nil {
		return nil, err
	}
	items := make([]ProductDto, 0, len(products))
	for i := range products {
		items = append(items, *toDto(&products[i]))
	}
	return items, nil
}

// normalizeSort whitelists the sort key, falling back to name.
func normalizeSort(sort string) string {
	switch sort {
	case "name", "price", "created_at":
		return sort
	default:
		return "name"
	}
}

// normalizeDirection whitelists the sort direction, falling back to asc.
func normalizeDirection(direction string) string {
	if direction == "desc" {
		return "desc"
	}
	return "asc"
}

// toDto converts a store.Product to a ProductDto.
func toDto(p *store.Product) *ProductDto {
	var createdAt string
	if p.CreatedAt != nil {
		createdAt = p.CreatedAt.Format(time.RFC3339)
	}
	return &ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       decimal.NewFromInt(p.Price).Shift(-2),
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Category:    p.Category,
		CreatedAt:   createdAt,
	}
}
