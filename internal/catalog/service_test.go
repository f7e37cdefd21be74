package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *store.InMemoryProductStore {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d int) *time.Time {
		t := base.AddDate(0, 0, d)
		return &t
	}
	s := store.NewInMemoryProductStore()
	s.Put(store.Product{Name: "iPhone 15 Pro", Price: 99999, Stock: 25, Category: "Electronics", IsActive: true, CreatedAt: at(0)})
	s.Put(store.Product{Name: "MacBook Air M3", Price: 129999, Stock: 15, Category: "Electronics", IsActive: true, CreatedAt: at(1)})
	s.Put(store.Product{Name: "Nike Air Max 270", Price: 15000, Stock: 50, Category: "Fashion", IsActive: true, CreatedAt: at(2)})
	s.Put(store.Product{Name: "Coffee Maker Deluxe", Price: 24999, Stock: 20, Category: "Home & Kitchen", IsActive: true, CreatedAt: at(3)})
	s.Put(store.Product{Name: "Wireless Headphones", Price: 19999, Stock: 30, Category: "Electronics", IsActive: true, CreatedAt: at(4)})
	s.Put(store.Product{Name: "Yoga Mat Premium", Price: 4999, Stock: 40, Category: "Sports", IsActive: true, CreatedAt: at(5)})
	s.Put(store.Product{Name: "Smart Watch Series 9", Price: 39999, Stock: 35, Category: "Electronics", IsActive: true, CreatedAt: at(6)})
	// Never visible in listings.
	s.Put(store.Product{Name: "Retired Gadget", Price: 999, Stock: 10, Category: "Electronics", IsActive: false, CreatedAt: at(7)})
	s.Put(store.Product{Name: "Empty Shelf", Price: 999, Stock: 0, Category: "Electronics", IsActive: true, CreatedAt: at(8)})
	return s
}

func names(items []ProductDto) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func Test_CatalogService_List(t *testing.T) {
	testCases := []struct {
		name          string
		query         ListQuery
		expectNames   []string
		expectTotal   int64
		expectSort    string
		expectDir     string
	}{
		{
			name:  "Default - name ascending, only active in-stock products",
			query: ListQuery{},
			expectNames: []string{
				"Coffee Maker Deluxe", "MacBook Air M3", "Nike Air Max 270",
				"Smart Watch Series 9", "Wireless Headphones", "Yoga Mat Premium", "iPhone 15 Pro",
			},
			expectTotal: 7,
			expectSort:  "name",
			expectDir:   "asc",
		},
		{
			name:  "Sort by price descending",
			query: ListQuery{Sort: "price", Direction: "desc"},
			expectNames: []string{
				"MacBook Air M3", "iPhone 15 Pro", "Smart Watch Series 9",
				"Coffee Maker Deluxe", "Wireless Headphones", "Nike Air Max 270", "Yoga Mat Premium",
			},
			expectTotal: 7,
			expectSort:  "price",
			expectDir:   "desc",
		},
		{
			name:  "Sort by created_at descending",
			query: ListQuery{Sort: "created_at", Direction: "desc"},
			expectNames: []string{
				"Smart Watch Series 9", "Yoga Mat Premium", "Wireless Headphones",
				"Coffee Maker Deluxe", "Nike Air Max 270", "MacBook Air M3", "iPhone 15 Pro",
			},
			expectTotal: 7,
			expectSort:  "created_at",
			expectDir:   "desc",
		},
		{
			name:        "Unknown sort key falls back to name ascending",
			query:       ListQuery{Sort: "rating", Direction: "sideways"},
			expectNames: []string{"Coffee Maker Deluxe", "MacBook Air M3", "Nike Air Max 270", "Smart Watch Series 9", "Wireless Headphones", "Yoga Mat Premium", "iPhone 15 Pro"},
			expectTotal: 7,
			expectSort:  "name",
			expectDir:   "asc",
		},
		{
			name:        "Case-insensitive substring search",
			query:       ListQuery{Search: "air"},
			expectNames: []string{"MacBook Air M3", "Nike Air Max 270"},
			expectTotal: 2,
			expectSort:  "name",
			expectDir:   "asc",
		},
		{
			name:        "Category filter",
			query:       ListQuery{Category: "Electronics", Sort: "price"},
			expectNames: []string{"Wireless Headphones", "Smart Watch Series 9", "iPhone 15 Pro", "MacBook Air M3"},
			expectTotal: 4,
			expectSort:  "price",
			expectDir:   "asc",
		},
		{
			name:        "Search and category combined",
			query:       ListQuery{Search: "watch", Category: "Electronics"},
			expectNames: []string{"Smart Watch Series 9"},
			expectTotal: 1,
			expectSort:  "name",
			expectDir:   "asc",
		},
		{
			name:        "Unmatched filter yields an empty page",
			query:       ListQuery{Search: "zeppelin"},
			expectNames: []string{},
			expectTotal: 0,
			expectSort:  "name",
			expectDir:   "asc",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(seededStore())
			// when
			page, err := service.List(context.Background(), tc.query)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectNames, names(page.Items))
			assert.Equal(t, tc.expectTotal, page.Pagination.Total)
			assert.Equal(t, int32(PageSize), page.Pagination.PerPage)
			assert.Equal(t, tc.expectSort, page.Filters.Sort)
			assert.Equal(t, tc.expectDir, page.Filters.Direction)
		})
	}
}

func Test_CatalogService_List_Pagination(t *testing.T) {
	// given: 30 active products, one page holds 12
	productStore := store.NewInMemoryProductStore()
	for i := 1; i <= 30; i++ {
		productStore.Put(store.Product{
			Name:     fmt.Sprintf("Product %02d", i),
			Price:    int64(i * 100),
			Stock:    10,
			Category: "Bulk",
			IsActive: true,
		})
	}
	service := NewService(productStore)

	// when / then: full first page
	page, err := service.List(context.Background(), ListQuery{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, PageSize)
	assert.Equal(t, int64(30), page.Pagination.Total)
	assert.Equal(t, int32(3), page.Pagination.TotalPages)
	assert.Equal(t, "Product 01", page.Items[0].Name)

	// second page continues where the first left off
	page, err = service.List(context.Background(), ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, PageSize)
	assert.Equal(t, "Product 13", page.Items[0].Name)

	// last page is partial
	page, err = service.List(context.Background(), ListQuery{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)

	// a page past the end is empty but keeps the metadata
	page, err = service.List(context.Background(), ListQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(30), page.Pagination.Total)
	assert.Equal(t, int32(9), page.Pagination.Page)

	// page zero normalizes to the first page
	page, err = service.List(context.Background(), ListQuery{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, int32(1), page.Pagination.Page)
	assert.Equal(t, "Product 01", page.Items[0].Name)
}

func Test_CatalogService_FindByID(t *testing.T) {
	// given
	productStore := seededStore()
	service := NewService(productStore)
	visible, err := productStore.FindByID(context.Background(), 1)
	require.NoError(t, err)

	// when / then: an active product is returned with its decimal price
	dto, err := service.FindByID(context.Background(), visible.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro", dto.Name)
	assert.Equal(t, "999.99", dto.Price.StringFixed(2))

	// an inactive product is reported as not found
	_, err = service.FindByID(context.Background(), 8)
	assert.ErrorIs(t, err, sferrors.ErrProductNotFound)

	// an unknown ID is reported as not found
	_, err = service.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, sferrors.ErrProductNotFound)
}

func Test_CatalogService_FindByID_OutOfStockIsVisible(t *testing.T) {
	// given: product 9 is active but has no stock
	service := NewService(seededStore())
	// when
	dto, err := service.FindByID(context.Background(), 9)
	// then: detail pages still show sold-out products
	require.NoError(t, err)
	assert.Equal(t, int32(0), dto.Stock)
}

func Test_CatalogService_Categories(t *testing.T) {
	// given
	service := NewService(seededStore())
	// when
	categories, err := service.Categories(context.Background())
	// then: distinct, sorted, active products only
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Fashion", "Home & Kitchen", "Sports"}, categories)
}

func Test_CatalogService_Featured(t *testing.T) {
	// given
	service := NewService(seededStore())
	// when
	featured, err := service.Featured(context.Background())
	// then: newest first, inactive and out-of-stock products excluded
	require.NoError(t, err)
	require.Len(t, featured, 7)
	assert.Equal(t, "Smart Watch Series 9", featured[0].Name)
	assert.Equal(t, "iPhone 15 Pro", featured[6].Name)
}

func Test_CatalogService_Featured_CapsAtLimit(t *testing.T) {
	// given: more active products than the featured limit
	productStore := store.NewInMemoryProductStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= FeaturedCount+4; i++ {
		createdAt := base.AddDate(0, 0, i)
		productStore.Put(store.Product{
			Name:      fmt.Sprintf("Product %02d", i),
			Price:     1000,
			Stock:     5,
			IsActive:  true,
			CreatedAt: &createdAt,
		})
	}
	service := NewService(productStore)

	// when
	featured, err := service.Featured(context.Background())

	// then
	require.NoError(t, err)
	require.Len(t, featured, FeaturedCount)
	assert.Equal(t, "Product 12", featured[0].Name)
}
