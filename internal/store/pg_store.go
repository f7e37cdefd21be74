package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, description, price_cents, image_url, stock, category, is_active, created_at"
const cartItemColumns = "id, session_id, product_id, quantity, price_cents, created_at"

// PgProductStore implements ProductStore using PostgreSQL as the data store.
type PgProductStore struct {
	db *pgxpool.Pool
}

// NewPgProductStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgProductStore(dbp *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	row := p.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindByIDs retrieves products by IDs.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgProductStore) FindByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	rows, err := p.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// List returns active, in-stock products matching the given criteria,
// together with the total number of matches before pagination.
func (p *PgProductStore) List(ctx context.Context, params ListProductsParams) ([]Product, int64, error) {
	conditions := []string{"is_active", "stock > 0"}
	args := make([]any, 0, 4)

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := p.db.QueryRow(ctx, "SELECT count(*) FROM products WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d",
		productColumns, where, sortColumn(params.SortBy), sortDirection(params.SortDir), len(args)-1, len(args))
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Categories returns the distinct non-empty categories of active products, sorted ascending.
func (p *PgProductStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, "SELECT DISTINCT category FROM products WHERE is_active AND category <> '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// FindLatestActive returns up to limit active, in-stock products, newest first.
func (p *PgProductStore) FindLatestActive(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_active AND stock > 0 ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// sortColumn maps a normalized sort key to its column. Keys are whitelisted
// here as well so no caller input ever reaches the ORDER BY clause.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "price":
		return "price_cents"
	case "created_at":
		return "created_at"
	default:
		return "name"
	}
}

func sortDirection(sortDir string) string {
	if sortDir == "desc" {
		return "DESC"
	}
	return "ASC"
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.Category, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// PgCartStore implements CartStore using PostgreSQL as the data store.
// Each operation is a single-row statement: cart consistency is enforced by
// the service layer against advisory stock snapshots, not by row locks.
type PgCartStore struct {
	db *pgxpool.Pool
}

// NewPgCartStore creates a new instance of CartStore using a PostgreSQL connection pool.
func NewPgCartStore(dbp *pgxpool.Pool) *PgCartStore {
	return &PgCartStore{db: dbp}
}

// FindItemByID retrieves a cart line by its unique identifier.
// Returns ErrCartItemNotFound if no line exists with the given ID.
func (c *PgCartStore) FindItemByID(ctx context.Context, id int64) (*CartItem, error) {
	row := c.db.QueryRow(ctx, "SELECT "+cartItemColumns+" FROM cart_items WHERE id = $1", id)
	item, err := scanCartItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by ID: %w", err)
	}
	return item, nil
}

// FindBySessionAndProduct retrieves the line for the given session and product.
// Returns ErrCartItemNotFound if the session has no line for the product.
func (c *PgCartStore) FindBySessionAndProduct(ctx context.Context, sessionID string, productID int64) (*CartItem, error) {
	row := c.db.QueryRow(ctx,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE session_id = $1 AND product_id = $2", sessionID, productID)
	item, err := scanCartItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by session and product: %w", err)
	}
	return item, nil
}

// FindBySession returns all lines of the given session in insertion order.
func (c *PgCartStore) FindBySession(ctx context.Context, sessionID string) ([]CartItem, error) {
	rows, err := c.db.Query(ctx, "SELECT "+cartItemColumns+" FROM cart_items WHERE session_id = $1 ORDER BY id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart items by session: %w", err)
	}
	defer rows.Close()

	items := make([]CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}
	return items, nil
}

// Create adds a new cart line.
func (c *PgCartStore) Create(ctx context.Context, params CreateCartItemParams) (*CartItem, error) {
	row := c.db.QueryRow(ctx,
		"INSERT INTO cart_items (session_id, product_id, quantity, price_cents) VALUES ($1, $2, $3, $4) RETURNING "+cartItemColumns,
		params.SessionID, params.ProductID, params.Quantity, params.Price)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart item: %w", err)
	}
	return item, nil
}

// UpdateQuantity overwrites the quantity of an existing line.
// Returns ErrCartItemNotFound if no line exists with the given ID.
func (c *PgCartStore) UpdateQuantity(ctx context.Context, id int64, quantity int32) (*CartItem, error) {
	row := c.db.QueryRow(ctx,
		"UPDATE cart_items SET quantity = $2 WHERE id = $1 RETURNING "+cartItemColumns, id, quantity)
	item, err := scanCartItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	return item, nil
}

// Delete removes a cart line by its unique identifier.
// Returns ErrCartItemNotFound if no line exists with the given ID.
func (c *PgCartStore) Delete(ctx context.Context, id int64) error {
	tag, err := c.db.Exec(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sferrors.ErrCartItemNotFound
	}
	return nil
}

func scanCartItem(row pgx.Row) (*CartItem, error) {
	var item CartItem
	if err := row.Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
