package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductQuery narrows a product listing. A nil CategoryID lists every
// product, uncategorized ones included.
type ProductQuery struct {
	CategoryID *int64
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, price, description, image_url, category_id, purchase_link, created_at`

// List returns the full matching set, newest id first. There is no
// pagination: every matching row is read.
func (r *productRepository) List(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	whereClause := ""
	args := []interface{}{}

	if q.CategoryID != nil {
		whereClause = "WHERE category_id = $1"
		args = append(args, *q.CategoryID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY id DESC
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, unavailable("scan product", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, unavailable("iterate products", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1
	`, productColumns)

	product := &domain.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, unavailable("find product by id", err)
	}

	return product, nil
}

// Create inserts a product; the gateway assigns id and created_at
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, price, description, image_url, category_id, purchase_link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Price,
		product.Description,
		product.ImageURL,
		product.CategoryID,
		product.PurchaseLink,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrCategoryNotFound
		}
		return unavailable("create product", err)
	}

	return nil
}

// Update overwrites the editable columns of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, description = $4, image_url = $5,
		    category_id = $6, purchase_link = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.Description,
		product.ImageURL,
		product.CategoryID,
		product.PurchaseLink,
	)

	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrCategoryNotFound
		}
		return unavailable("update product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return unavailable("update product rows affected", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return unavailable("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return unavailable("delete product rows affected", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, product *domain.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.ImageURL,
		&product.CategoryID,
		&product.PurchaseLink,
		&product.CreatedAt,
	)
}
