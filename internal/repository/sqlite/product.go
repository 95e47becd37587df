package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/model"
	"github.com/vichithchamodya/product-catalog/internal/repository"
)

// compile-time check that *DB implements repository.ProductRepository
var _ repository.ProductRepository = (*DB)(nil)

const productColumns = `id, title, description, price, banner_image, user_id, created_at, updated_at`

// Create inserts a new product row. The ID (xid: 20 chars, URL-safe,
// creation-time sortable) and timestamps are filled in here, so the caller's
// struct carries them after the call returns.
func (db *DB) Create(ctx context.Context, product *model.Product) error {
	product.ID = xid.New().String()

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.BannerImage,
		product.UserID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating product: %w", err)
	}

	return nil
}

// ListByUser retrieves every product owned by userID in insertion order.
// The whole list is returned at once; the dashboard replaces its view
// wholesale, with no pagination.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Product, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing products for user %s: %w", userID, err)
	}
	defer rows.Close()

	products := make([]model.Product, 0, 16)

	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Price,
			&p.BannerImage, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product matched on (id, user_id). A product
// owned by someone else is indistinguishable from a missing one, both
// return not found.
func (db *DB) GetByID(ctx context.Context, id, userID string) (*model.Product, error) {
	var p model.Product

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&p.ID, &p.Title, &p.Description, &p.Price,
		&p.BannerImage, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}

	return &p, nil
}

// Update rewrites a product's mutable fields, matched on (id, user_id).
// RowsAffected == 0 means the match failed, either no such product or not
// the caller's, and maps to not found.
func (db *DB) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE products
		 SET title = ?, description = ?, price = ?, banner_image = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		product.Title,
		product.Description,
		product.Price,
		product.BannerImage,
		product.UpdatedAt,
		product.ID,
		product.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("product", product.ID)
	}

	return nil
}

// Delete removes a product matched on (id, user_id). Same RowsAffected
// pattern as Update.
func (db *DB) Delete(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM products WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("product", id)
	}

	return nil
}
