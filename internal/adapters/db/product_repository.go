package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ProductRepository implements the product repository interface
type ProductRepository struct {
	conn *Connection
}

// NewProductRepository creates a new product repository
func NewProductRepository(conn *Connection) *ProductRepository {
	return &ProductRepository{conn: conn}
}

const productColumns = `id, name, description, image_url, seller_id, starting_price, current_price, status, end_time, category, location, condition, created_at, updated_at`

// Create creates a new product listing
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		p.ID,
		p.Name,
		nullString(p.Description),
		nullString(p.ImageURL),
		nullUUID(p.SellerID),
		p.StartingPrice,
		p.CurrentPrice,
		p.Status,
		nullTime(p.EndTime),
		nullString(p.Category),
		nullString(p.Location),
		nullString(p.Condition),
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	row := r.conn.GetDB().QueryRowContext(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// List retrieves a page of products with an optional status filter
func (r *ProductRepository) List(ctx context.Context, status *product.Status, page, pageSize int) ([]*product.Product, error) {
	baseQuery := `
		SELECT ` + productColumns + `
		FROM products
	`

	var whereClause string
	var args []interface{}
	argCount := 1

	if status != nil {
		whereClause = "WHERE status = $1"
		args = append(args, *status)
		argCount++
	}

	limitClause := fmt.Sprintf("LIMIT $%d", argCount)
	offsetClause := fmt.Sprintf("OFFSET $%d", argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	query := baseQuery + whereClause + " ORDER BY created_at DESC " + limitClause + " " + offsetClause

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update updates a product listing
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, image_url = $4, seller_id = $5,
		    starting_price = $6, current_price = $7, status = $8, end_time = $9,
		    category = $10, location = $11, condition = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		p.ID,
		p.Name,
		nullString(p.Description),
		nullString(p.ImageURL),
		nullUUID(p.SellerID),
		p.StartingPrice,
		p.CurrentPrice,
		p.Status,
		nullTime(p.EndTime),
		nullString(p.Category),
		nullString(p.Location),
		nullString(p.Condition),
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrProductNotFound
	}

	return nil
}

// Delete removes a product listing
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrProductNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var description, imageURL, category, location, condition sql.NullString
	var sellerID uuid.NullUUID
	var endTime sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&imageURL,
		&sellerID,
		&p.StartingPrice,
		&p.CurrentPrice,
		&p.Status,
		&endTime,
		&category,
		&location,
		&condition,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.ImageURL = imageURL.String
	p.Category = category.String
	p.Location = location.String
	p.Condition = condition.String
	if sellerID.Valid {
		id := sellerID.UUID
		p.SellerID = &id
	}
	if endTime.Valid {
		t := endTime.Time
		p.EndTime = &t
	}

	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
