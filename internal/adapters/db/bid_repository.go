package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// BidRepository implements the bid ledger repository interface
type BidRepository struct {
	conn *Connection
}

// NewBidRepository creates a new bid repository
func NewBidRepository(conn *Connection) *BidRepository {
	return &BidRepository{conn: conn}
}

const bidColumns = `id, product_id, bidder_id, amount, status, payment_status, payment_date, payment_phone, created_at`

// Create appends a new bid to the ledger
func (r *BidRepository) Create(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		b.ID,
		b.ProductID,
		b.BidderID,
		b.Amount,
		b.Status,
		nullString(string(b.PaymentStatus)),
		nullTime(b.PaymentDate),
		nullString(b.PaymentPhone),
		b.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}

	return nil
}

// GetByID retrieves a bid by ID
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE id = $1
	`

	row := r.conn.GetDB().QueryRowContext(ctx, query, id)
	b, err := scanBid(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}

	return b, nil
}

// ListForProduct retrieves all bids for a product, highest amount first,
// earliest bid first on equal amounts
func (r *BidRepository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE product_id = $1
		ORDER BY amount DESC, created_at ASC
	`

	return r.queryBids(ctx, query, productID)
}

// ListForBidder retrieves all bids placed by a bidder, newest first
func (r *BidRepository) ListForBidder(ctx context.Context, bidderID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE bidder_id = $1
		ORDER BY created_at DESC
	`

	return r.queryBids(ctx, query, bidderID)
}

// ListForProductWithBidder retrieves all bids for a product joined with the
// bidder's profile and email, for the admin bidder view
func (r *BidRepository) ListForProductWithBidder(ctx context.Context, productID uuid.UUID) ([]*bid.WithBidder, error) {
	query := `
		SELECT b.id, b.product_id, b.bidder_id, b.amount, b.status,
		       b.payment_status, b.payment_date, b.payment_phone, b.created_at,
		       p.full_name, p.email
		FROM bids b
		JOIN profiles_with_email p ON p.id = b.bidder_id
		WHERE b.product_id = $1
		ORDER BY b.amount DESC, b.created_at ASC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bidders: %w", err)
	}
	defer rows.Close()

	var bids []*bid.WithBidder
	for rows.Next() {
		var wb bid.WithBidder
		var paymentStatus, paymentPhone, email sql.NullString
		var paymentDate sql.NullTime

		err := rows.Scan(
			&wb.ID,
			&wb.ProductID,
			&wb.BidderID,
			&wb.Amount,
			&wb.Status,
			&paymentStatus,
			&paymentDate,
			&paymentPhone,
			&wb.CreatedAt,
			&wb.BidderName,
			&email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bidder row: %w", err)
		}

		wb.PaymentStatus = bid.PaymentStatus(paymentStatus.String)
		wb.PaymentPhone = paymentPhone.String
		wb.BidderEmail = email.String
		if paymentDate.Valid {
			t := paymentDate.Time
			wb.PaymentDate = &t
		}
		bids = append(bids, &wb)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bidders: %w", err)
	}

	return bids, nil
}

// GetHighestActive retrieves the top-ranked active bid for a product
func (r *BidRepository) GetHighestActive(ctx context.Context, productID uuid.UUID) (*bid.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE product_id = $1 AND status = 'active'
		ORDER BY amount DESC, created_at ASC
		LIMIT 1
	`

	row := r.conn.GetDB().QueryRowContext(ctx, query, productID)
	b, err := scanBid(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.ErrNoBidsFound
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}

	return b, nil
}

// Update updates a bid's status and payment fields
func (r *BidRepository) Update(ctx context.Context, b *bid.Bid) error {
	query := `
		UPDATE bids
		SET status = $2, payment_status = $3, payment_date = $4, payment_phone = $5
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		b.ID,
		b.Status,
		nullString(string(b.PaymentStatus)),
		nullTime(b.PaymentDate),
		nullString(b.PaymentPhone),
	)

	if err != nil {
		return fmt.Errorf("failed to update bid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrBidNotFound
	}

	return nil
}

/*
PlaceBidOCC inserts a bid and raises the product's current price using
optimistic concurrency control:
 1. Reading the product's current state
 2. Validating the expected price matches the actual price
 3. Inserting the bid and bumping the price only if the price hasn't changed
 4. Failing if another transaction modified the product concurrently
*/
func (r *BidRepository) PlaceBidOCC(ctx context.Context, newBid *bid.Bid, expectedCurrentPrice float64) error {
	return r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		productQuery := `
			SELECT current_price, status
			FROM products
			WHERE id = $1
		`

		var dbCurrentPrice float64
		var status string
		err := tx.QueryRowContext(ctx, productQuery, newBid.ProductID).Scan(&dbCurrentPrice, &status)
		if err != nil {
			if err == sql.ErrNoRows {
				return shared.ErrProductNotFound
			}
			return fmt.Errorf("failed to get product for OCC: %w", err)
		}

		if status != "active" {
			return shared.ErrProductNotAccepting
		}

		// A stale read legitimately produces a rejected bid that the
		// caller must retry with a fresh amount
		if dbCurrentPrice != expectedCurrentPrice {
			return shared.ErrBidAmountTooLow
		}

		if newBid.Amount <= dbCurrentPrice {
			return shared.ErrBidAmountTooLow
		}

		bidQuery := `
			INSERT INTO bids (id, product_id, bidder_id, amount, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		_, err = tx.ExecContext(ctx, bidQuery,
			newBid.ID,
			newBid.ProductID,
			newBid.BidderID,
			newBid.Amount,
			newBid.Status,
			newBid.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		// Use the expected current price in the WHERE clause to ensure no
		// other transaction modified it
		updateQuery := `
			UPDATE products
			SET current_price = $2, updated_at = $3
			WHERE id = $1 AND current_price = $4
		`

		result, err := tx.ExecContext(ctx, updateQuery,
			newBid.ProductID,
			newBid.Amount,
			newBid.CreatedAt,
			expectedCurrentPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to update product price: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return shared.ErrBidAmountTooLow
		}

		return nil
	})
}

/*
CloseAuction atomically finalizes a product's auction:
 1. Locking the product row and rejecting an already-ended auction
 2. Marking the product ended even when no bids exist
 3. Promoting the top active bid (amount desc, earliest first) to won
 4. Demoting every other still-active bid to ended

Running all four steps inside one transaction guarantees that a concurrent
second close cannot select a different winner.
*/
func (r *BidRepository) CloseAuction(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error) {
	result := &shared.CloseResult{ProductID: productID}

	err := r.conn.ExecuteTransaction(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM products WHERE id = $1 FOR UPDATE`,
			productID,
		).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return shared.ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		if status == "ended" {
			return shared.ErrAuctionAlreadyEnded
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET status = 'ended', updated_at = $2 WHERE id = $1`,
			productID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to end product: %w", err)
		}
		result.Status = "ended"

		var winningBidID, winnerID uuid.UUID
		var finalPrice float64
		err = tx.QueryRowContext(ctx, `
			SELECT id, bidder_id, amount
			FROM bids
			WHERE product_id = $1 AND status = 'active'
			ORDER BY amount DESC, created_at ASC
			LIMIT 1
		`, productID).Scan(&winningBidID, &winnerID, &finalPrice)

		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to find winning bid: %w", err)
		}

		if err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE bids SET status = 'won' WHERE id = $1`,
				winningBidID,
			)
			if err != nil {
				return fmt.Errorf("failed to promote winning bid: %w", err)
			}

			demoted, err := tx.ExecContext(ctx, `
				UPDATE bids SET status = 'ended'
				WHERE product_id = $1 AND status = 'active' AND id <> $2
			`, productID, winningBidID)
			if err != nil {
				return fmt.Errorf("failed to demote losing bids: %w", err)
			}

			rows, err := demoted.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}

			result.WinningBidID = &winningBidID
			result.WinnerID = &winnerID
			result.FinalPrice = &finalPrice
			result.DemotedBids = int(rows)
			return nil
		}

		// No winner; defensively end any stray active bids
		demoted, err := tx.ExecContext(ctx, `
			UPDATE bids SET status = 'ended'
			WHERE product_id = $1 AND status = 'active'
		`, productID)
		if err != nil {
			return fmt.Errorf("failed to end remaining bids: %w", err)
		}

		rows, err := demoted.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		result.DemotedBids = int(rows)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *BidRepository) queryBids(ctx context.Context, query string, args ...interface{}) ([]*bid.Bid, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

func scanBid(row rowScanner) (*bid.Bid, error) {
	var b bid.Bid
	var paymentStatus, paymentPhone sql.NullString
	var paymentDate sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.ProductID,
		&b.BidderID,
		&b.Amount,
		&b.Status,
		&paymentStatus,
		&paymentDate,
		&paymentPhone,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.PaymentStatus = bid.PaymentStatus(paymentStatus.String)
	b.PaymentPhone = paymentPhone.String
	if paymentDate.Valid {
		t := paymentDate.Time
		b.PaymentDate = &t
	}

	return &b, nil
}
