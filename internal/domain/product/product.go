package product

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the current status of a product listing
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
)

// Product represents a listing in the marketplace catalog
type Product struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	SellerID      *uuid.UUID `json:"seller_id,omitempty"`
	StartingPrice float64    `json:"starting_price"`
	CurrentPrice  float64    `json:"current_price"`
	Status        Status     `json:"status"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Category      string     `json:"category,omitempty"`
	Location      string     `json:"location,omitempty"`
	Condition     string     `json:"condition,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive returns true if the listing is open for bidding
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// IsEnded returns true if the auction for this listing has been closed
func (p *Product) IsEnded() bool {
	return p.Status == StatusEnded
}

// CanBid returns true if a bid can be placed on this listing
func (p *Product) CanBid() bool {
	return p.Status == StatusActive
}

// ApplyBid raises the current price after an accepted bid.
// The current price never moves below the starting price and never decreases.
func (p *Product) ApplyBid(amount float64) {
	if amount > p.CurrentPrice {
		p.CurrentPrice = amount
		p.UpdatedAt = time.Now()
	}
}

// End marks the listing as ended
func (p *Product) End() {
	p.Status = StatusEnded
	p.UpdatedAt = time.Now()
}
