package bid

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a bid
type Status string

const (
	StatusActive Status = "active"
	StatusOutbid Status = "outbid"
	StatusWon    Status = "won"
	StatusEnded  Status = "ended"
)

// PaymentStatus represents the manual payment handshake state of a won bid.
// The empty value means the winner has not submitted payment information yet.
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = ""
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Bid represents a bid placed on a product listing
type Bid struct {
	ID            uuid.UUID     `json:"id"`
	ProductID     uuid.UUID     `json:"product_id"`
	BidderID      uuid.UUID     `json:"bidder_id"`
	Amount        float64       `json:"amount"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
	PaymentPhone  string        `json:"payment_phone,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// WithBidder is a bid joined with the bidder's profile for admin display
type WithBidder struct {
	Bid
	BidderName  string `json:"bidder_name"`
	BidderEmail string `json:"bidder_email"`
}

// IsActive returns true if the bid is still in the running
func (b *Bid) IsActive() bool {
	return b.Status == StatusActive
}

// IsWon returns true if the bid won its auction
func (b *Bid) IsWon() bool {
	return b.Status == StatusWon
}

// MarkWon marks the bid as the auction winner
func (b *Bid) MarkWon() {
	b.Status = StatusWon
}

// MarkEnded marks the bid as a losing bid of a closed auction
func (b *Bid) MarkEnded() {
	b.Status = StatusEnded
}

// PaymentFinal returns true once the payment handshake reached a terminal state
func (b *Bid) PaymentFinal() bool {
	return b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentCancelled
}

// SubmitPayment records the winner's payment contact for admin verification.
// Re-submission while pending overwrites the phone without changing state.
func (b *Bid) SubmitPayment(phone string) {
	b.PaymentStatus = PaymentPending
	b.PaymentPhone = phone
}

// ConfirmPayment finalizes the payment handshake as paid
func (b *Bid) ConfirmPayment(at time.Time) {
	b.PaymentStatus = PaymentPaid
	b.PaymentDate = &at
}

// CancelPayment finalizes the payment handshake as cancelled
func (b *Bid) CancelPayment() {
	b.PaymentStatus = PaymentCancelled
	b.PaymentDate = nil
}

// Outranks returns true if b beats other for winner selection:
// higher amount wins, ties go to the earlier bid.
func (b *Bid) Outranks(other *Bid) bool {
	if b.Amount != other.Amount {
		return b.Amount > other.Amount
	}
	return b.CreatedAt.Before(other.CreatedAt)
}
