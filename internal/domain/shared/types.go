package shared

import "github.com/google/uuid"

// CloseResult represents the outcome of closing an auction
type CloseResult struct {
	ProductID    uuid.UUID
	WinningBidID *uuid.UUID
	WinnerID     *uuid.UUID
	FinalPrice   *float64
	Status       string
	DemotedBids  int
}
