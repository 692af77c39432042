package memory

import (
	"context"
	"sort"
	"time"

	"fyndak-auction-service/internal/domain/bid"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

type bidRepo struct {
	store *Store
}

func (r *bidRepo) Create(ctx context.Context, b *bid.Bid) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.bids[b.ID] = copyBid(b)
	return nil
}

func (r *bidRepo) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bids[id]
	if !ok {
		return nil, shared.ErrBidNotFound
	}
	return copyBid(b), nil
}

func (r *bidRepo) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.productBidsLocked(productID), nil
}

func (r *bidRepo) ListForProductWithBidder(ctx context.Context, productID uuid.UUID) ([]*bid.WithBidder, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var bids []*bid.WithBidder
	for _, b := range r.productBidsLocked(productID) {
		wb := &bid.WithBidder{Bid: *b}
		if profile, ok := r.store.profiles[b.BidderID]; ok {
			wb.BidderName = profile.FullName
			wb.BidderEmail = profile.Email
		}
		bids = append(bids, wb)
	}
	return bids, nil
}

func (r *bidRepo) ListForBidder(ctx context.Context, bidderID uuid.UUID) ([]*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var bids []*bid.Bid
	for _, b := range r.store.bids {
		if b.BidderID == bidderID {
			bids = append(bids, copyBid(b))
		}
	}

	sort.Slice(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

func (r *bidRepo) GetHighestActive(ctx context.Context, productID uuid.UUID) (*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	winner := r.highestActiveLocked(productID)
	if winner == nil {
		return nil, shared.ErrNoBidsFound
	}
	return copyBid(winner), nil
}

func (r *bidRepo) Update(ctx context.Context, b *bid.Bid) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.bids[b.ID]
	if !ok {
		return shared.ErrBidNotFound
	}

	stored.Status = b.Status
	stored.PaymentStatus = b.PaymentStatus
	stored.PaymentPhone = b.PaymentPhone
	if b.PaymentDate != nil {
		t := *b.PaymentDate
		stored.PaymentDate = &t
	} else {
		stored.PaymentDate = nil
	}
	return nil
}

func (r *bidRepo) PlaceBidOCC(ctx context.Context, newBid *bid.Bid, expectedCurrentPrice float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[newBid.ProductID]
	if !ok {
		return shared.ErrProductNotFound
	}

	if p.Status != product.StatusActive {
		return shared.ErrProductNotAccepting
	}

	if p.CurrentPrice != expectedCurrentPrice {
		return shared.ErrBidAmountTooLow
	}

	if newBid.Amount <= p.CurrentPrice {
		return shared.ErrBidAmountTooLow
	}

	r.store.bids[newBid.ID] = copyBid(newBid)
	p.CurrentPrice = newBid.Amount
	p.UpdatedAt = newBid.CreatedAt
	return nil
}

func (r *bidRepo) CloseAuction(ctx context.Context, productID uuid.UUID) (*shared.CloseResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.products[productID]
	if !ok {
		return nil, shared.ErrProductNotFound
	}

	if p.Status == product.StatusEnded {
		return nil, shared.ErrAuctionAlreadyEnded
	}

	p.Status = product.StatusEnded
	p.UpdatedAt = time.Now()

	result := &shared.CloseResult{
		ProductID: productID,
		Status:    string(product.StatusEnded),
	}

	winner := r.highestActiveLocked(productID)
	if winner != nil {
		winner.Status = bid.StatusWon
		result.WinningBidID = &winner.ID
		result.WinnerID = &winner.BidderID
		result.FinalPrice = &winner.Amount
	}

	for _, b := range r.store.bids {
		if b.ProductID == productID && b.Status == bid.StatusActive {
			b.Status = bid.StatusEnded
			result.DemotedBids++
		}
	}

	return result, nil
}

// productBidsLocked returns copies of a product's bids ordered by amount
// descending, earliest first on ties. Caller must hold the lock.
func (r *bidRepo) productBidsLocked(productID uuid.UUID) []*bid.Bid {
	var bids []*bid.Bid
	for _, b := range r.store.bids {
		if b.ProductID == productID {
			bids = append(bids, copyBid(b))
		}
	}

	sort.Slice(bids, func(i, j int) bool {
		return bids[i].Outranks(bids[j])
	})
	return bids
}

// highestActiveLocked returns the stored top-ranked active bid, or nil.
// Caller must hold the lock.
func (r *bidRepo) highestActiveLocked(productID uuid.UUID) *bid.Bid {
	var winner *bid.Bid
	for _, b := range r.store.bids {
		if b.ProductID != productID || b.Status != bid.StatusActive {
			continue
		}
		if winner == nil || b.Outranks(winner) {
			winner = b
		}
	}
	return winner
}
