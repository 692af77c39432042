package db

import (
	"fyndak-auction-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetProductRepository returns the product repository
func (f *RepositoryFactory) GetProductRepository() outbound.ProductRepository {
	return NewProductRepository(f.conn)
}

// GetBidRepository returns the bid repository
func (f *RepositoryFactory) GetBidRepository() outbound.BidRepository {
	return NewBidRepository(f.conn)
}

// GetProfileRepository returns the profile repository
func (f *RepositoryFactory) GetProfileRepository() outbound.ProfileRepository {
	return NewProfileRepository(f.conn)
}
