package app

import (
	"context"
	"time"

	"fyndak-auction-service/internal/adapters/scheduler"
	"fyndak-auction-service/internal/domain/product"
	"fyndak-auction-service/internal/domain/shared"
	"fyndak-auction-service/internal/ports/inbound"
	"fyndak-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CatalogService implements the product catalog use cases
type CatalogService struct {
	productRepo outbound.ProductRepository
	profileRepo outbound.ProfileRepository
	broadcaster outbound.Broadcaster
	scheduler   *scheduler.CloseScheduler
	logger      zerolog.Logger
}

type CatalogServiceParams struct {
	ProductRepo outbound.ProductRepository
	ProfileRepo outbound.ProfileRepository
	Broadcaster outbound.Broadcaster
	Scheduler   *scheduler.CloseScheduler
	Logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	return &CatalogService{
		productRepo: params.ProductRepo,
		profileRepo: params.ProfileRepo,
		broadcaster: params.Broadcaster,
		scheduler:   params.Scheduler,
		logger:      params.Logger.With().Str("component", "catalog_service").Logger(),
	}
}

// SetScheduler sets the auction close scheduler
func (service *CatalogService) SetScheduler(scheduler *scheduler.CloseScheduler) {
	service.scheduler = scheduler
}

// CreateProduct creates a new product listing (admin only)
func (service *CatalogService) CreateProduct(ctx context.Context, req inbound.CreateProductRequest) (*product.Product, error) {
	service.logger.Info().
		Str("admin_id", req.AdminID.String()).
		Str("name", req.Name).
		Float64("starting_price", req.StartingPrice).
		Msg("Attempting to create product")

	if _, err := requireAdmin(ctx, service.profileRepo, req.AdminID); err != nil {
		service.logger.Warn().Err(err).Str("admin_id", req.AdminID.String()).Msg("Product creation rejected")
		return nil, err
	}

	if req.Name == "" {
		return nil, shared.ErrProductNameRequired
	}

	if req.StartingPrice < 0 {
		service.logger.Warn().Float64("starting_price", req.StartingPrice).Msg("Starting price must not be negative")
		return nil, shared.ErrInvalidStartingPrice
	}

	var endTime *time.Time
	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			service.logger.Error().Err(err).Str("end_time", req.EndTime).Msg("Invalid end time format")
			return nil, shared.ErrInvalidTimeFormat
		}
		endTime = &parsed
	}

	now := time.Now()
	p := &product.Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		SellerID:      req.SellerID,
		StartingPrice: req.StartingPrice,
		CurrentPrice:  req.StartingPrice,
		Status:        product.StatusActive,
		EndTime:       endTime,
		Category:      req.Category,
		Location:      req.Location,
		Condition:     req.Condition,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := service.productRepo.Create(ctx, p); err != nil {
		service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to save product")
		return nil, err
	}

	service.logger.Info().
		Str("product_id", p.ID.String()).
		Msg("Product created successfully")

	// Schedule automatic closing when an end time is set
	if service.scheduler != nil && p.EndTime != nil {
		if err := service.scheduler.ScheduleClose(p.ID, *p.EndTime); err != nil {
			// Don't fail the creation, the admin can still close manually
			service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to schedule auction close")
		}
	}

	service.publish(ctx, p, outbound.EventTypeProductCreated)

	return p, nil
}

// GetProduct retrieves a product by ID
func (service *CatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*product.Product, error) {
	service.logger.Debug().Str("product_id", productID.String()).Msg("Retrieving product")

	p, err := service.productRepo.GetByID(ctx, productID)
	if err != nil {
		service.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to retrieve product")
		return nil, err
	}

	return p, nil
}

// ListProducts retrieves a page of products
func (service *CatalogService) ListProducts(ctx context.Context, req inbound.ListProductsRequest) ([]*product.Product, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}

	return service.productRepo.List(ctx, req.Status, req.Page, req.PageSize)
}

// UpdateProduct updates listing fields (admin only). Pricing and status are
// owned by the bid ledger and the closer, never touched here.
func (service *CatalogService) UpdateProduct(ctx context.Context, req inbound.UpdateProductRequest) (*product.Product, error) {
	if _, err := requireAdmin(ctx, service.profileRepo, req.AdminID); err != nil {
		return nil, err
	}

	p, err := service.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.ErrProductNameRequired
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Condition != nil {
		p.Condition = *req.Condition
	}
	if req.EndTime != nil {
		if *req.EndTime == "" {
			p.EndTime = nil
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.EndTime)
			if err != nil {
				return nil, shared.ErrInvalidTimeFormat
			}
			p.EndTime = &parsed
		}
	}
	p.UpdatedAt = time.Now()

	if err := service.productRepo.Update(ctx, p); err != nil {
		service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to update product")
		return nil, err
	}

	// Keep the close schedule in sync with the new end time
	if service.scheduler != nil && req.EndTime != nil {
		if p.EndTime != nil {
			if err := service.scheduler.ScheduleClose(p.ID, *p.EndTime); err != nil {
				service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to reschedule auction close")
			}
		} else {
			if err := service.scheduler.CancelClose(p.ID); err != nil {
				service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to cancel scheduled close")
			}
		}
	}

	service.publish(ctx, p, outbound.EventTypeProductUpdated)

	service.logger.Info().Str("product_id", p.ID.String()).Msg("Product updated successfully")
	return p, nil
}

// DeleteProduct removes a listing (admin only)
func (service *CatalogService) DeleteProduct(ctx context.Context, adminID, productID uuid.UUID) error {
	if _, err := requireAdmin(ctx, service.profileRepo, adminID); err != nil {
		return err
	}

	if err := service.productRepo.Delete(ctx, productID); err != nil {
		service.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to delete product")
		return err
	}

	if service.scheduler != nil {
		if err := service.scheduler.CancelClose(productID); err != nil {
			service.logger.Error().Err(err).Str("product_id", productID.String()).Msg("Failed to cancel scheduled close")
		}
	}

	service.logger.Info().Str("product_id", productID.String()).Str("admin_id", adminID.String()).Msg("Product deleted")
	return nil
}

func (service *CatalogService) publish(ctx context.Context, p *product.Product, eventType outbound.EventType) {
	if service.broadcaster == nil {
		return
	}

	event := outbound.Event{
		Type:      eventType,
		ProductID: p.ID,
		Data: map[string]interface{}{
			"product_id":    p.ID,
			"name":          p.Name,
			"current_price": p.CurrentPrice,
			"status":        p.Status,
		},
		Timestamp: time.Now().Unix(),
	}

	if err := service.broadcaster.Publish(ctx, p.ID, event); err != nil {
		service.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("Failed to broadcast product event")
	}
}
