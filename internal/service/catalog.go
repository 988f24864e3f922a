package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CatalogService provides catalog reads plus the admin-only mutations.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	RegisterProduct(ctx context.Context, params RegisterProductParams) (domain.Product, error)
	Restock(ctx context.Context, params RestockParams) (domain.Product, error)
	TopSelling(ctx context.Context, limit int) ([]domain.Product, error)
}

// RegisterProductParams describes a new catalog entry.
type RegisterProductParams struct {
	ID         int64  `json:"id" validate:"required,gt=0"`
	Category   string `json:"category" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=128"`
	PriceCents int32  `json:"price_cents" validate:"gte=0"`
	Stock      int32  `json:"stock" validate:"gte=0"`
}

// RestockParams describes a stock increase for an existing product.
type RestockParams struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gt=0"`
}

type catalogService struct {
	store   domain.Store
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(store domain.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger) CatalogService {
	return &catalogService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// ListProducts returns the whole catalog ordered by category then name.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns the live state of one product.
func (s *catalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.store.FindByID(ctx, id)
}

// RegisterProduct adds a new product to the catalog.
func (s *catalogService) RegisterProduct(ctx context.Context, params RegisterProductParams) (domain.Product, error) {
	if err := validate.Struct(params); err != nil {
		return domain.Product{}, domain.Invalid("catalog.register", validationMessage(err))
	}

	product, err := domain.NewProduct(params.ID, params.Category, params.Name, params.PriceCents, params.Stock)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.store.Register(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.metrics.ProductsRegistered.Inc()
	s.logger.Info("product registered",
		"product_id", product.ID,
		"name", product.Name,
		"price_cents", product.PriceCents,
		"stock", product.Stock,
	)
	return product, nil
}

// Restock increases a product's stock and returns its new state.
func (s *catalogService) Restock(ctx context.Context, params RestockParams) (domain.Product, error) {
	if err := validate.Struct(params); err != nil {
		return domain.Product{}, domain.Invalid("catalog.restock", validationMessage(err))
	}

	if err := s.store.Restock(ctx, params.ProductID, params.Quantity); err != nil {
		return domain.Product{}, err
	}

	product, err := s.store.FindByID(ctx, params.ProductID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to reload product after restock: %w", err)
	}

	s.metrics.RestockApplied.Inc()
	s.logger.Info("product restocked",
		"product_id", product.ID,
		"added", params.Quantity,
		"stock", product.Stock,
	)
	return product, nil
}

// TopSelling returns the limit best-selling products, most sold first.
func (s *catalogService) TopSelling(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		return nil, domain.Invalid("catalog.top_selling", "limit must be greater than 0")
	}
	products, err := s.store.TopSelling(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return products, nil
}

// validationMessage flattens the first validator failure into a short
// human-readable message for the EINVALID response.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("invalid field %s (%s)", fe.Field(), fe.Tag())
	}
	return "invalid request"
}
