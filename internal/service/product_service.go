package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput is a complete set of editable product fields
type ProductInput struct {
	Name         string
	Price        decimal.Decimal
	Description  *string
	ImageURL     *string
	CategoryID   *int64
	PurchaseLink *string
}

// ProductPatch changes only the fields that are set. ClearCategory removes
// the category; it wins over CategoryID.
type ProductPatch struct {
	Name          *string
	Price         *decimal.Decimal
	Description   *string
	ImageURL      *string
	CategoryID    *int64
	ClearCategory bool
	PurchaseLink  *string
}

// Invalidator is told whenever the product table changes
type Invalidator interface {
	Invalidate()
}

// ProductService defines the admin operations on products
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	repo        repository.ProductRepository
	invalidator Invalidator
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService. Every
// successful mutation invalidates the catalog listing.
func NewProductService(repo repository.ProductRepository, invalidator Invalidator, logger *zap.Logger) ProductService {
	return &productService{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, repository.ProductQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create validates in and stores a new product
func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price,
		Description:  optional(in.Description),
		ImageURL:     optional(in.ImageURL),
		CategoryID:   in.CategoryID,
		PurchaseLink: optional(in.PurchaseLink),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, mapCategoryError(fmt.Errorf("failed to create product: %w", err))
	}

	s.invalidator.Invalidate()
	s.logger.Info("Product created", zap.Int64("product_id", product.ID))

	return product, nil
}

// Update applies patch to an existing product
func (s *productService) Update(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if patch.Name != nil {
		product.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Description != nil {
		product.Description = optional(patch.Description)
	}
	if patch.ImageURL != nil {
		product.ImageURL = optional(patch.ImageURL)
	}
	if patch.PurchaseLink != nil {
		product.PurchaseLink = optional(patch.PurchaseLink)
	}
	switch {
	case patch.ClearCategory:
		product.CategoryID = nil
	case patch.CategoryID != nil:
		product.CategoryID = patch.CategoryID
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, mapCategoryError(fmt.Errorf("failed to update product: %w", err))
	}

	s.invalidator.Invalidate()
	s.logger.Info("Product updated", zap.Int64("product_id", id))

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidator.Invalidate()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	return nil
}

func validateProduct(p *domain.Product) error {
	if p.Name == "" {
		return &catalog.ValidationError{Field: "name", Message: "Name is required"}
	}
	if p.Price.IsNegative() {
		return &catalog.ValidationError{Field: "price", Message: "Price must not be negative"}
	}
	return nil
}

func mapCategoryError(err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return &catalog.ValidationError{Field: "category_id", Message: "Category does not exist"}
	}
	return err
}

// optional stores blank strings as NULL
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
