package catalog

import (
	"context"
	"encoding/json"

	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Service handles catalog reads and administrative product management
type Service struct {
	productRepo catalog.ProductRepository
}

// NewService creates a new catalog Service
func NewService(productRepo catalog.ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

// GetByID returns a product with its variants
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// GetBySlug returns a product by its URL slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	p, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// List returns a page of products matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	f := shared.DefaultFilter()
	f.Page = filter.Page
	f.PageSize = filter.PageSize
	if filter.Search != "" {
		f.Filters["search"] = filter.Search
	}
	if filter.ActiveOnly {
		f.Filters["is_active"] = true
	}

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Create creates a product with its initial variants
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	p, err := catalog.NewProduct(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	p.Description = req.Description
	p.IsCombo = req.IsCombo
	if images, err := encodeImages(req.Images); err == nil {
		p.Images = images
	}

	for _, v := range req.Variants {
		if _, err := p.AddVariant(v.Label, v.Price, v.ListPrice, v.Stock, v.IsDefault); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

// Update applies a partial update to product metadata
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Images != nil {
		if images, err := encodeImages(req.Images); err == nil {
			p.Images = images
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			p.IsActive = true
		} else {
			p.Deactivate()
		}
	}
	p.IncrementVersion()

	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return ToProductResponse(p), nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
