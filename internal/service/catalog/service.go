package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
)

// Service is the read model over the category > service > variant tree.
type Service struct {
	repo repository.CatalogRepository
}

func NewService(repo repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) ListServices(ctx context.Context, categoryID uuid.UUID) ([]*model.Service, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListServices(ctx, categoryID)
}

func (s *Service) ListVariants(ctx context.Context, serviceID uuid.UUID) ([]*model.ServiceVariant, error) {
	if _, err := s.repo.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListVariants(ctx, serviceID)
}

func (s *Service) GetVariant(ctx context.Context, id uuid.UUID) (*model.ServiceVariant, error) {
	return s.repo.GetVariant(ctx, id)
}
