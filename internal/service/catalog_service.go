package service

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

// CatalogService читает каталог товаров. Каталог заполняется миграцией
// на старте и после этого не меняется.
type CatalogService struct {
	productRepo ProductRepository
}

func NewCatalogService(u uow.UOW) (*CatalogService, error) {
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err
	}
	return &CatalogService{productRepo: productRepo}, nil
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}
