package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type CartService struct {
	uow         uow.UOW
	cartRepo    CartRepository
	productRepo ProductRepository
}

func NewCartService(u uow.UOW) (*CartService, error) {
	cartRepo, cartRepoErr := uow.GetRepositoryAs[CartRepository](u, uow.RepositoryName(repoargs.CartRepoName))
	if cartRepoErr != nil {
		return nil, cartRepoErr
	}
	productRepo, productRepoErr := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	return &CartService{
		uow:         u,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}, nil
}

// AddItem добавляет товар в корзину. Для неизвестного товара возвращает
// domain.ErrRecordNotFound. Повторное добавление того же товара наращивает
// количество - вторая строка для пары (юзер, товар) не появляется никогда.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartEntry, error) {
	if _, productErr := s.productRepo.FindByID(ctx, productID); productErr != nil {
		return nil, fmt.Errorf("adding cart item: %w", productErr)
	}

	entry, upsertErr := s.cartRepo.Upsert(ctx, repoargs.CartUpsert{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if upsertErr != nil {
		return nil, fmt.Errorf("adding cart item: %w", upsertErr)
	}
	return entry, nil
}

// ListItems возвращает корзину юзера, отсортированную по id товара.
func (s *CartService) ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	items, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return items, nil
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
