package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type CatalogServicer interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type CartServicer interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int32) (*domain.CartEntry, error)
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)
}

type CheckoutServicer interface {
	Checkout(ctx context.Context, userID int64) (*domain.CheckoutSession, error)
}

type PaymentServicer interface {
	MarkConfirmed(ctx context.Context, paymentID int64) (*domain.Payment, error)
	MarkFailed(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ApplyConfirmed(ctx context.Context, paymentID int64) error
	IsSubscriptionActive(ctx context.Context, userID int64) (bool, error)
}
