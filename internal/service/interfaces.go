package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	AddToBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

type ProductRepository interface {
	GetAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
}

type CartRepository interface {
	Upsert(ctx context.Context, args repoargs.CartUpsert) (*domain.CartEntry, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID int64) error
}

type PaymentRepository interface {
	Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error)
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetPending(ctx context.Context, limit uint) ([]domain.Payment, error)
	GetUnapplied(ctx context.Context, limit uint) ([]domain.Payment, error)
	UpdateStatusFromPending(ctx context.Context, args repoargs.PaymentStatusUpdate) (bool, *domain.Payment, error)
	MarkApplied(ctx context.Context, paymentID int64) (bool, *repoargs.PaymentApplied, error)
}

type PaymentGateway interface {
	CreateSession(ctx context.Context, args domain.CreateSessionArgs) (*domain.GatewaySession, error)
}
