package gateway

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/transport/gateway/client"
)

type Client interface {
	GetPaymentStatus(ctx context.Context, sessionRef string) (*client.StatusResponse, error)
}

type Servicer interface {
	PendingPayments(ctx context.Context, limit uint) ([]domain.Payment, error)
	UnappliedPayments(ctx context.Context, limit uint) ([]domain.Payment, error)
	MarkConfirmed(ctx context.Context, paymentID int64) (*domain.Payment, error)
	MarkFailed(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ApplyConfirmed(ctx context.Context, paymentID int64) error
}
