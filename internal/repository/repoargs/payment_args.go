package repoargs

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
)

type PaymentCreate struct {
	UserID     int64
	Amount     decimal.Decimal
	GatewayRef string
}

// PaymentApplied результат условного апдейта пометки "зачислено".
// Возвращается только если пометка реально произошла.
type PaymentApplied struct {
	UserID int64
	Amount decimal.Decimal
}

type PaymentStatusUpdate struct {
	PaymentID int64
	Status    domain.PaymentStatusType
}
