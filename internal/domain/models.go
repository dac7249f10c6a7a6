package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	Password  string
	Balance   decimal.Decimal
}

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

type CartEntry struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
	ProductID int64
	Quantity  int32
}

// CartItem позиция корзины, дополненная данными каталога. Цена здесь
// информационная: при чекауте цена перечитывается из каталога заново.
type CartItem struct {
	Entry CartEntry
	Name  string
	Price decimal.Decimal
}

type Payment struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     int64
	Amount     decimal.Decimal
	Status     PaymentStatusType
	GatewayRef string
	// Applied выставляется в true ровно один раз - когда сумма платежа
	// зачислена на баланс юзера.
	Applied bool
}

// LineItem строка чекаута. UnitPrice фиксируется на момент чекаута,
// Total округлен до сотых банковским округлением.
type LineItem struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int32
	Total     decimal.Decimal
}

// CheckoutSession временный value object одного вызова чекаута. Не персистится.
type CheckoutSession struct {
	PaymentID  int64
	SessionRef string
	Items      []LineItem
	Total      decimal.Decimal
}
