package domain

import "github.com/shopspring/decimal"

// GatewayLineItem строка заказа в том виде, в котором ее ожидает платежный
// шлюз. Протокол шлюза для нас непрозрачен: это весь словарь общения с ним.
type GatewayLineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int32
}

type CreateSessionArgs struct {
	Items      []GatewayLineItem
	SuccessURL string
	CancelURL  string
}

type GatewaySession struct {
	SessionRef string
}
