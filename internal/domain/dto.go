package domain

type PaymentStatusType string

const (
	PaymentStatusPending   PaymentStatusType = "PENDING"
	PaymentStatusConfirmed PaymentStatusType = "CONFIRMED"
	PaymentStatusFailed    PaymentStatusType = "FAILED"
)

// Terminal сообщает, является ли статус конечным. Из конечного статуса
// переходов нет.
func (s PaymentStatusType) Terminal() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusFailed
}

type SubscriptionStatusType string

const (
	SubscriptionActive   SubscriptionStatusType = "active"
	SubscriptionInactive SubscriptionStatusType = "inactive"
)
