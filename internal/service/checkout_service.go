package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

// currencyExponent кол-во знаков минимальной денежной единицы (центы).
const currencyExponent = 2

const defaultGatewayTimeout = 10 * time.Second

type CheckoutService struct {
	uow            uow.UOW
	cartRepo       CartRepository
	gateway        PaymentGateway
	successURL     string
	cancelURL      string
	gatewayTimeout time.Duration
}

type CheckoutServiceArgs struct {
	UOW        uow.UOW
	Gateway    PaymentGateway
	SuccessURL string
	CancelURL  string
	// GatewayTimeout ограничивает вызов шлюза - единственную долгую операцию
	// чекаута. Ноль означает defaultGatewayTimeout.
	GatewayTimeout time.Duration
}

func NewCheckoutService(args CheckoutServiceArgs) (*CheckoutService, error) {
	cartRepo, cartRepoErr := uow.GetRepositoryAs[CartRepository](args.UOW, uow.RepositoryName(repoargs.CartRepoName))
	if cartRepoErr != nil {
		return nil, cartRepoErr
	}
	timeout := args.GatewayTimeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &CheckoutService{
		uow:            args.UOW,
		cartRepo:       cartRepo,
		gateway:        args.Gateway,
		successURL:     args.SuccessURL,
		cancelURL:      args.CancelURL,
		gatewayTimeout: timeout,
	}, nil
}

// Checkout превращает корзину юзера в оплачиваемую сессию.
//
// Алгоритм работы:
//  1. Читает корзину; пустая корзина - domain.ErrEmptyCart.
//  2. Строит строки заказа по актуальным ценам каталога: цена перечитывается
//     в момент чекаута, изменение цены между добавлением в корзину и чекаутом
//     применяется. Сумма строки округляется до сотых банковским округлением.
//  3. Запрашивает у шлюза платежную сессию. Любая ошибка или таймаут -
//     domain.ErrPaymentGateway, запись в леджере при этом не создается.
//  4. Создает платеж в статусе PENDING на сумму всех строк.
//
// Корзина не очищается: чекаут может быть брошен юзером, сигналом завершения
// покупки служит только подтверждение платежа.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*domain.CheckoutSession, error) {
	items, itemsErr := s.cartRepo.GetByUserID(ctx, userID)
	if itemsErr != nil {
		return nil, fmt.Errorf("checkout: %w", itemsErr)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("checkout: %w", domain.ErrEmptyCart)
	}

	lineItems, total := buildLineItems(items)

	session, sessionErr := s.createGatewaySession(ctx, lineItems)
	if sessionErr != nil {
		return nil, fmt.Errorf("checkout: %w: %s", domain.ErrPaymentGateway, sessionErr.Error())
	}

	var payment *domain.Payment
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, paymentRepoErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}
		var createErr error
		payment, createErr = paymentRepo.Create(c, repoargs.PaymentCreate{
			UserID:     userID,
			Amount:     total,
			GatewayRef: session.SessionRef,
		})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("checkout: %w", txErr)
	}

	return &domain.CheckoutSession{
		PaymentID:  payment.ID,
		SessionRef: session.SessionRef,
		Items:      lineItems,
		Total:      total,
	}, nil
}

func (s *CheckoutService) createGatewaySession(ctx context.Context, lineItems []domain.LineItem) (*domain.GatewaySession, error) {
	gatewayItems := make([]domain.GatewayLineItem, len(lineItems))
	for i, item := range lineItems {
		gatewayItems[i] = domain.GatewayLineItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateSession(reqCtx, domain.CreateSessionArgs{
		Items:      gatewayItems,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return session, nil
}

// buildLineItems считает строки чекаута по текущим ценам каталога.
// RoundBank - округление к ближайшему четному (round-half-even).
func buildLineItems(items []domain.CartItem) ([]domain.LineItem, decimal.Decimal) {
	lineItems := make([]domain.LineItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		lineTotal := item.Price.
			Mul(decimal.NewFromInt32(item.Entry.Quantity)).
			RoundBank(currencyExponent)
		lineItems[i] = domain.LineItem{
			ProductID: item.Entry.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Entry.Quantity,
			Total:     lineTotal,
		}
		total = total.Add(lineTotal)
	}
	return lineItems, total
}
