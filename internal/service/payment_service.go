package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

// PaymentService леджер платежей и сверка подтвержденных платежей с балансом.
// Сигналы от шлюза приходят "как минимум один раз", возможно с дублями -
// все переходы и зачисления построены так, чтобы дубль был no-op.
type PaymentService struct {
	uow         uow.UOW
	paymentRepo PaymentRepository
	userRepo    UserRepository
	l           *logrus.Entry
}

func NewPaymentService(u uow.UOW, l *logrus.Logger) (*PaymentService, error) {
	paymentRepo, paymentRepoErr := uow.GetRepositoryAs[PaymentRepository](u, uow.RepositoryName(repoargs.PaymentRepoName))
	if paymentRepoErr != nil {
		return nil, paymentRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &PaymentService{
		uow:         u,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		l:           l.WithField("component", "payments"),
	}, nil
}

// Get возвращает платеж или domain.ErrRecordNotFound.
func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payment, nil
}

// PendingPayments возвращает платежи в статусе PENDING для опроса шлюза.
func (s *PaymentService) PendingPayments(ctx context.Context, limit uint) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetPending(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

// UnappliedPayments возвращает подтвержденные платежи, сумма которых еще не
// зачислена на баланс. Непустой список означает, что зачисление сорвалось
// после перехода статуса и его нужно повторить.
func (s *PaymentService) UnappliedPayments(ctx context.Context, limit uint) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.GetUnapplied(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payments, nil
}

// MarkConfirmed переводит платеж PENDING -> CONFIRMED. Повторный вызов для уже
// подтвержденного платежа - no-op без ошибки (шлюзы доставляют вебхуки
// с дублями). При первом реальном переходе очищается корзина юзера: именно
// подтверждение, а не инициация чекаута, сигнализирует о завершенной покупке.
func (s *PaymentService) MarkConfirmed(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.markTerminal(ctx, paymentID, domain.PaymentStatusConfirmed)
}

// MarkFailed переводит платеж PENDING -> FAILED. Дубль - no-op.
func (s *PaymentService) MarkFailed(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.markTerminal(ctx, paymentID, domain.PaymentStatusFailed)
}

func (s *PaymentService) markTerminal(
	ctx context.Context,
	paymentID int64,
	target domain.PaymentStatusType,
) (*domain.Payment, error) {
	var payment *domain.Payment

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, paymentRepoErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}

		// Условный апдейт `WHERE status = PENDING`: из двух конкурентных
		// доставок подтверждения ровно одна совершит переход.
		updated, dbPayment, updErr := paymentRepo.UpdateStatusFromPending(c, repoargs.PaymentStatusUpdate{
			PaymentID: paymentID,
			Status:    target,
		})
		if updErr != nil {
			return updErr //nolint:wrapcheck
		}

		if !updated {
			existing, findErr := paymentRepo.FindByID(c, paymentID)
			if findErr != nil {
				return findErr //nolint:wrapcheck
			}
			if existing.Status == target {
				// дубль доставки, состояние уже нужное
				payment = existing
				return nil
			}
			s.l.WithFields(logrus.Fields{
				"paymentID": paymentID,
				"from":      existing.Status,
				"to":        target,
			}).Error("integrity anomaly: transition between terminal statuses rejected")
			return domain.NewInvalidTransitionError(paymentID, existing.Status, target)
		}

		payment = dbPayment

		if target == domain.PaymentStatusConfirmed {
			cartRepo, cartRepoErr := uow.GetAs[CartRepository](tx, uow.RepositoryName(repoargs.CartRepoName))
			if cartRepoErr != nil {
				return cartRepoErr //nolint:wrapcheck
			}
			if clearErr := cartRepo.Clear(c, dbPayment.UserID); clearErr != nil {
				return clearErr //nolint:wrapcheck
			}
		}
		return nil
	})

	if txErr != nil {
		return nil, fmt.Errorf("marking payment %s: %w", target, txErr)
	}
	return payment, nil
}

// ApplyConfirmed зачисляет сумму подтвержденного платежа на баланс юзера.
// Зачисление происходит максимум один раз на платеж: пометка applied и
// зачисление выполняются одной транзакцией, сама пометка - условным апдейтом
// `WHERE NOT applied`, так что два конкурентных вызова не смогут оба пройти
// проверку. Возвращает:
//   - domain.ErrRecordNotFound для неизвестного платежа;
//   - domain.ErrNotConfirmed для платежа в статусе PENDING или FAILED;
//   - nil (no-op) для уже зачисленного - дубль логируется как аномалия.
func (s *PaymentService) ApplyConfirmed(ctx context.Context, paymentID int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		paymentRepo, paymentRepoErr := uow.GetAs[PaymentRepository](tx, uow.RepositoryName(repoargs.PaymentRepoName))
		if paymentRepoErr != nil {
			return paymentRepoErr //nolint:wrapcheck
		}

		marked, applied, markErr := paymentRepo.MarkApplied(c, paymentID)
		if markErr != nil {
			return markErr //nolint:wrapcheck
		}

		if !marked {
			existing, findErr := paymentRepo.FindByID(c, paymentID)
			if findErr != nil {
				return findErr //nolint:wrapcheck
			}
			if existing.Status != domain.PaymentStatusConfirmed {
				return fmt.Errorf("payment %d in status %s: %w", paymentID, existing.Status, domain.ErrNotConfirmed)
			}
			// existing.Applied == true: повторная доставка подтверждения.
			s.l.WithField("paymentID", paymentID).
				Warn("duplicate reconciliation attempt, balance already credited")
			return nil
		}

		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		balance, creditErr := userRepo.AddToBalance(c, applied.UserID, applied.Amount)
		if creditErr != nil {
			return creditErr //nolint:wrapcheck
		}

		s.l.WithFields(logrus.Fields{
			"paymentID": paymentID,
			"userID":    applied.UserID,
			"amount":    applied.Amount,
			"balance":   balance,
		}).Info("payment applied to balance")
		return nil
	})

	if txErr != nil {
		return fmt.Errorf("applying confirmed payment: %w", txErr)
	}
	return nil
}

// IsSubscriptionActive подписка активна пока баланс юзера больше нуля.
// Чистая производная от баланса, без побочных эффектов.
func (s *PaymentService) IsSubscriptionActive(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	return user.Balance.IsPositive(), nil
}
