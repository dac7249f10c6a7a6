package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/logger"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/internal/service/mocks"
	"github.com/fsdevblog/sunshop/pkg/uow"
	uowmocks "github.com/fsdevblog/sunshop/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockPaymentRepo *mocks.MockPaymentRepository
	mockUserRepo    *mocks.MockUserRepository
	mockCartRepo    *mocks.MockCartRepository
	paymentService  *PaymentService
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockPaymentRepo = mocks.NewMockPaymentRepository(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockCartRepo = mocks.NewMockCartRepository(s.mockCtrl)

	// Мок получения репозиториев из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	paymentService, servErr := NewPaymentService(s.mockUOW, logger.New(io.Discard))
	s.Require().NoError(servErr)
	s.paymentService = paymentService
}

func (s *PaymentServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectTransaction пробрасывает вызов uow.Do в мок транзакции.
func (s *PaymentServiceTestSuite) expectTransaction() {
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func (s *PaymentServiceTestSuite) TestMarkConfirmed() {
	var paymentID int64 = 1
	var userID int64 = 100

	confirmed := domain.Payment{
		ID:        paymentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		UserID:    userID,
		Amount:    decimal.RequireFromString("65.00"),
		Status:    domain.PaymentStatusConfirmed,
	}

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CartRepoName)).
		Return(s.mockCartRepo, nil)

	s.mockPaymentRepo.EXPECT().
		UpdateStatusFromPending(gomock.Any(), repoargs.PaymentStatusUpdate{
			PaymentID: paymentID,
			Status:    domain.PaymentStatusConfirmed,
		}).
		Return(true, &confirmed, nil)

	// Подтверждение платежа завершает покупку - корзина очищается
	// той же транзакцией.
	s.mockCartRepo.EXPECT().Clear(gomock.Any(), userID).Return(nil)

	payment, err := s.paymentService.MarkConfirmed(context.Background(), paymentID)

	s.Require().NoError(err)
	s.Equal(&confirmed, payment)
}

func (s *PaymentServiceTestSuite) TestMarkConfirmedDuplicate() {
	var paymentID int64 = 1

	alreadyConfirmed := domain.Payment{
		ID:     paymentID,
		UserID: 100,
		Amount: decimal.RequireFromString("65.00"),
		Status: domain.PaymentStatusConfirmed,
	}

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)

	// Условный апдейт не прошел - платеж уже не PENDING.
	s.mockPaymentRepo.EXPECT().
		UpdateStatusFromPending(gomock.Any(), gomock.Any()).
		Return(false, nil, nil)
	s.mockPaymentRepo.EXPECT().
		FindByID(gomock.Any(), paymentID).
		Return(&alreadyConfirmed, nil)

	// Корзина при дубле не трогается.
	s.mockCartRepo.EXPECT().Clear(gomock.Any(), gomock.Any()).Times(0)

	payment, err := s.paymentService.MarkConfirmed(context.Background(), paymentID)

	s.Require().NoError(err)
	s.Equal(&alreadyConfirmed, payment)
}

func (s *PaymentServiceTestSuite) TestMarkConfirmedAfterFailed() {
	var paymentID int64 = 1

	failed := domain.Payment{
		ID:     paymentID,
		UserID: 100,
		Amount: decimal.RequireFromString("65.00"),
		Status: domain.PaymentStatusFailed,
	}

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)

	s.mockPaymentRepo.EXPECT().
		UpdateStatusFromPending(gomock.Any(), gomock.Any()).
		Return(false, nil, nil)
	s.mockPaymentRepo.EXPECT().
		FindByID(gomock.Any(), paymentID).
		Return(&failed, nil)

	payment, err := s.paymentService.MarkConfirmed(context.Background(), paymentID)

	s.Require().Error(err)
	var transitionErr *domain.InvalidTransitionError
	s.Require().ErrorAs(err, &transitionErr)
	s.Equal(domain.PaymentStatusFailed, transitionErr.From)
	s.Equal(domain.PaymentStatusConfirmed, transitionErr.To)
	s.Nil(payment)
}

func (s *PaymentServiceTestSuite) TestMarkFailed() {
	var paymentID int64 = 1

	failed := domain.Payment{
		ID:     paymentID,
		UserID: 100,
		Amount: decimal.RequireFromString("25.00"),
		Status: domain.PaymentStatusFailed,
	}

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)

	s.mockPaymentRepo.EXPECT().
		UpdateStatusFromPending(gomock.Any(), repoargs.PaymentStatusUpdate{
			PaymentID: paymentID,
			Status:    domain.PaymentStatusFailed,
		}).
		Return(true, &failed, nil)

	// FAILED корзину не очищает.
	s.mockCartRepo.EXPECT().Clear(gomock.Any(), gomock.Any()).Times(0)

	payment, err := s.paymentService.MarkFailed(context.Background(), paymentID)

	s.Require().NoError(err)
	s.Equal(&failed, payment)
}

func (s *PaymentServiceTestSuite) TestApplyConfirmed() {
	var paymentID int64 = 1
	var userID int64 = 100
	amount := decimal.RequireFromString("65.00")

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil)

	s.mockPaymentRepo.EXPECT().
		MarkApplied(gomock.Any(), paymentID).
		Return(true, &repoargs.PaymentApplied{UserID: userID, Amount: amount}, nil)

	s.mockUserRepo.EXPECT().
		AddToBalance(gomock.Any(), userID, amount).
		Return(amount, nil)

	err := s.paymentService.ApplyConfirmed(context.Background(), paymentID)

	s.Require().NoError(err)
}

func (s *PaymentServiceTestSuite) TestApplyConfirmedDuplicate() {
	var paymentID int64 = 1

	applied := domain.Payment{
		ID:      paymentID,
		UserID:  100,
		Amount:  decimal.RequireFromString("65.00"),
		Status:  domain.PaymentStatusConfirmed,
		Applied: true,
	}

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)

	// Условный апдейт `WHERE NOT applied` не прошел - зачисление уже было.
	s.mockPaymentRepo.EXPECT().
		MarkApplied(gomock.Any(), paymentID).
		Return(false, nil, nil)
	s.mockPaymentRepo.EXPECT().
		FindByID(gomock.Any(), paymentID).
		Return(&applied, nil)

	// Повторное зачисление не происходит.
	s.mockUserRepo.EXPECT().
		AddToBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		Times(0)

	err := s.paymentService.ApplyConfirmed(context.Background(), paymentID)

	s.Require().NoError(err)
}

func (s *PaymentServiceTestSuite) TestApplyConfirmedNotConfirmed() {
	pending := domain.Payment{
		ID:     1,
		UserID: 100,
		Amount: decimal.RequireFromString("65.00"),
		Status: domain.PaymentStatusPending,
	}
	failed := domain.Payment{
		ID:     2,
		UserID: 100,
		Amount: decimal.RequireFromString("25.00"),
		Status: domain.PaymentStatusFailed,
	}

	for _, payment := range []domain.Payment{pending, failed} {
		s.Run(string(payment.Status), func() {
			s.expectTransaction()
			s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
				Return(s.mockPaymentRepo, nil)

			s.mockPaymentRepo.EXPECT().
				MarkApplied(gomock.Any(), payment.ID).
				Return(false, nil, nil)
			s.mockPaymentRepo.EXPECT().
				FindByID(gomock.Any(), payment.ID).
				Return(&payment, nil)

			err := s.paymentService.ApplyConfirmed(context.Background(), payment.ID)

			s.Require().ErrorIs(err, domain.ErrNotConfirmed)
		})
	}
}

func (s *PaymentServiceTestSuite) TestApplyConfirmedUnknownPayment() {
	var paymentID int64 = 404

	s.expectTransaction()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil)

	s.mockPaymentRepo.EXPECT().
		MarkApplied(gomock.Any(), paymentID).
		Return(false, nil, nil)
	s.mockPaymentRepo.EXPECT().
		FindByID(gomock.Any(), paymentID).
		Return(nil, domain.ErrRecordNotFound)

	err := s.paymentService.ApplyConfirmed(context.Background(), paymentID)

	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *PaymentServiceTestSuite) TestIsSubscriptionActive() {
	cases := []struct {
		name       string
		userID     int64
		balance    decimal.Decimal
		wantActive bool
	}{
		{
			name:       "positive balance",
			userID:     1,
			balance:    decimal.RequireFromString("65.00"),
			wantActive: true,
		}, {
			name:       "zero balance",
			userID:     2,
			balance:    decimal.Zero,
			wantActive: false,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockUserRepo.EXPECT().
				FindByID(gomock.Any(), t.userID).
				Return(&domain.User{ID: t.userID, Balance: t.balance}, nil)

			active, err := s.paymentService.IsSubscriptionActive(s.T().Context(), t.userID)

			s.Require().NoError(err)
			s.Equal(t.wantActive, active)
		})
	}
}

func (s *PaymentServiceTestSuite) TestPendingPayments() {
	payments := []domain.Payment{
		{ID: 1, UserID: 100, Status: domain.PaymentStatusPending},
		{ID: 2, UserID: 101, Status: domain.PaymentStatusPending},
	}

	s.mockPaymentRepo.EXPECT().
		GetPending(gomock.Any(), uint(50)).
		Return(payments, nil)

	result, err := s.paymentService.PendingPayments(context.Background(), 50)

	s.Require().NoError(err)
	s.Equal(payments, result)
}

func (s *PaymentServiceTestSuite) TestUnappliedPayments() {
	payments := []domain.Payment{
		{ID: 5, UserID: 100, Status: domain.PaymentStatusConfirmed, Applied: false},
	}

	s.mockPaymentRepo.EXPECT().
		GetUnapplied(gomock.Any(), uint(50)).
		Return(payments, nil)

	result, err := s.paymentService.UnappliedPayments(context.Background(), 50)

	s.Require().NoError(err)
	s.Equal(payments, result)
}
