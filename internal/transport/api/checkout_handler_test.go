package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/logger"
	"github.com/fsdevblog/sunshop/internal/service/tokens"
	"github.com/fsdevblog/sunshop/internal/transport/api/mocks"
	"github.com/fsdevblog/sunshop/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockCheckoutService *mocks.MockCheckoutServicer
	jwtSecret           []byte
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockCheckoutService = mocks.NewMockCheckoutServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		CheckoutService: s.mockCheckoutService,
		JWTSecretKey:    s.jwtSecret,
	})
}

func (s *CheckoutHandlerTestSuite) TestCreate() {
	var userID int64 = 1
	var emptyCartUserID int64 = 2
	var gatewayDownUserID int64 = 3

	userJWTToken, uJWTErr := tokens.GenerateUserJWT(userID, time.Hour, s.jwtSecret)
	s.Require().NoError(uJWTErr)
	emptyCartJWTToken, eJWTErr := tokens.GenerateUserJWT(emptyCartUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(eJWTErr)
	gatewayDownJWTToken, gJWTErr := tokens.GenerateUserJWT(gatewayDownUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(gJWTErr)

	session := domain.CheckoutSession{
		PaymentID:  7,
		SessionRef: "sess_123",
		Items: []domain.LineItem{
			{
				ProductID: 1,
				Name:      "Solar Light A",
				UnitPrice: decimal.RequireFromString("25.00"),
				Quantity:  2,
				Total:     decimal.RequireFromString("50.00"),
			},
		},
		Total: decimal.RequireFromString("50.00"),
	}

	s.mockCheckoutService.EXPECT().
		Checkout(gomock.Any(), userID).
		Return(&session, nil)
	s.mockCheckoutService.EXPECT().
		Checkout(gomock.Any(), emptyCartUserID).
		Return(nil, domain.ErrEmptyCart)
	s.mockCheckoutService.EXPECT().
		Checkout(gomock.Any(), gatewayDownUserID).
		Return(nil, domain.ErrPaymentGateway)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
		wantBody   bool
	}{
		{
			name:       "all ok",
			jwtToken:   userJWTToken,
			wantStatus: http.StatusOK,
			wantBody:   true,
		}, {
			name:       "empty cart",
			jwtToken:   emptyCartJWTToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "gateway unavailable",
			jwtToken:   gatewayDownJWTToken,
			wantStatus: http.StatusBadGateway,
		}, {
			name:       "not authorized",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CheckoutRoute,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithBearerToken(t.jwtToken))
			}

			res, err := testutils.MakeRequest(args, reqOpts...)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantBody {
				var response CheckoutResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
				s.Equal(session.PaymentID, response.PaymentID)
				s.Equal(session.SessionRef, response.SessionRef)
				s.InDelta(50.00, response.Total, 0.001)
				s.Require().Len(response.Items, 1)
				s.Equal(int32(2), response.Items[0].Quantity)
			}
		})
	}
}
