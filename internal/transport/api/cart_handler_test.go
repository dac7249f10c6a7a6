package api

import (
	"bytes"
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

type CartHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCartService *mocks.MockCartServicer
	jwtSecret       []byte
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockCartService = mocks.NewMockCartServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout),
		CartService:  s.mockCartService,
		JWTSecretKey: s.jwtSecret,
	})
}

func (s *CartHandlerTestSuite) TestCreate() {
	var currentUserID int64 = 1

	currentUserJWTToken, jwtErr := tokens.GenerateUserJWT(currentUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	var knownProductID int64 = 10
	var unknownProductID int64 = 404

	// Валидный запрос.
	s.mockCartService.EXPECT().
		AddItem(gomock.Any(), currentUserID, knownProductID, int32(2)).
		Return(&domain.CartEntry{UserID: currentUserID, ProductID: knownProductID, Quantity: 2}, nil)
	// Количество не передано - подразумевается одна штука.
	s.mockCartService.EXPECT().
		AddItem(gomock.Any(), currentUserID, knownProductID, int32(1)).
		Return(&domain.CartEntry{UserID: currentUserID, ProductID: knownProductID, Quantity: 3}, nil)
	// Неизвестный товар.
	s.mockCartService.EXPECT().
		AddItem(gomock.Any(), currentUserID, unknownProductID, int32(1)).
		Return(nil, domain.ErrRecordNotFound)

	cases := []struct {
		name       string
		params     *CartAddParams
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			params:     &CartAddParams{ProductID: knownProductID, Quantity: 2},
			jwtToken:   currentUserJWTToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "default quantity",
			params:     &CartAddParams{ProductID: knownProductID},
			jwtToken:   currentUserJWTToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "unknown product",
			params:     &CartAddParams{ProductID: unknownProductID, Quantity: 1},
			jwtToken:   currentUserJWTToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "not authorized",
			params:     &CartAddParams{ProductID: knownProductID, Quantity: 1},
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "bad request",
			params:     nil,
			jwtToken:   currentUserJWTToken,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			var payload []byte
			if t.params != nil {
				payload, _ = json.Marshal(t.params)
			}

			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + CartRoute,
				Body:   bytes.NewReader(payload),
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
		})
	}
}

func (s *CartHandlerTestSuite) TestIndex() {
	var userID int64 = 1
	var emptyCartUserID int64 = 2

	userJWTToken, uJWTErr := tokens.GenerateUserJWT(userID, time.Hour, s.jwtSecret)
	s.Require().NoError(uJWTErr)
	emptyCartJWTToken, eJWTErr := tokens.GenerateUserJWT(emptyCartUserID, time.Hour, s.jwtSecret)
	s.Require().NoError(eJWTErr)

	items := []domain.CartItem{
		{
			Entry: domain.CartEntry{UserID: userID, ProductID: 1, Quantity: 2},
			Name:  "Solar Light A",
			Price: decimal.RequireFromString("25.00"),
		},
		{
			Entry: domain.CartEntry{UserID: userID, ProductID: 3, Quantity: 1},
			Name:  "Solar Light C",
			Price: decimal.RequireFromString("60.00"),
		},
	}

	s.mockCartService.EXPECT().ListItems(gomock.Any(), userID).Return(items, nil)
	s.mockCartService.EXPECT().ListItems(gomock.Any(), emptyCartUserID).Return([]domain.CartItem{}, nil)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
		wantItems  int
	}{
		{
			name:       "all ok",
			jwtToken:   userJWTToken,
			wantStatus: http.StatusOK,
			wantItems:  2,
		}, {
			name:       "not authorized",
			jwtToken:   "",
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "empty cart",
			jwtToken:   emptyCartJWTToken,
			wantStatus: http.StatusNoContent,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + CartRoute,
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

			if t.wantItems > 0 {
				var response []CartItemResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
				s.Len(response, t.wantItems)
				s.Equal("Solar Light A", response[0].Name)
				s.InDelta(25.00, response[0].Price, 0.001)
			}
		})
	}
}
