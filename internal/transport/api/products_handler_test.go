package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/logger"
	"github.com/fsdevblog/sunshop/internal/transport/api/mocks"
	"github.com/fsdevblog/sunshop/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type ProductsHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockCatalogService *mocks.MockCatalogServicer
}

func TestProductsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProductsHandlerTestSuite))
}

func (s *ProductsHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockCatalogService = mocks.NewMockCatalogServicer(mockCtrl)

	s.router = New(RouterArgs{
		Logger:         logger.New(os.Stdout),
		CatalogService: s.mockCatalogService,
		JWTSecretKey:   []byte("super secret key"),
	})
}

// TestIndex каталог открыт без авторизации.
func (s *ProductsHandlerTestSuite) TestIndex() {
	products := []domain.Product{
		{ID: 1, Name: "Solar Light A", Price: decimal.RequireFromString("25.00")},
		{ID: 2, Name: "Solar Light B", Price: decimal.RequireFromString("40.00")},
		{ID: 3, Name: "Solar Light C", Price: decimal.RequireFromString("60.00")},
	}

	s.mockCatalogService.EXPECT().List(gomock.Any()).Return(products, nil)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + ProductsRoute,
	})
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().NoError(err)
	s.Equal(http.StatusOK, res.StatusCode)

	var response []ProductResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Require().Len(response, 3)
	s.Equal("Solar Light A", response[0].Name)
	s.InDelta(25.00, response[0].Price, 0.001)
	s.InDelta(60.00, response[2].Price, 0.001)
}
