package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	catalogSvs CatalogServicer
}

func NewProductsHandler(catalogSvs CatalogServicer) *ProductsHandler {
	return &ProductsHandler{
		catalogSvs: catalogSvs,
	}
}

type ProductResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Index GET RouteGroup + ProductsRoute. Каталог открыт без авторизации.
func (h *ProductsHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.catalogSvs.List(reqCtx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	var response = make([]ProductResponse, len(products))
	for i, product := range products {
		response[i] = ProductResponse{
			ID:    product.ID,
			Name:  product.Name,
			Price: product.Price.InexactFloat64(),
		}
	}

	c.JSON(http.StatusOK, response)
}
