package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/sunshop/internal/domain"
)

type CartHandler struct {
	cartSvs CartServicer
}

func NewCartHandler(cartSvs CartServicer) *CartHandler {
	return &CartHandler{
		cartSvs: cartSvs,
	}
}

type CartAddParams struct {
	ProductID int64 `binding:"required,gt=0"        json:"product_id"`
	Quantity  int32 `binding:"omitempty,gte=1"      json:"quantity"`
}

type CartItemResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

// Create POST RouteGroup + CartRoute. Добавляет товар в корзину текущего
// юзера; повторное добавление наращивает количество.
func (h *CartHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params CartAddParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	if params.Quantity == 0 {
		params.Quantity = 1
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entry, addErr := h.cartSvs.AddItem(reqCtx, currentUserID, params.ProductID, params.Quantity)
	if addErr != nil {
		if errors.Is(addErr, domain.ErrRecordNotFound) {
			_ = c.AbortWithError(http.StatusNotFound, errors.New("unknown product")).
				SetType(gin.ErrorTypePublic)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, addErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": entry.ProductID,
		"quantity":   entry.Quantity,
	})
}

// Index GET RouteGroup + CartRoute.
func (h *CartHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	items, err := h.cartSvs.ListItems(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	if len(items) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	var response = make([]CartItemResponse, len(items))
	for i, item := range items {
		response[i] = CartItemResponse{
			ProductID: item.Entry.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Entry.Quantity,
		}
	}

	c.JSON(http.StatusOK, response)
}
