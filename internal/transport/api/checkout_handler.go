package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/sunshop/internal/domain"
)

type CheckoutHandler struct {
	checkoutSvs CheckoutServicer
}

func NewCheckoutHandler(checkoutSvs CheckoutServicer) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutSvs: checkoutSvs,
	}
}

type LineItemResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int32   `json:"quantity"`
	Total     float64 `json:"total"`
}

type CheckoutResponse struct {
	PaymentID  int64              `json:"payment_id"`
	SessionRef string             `json:"session_ref"`
	Total      float64            `json:"total"`
	Items      []LineItemResponse `json:"items"`
}

// Create POST RouteGroup + CheckoutRoute. Превращает корзину текущего юзера
// в платежную сессию шлюза и PENDING запись леджера.
func (h *CheckoutHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	// таймаут вызова шлюза сервис ограничивает сам, поэтому здесь
	// таймаут сервисного слоя не накладываем.
	session, err := h.checkoutSvs.Checkout(c, currentUserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCart):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("cart is empty")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(err, domain.ErrPaymentGateway):
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			c.AbortWithStatus(http.StatusBadGateway)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	response := CheckoutResponse{
		PaymentID:  session.PaymentID,
		SessionRef: session.SessionRef,
		Total:      session.Total.InexactFloat64(),
		Items:      make([]LineItemResponse, len(session.Items)),
	}
	for i, item := range session.Items {
		response.Items[i] = LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.InexactFloat64(),
			Quantity:  item.Quantity,
			Total:     item.Total.InexactFloat64(),
		}
	}

	c.JSON(http.StatusOK, response)
}
