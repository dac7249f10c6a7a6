package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/sunshop/internal/domain"
)

type PaymentsHandler struct {
	paymentSvs PaymentServicer
}

func NewPaymentsHandler(paymentSvs PaymentServicer) *PaymentsHandler {
	return &PaymentsHandler{
		paymentSvs: paymentSvs,
	}
}

type PaymentWebhookParams struct {
	PaymentID int64  `binding:"required,gt=0"                    json:"payment_id"`
	Status    string `binding:"required,oneof=confirmed failed"  json:"status"`
}

// Webhook POST RouteGroup + PaymentWebhookRoute. Принимает сигнал шлюза о
// конечном статусе платежа. Шлюз доставляет сигналы "как минимум один раз" -
// дубль отвечает 200 без повторных эффектов.
func (h *PaymentsHandler) Webhook(c *gin.Context) {
	var params PaymentWebhookParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var err error
	if params.Status == "confirmed" {
		_, err = h.paymentSvs.MarkConfirmed(reqCtx, params.PaymentID)
		if err == nil {
			err = h.paymentSvs.ApplyConfirmed(reqCtx, params.PaymentID)
		}
	} else {
		_, err = h.paymentSvs.MarkFailed(reqCtx, params.PaymentID)
	}

	if err != nil {
		var transitionErr *domain.InvalidTransitionError
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			_ = c.AbortWithError(http.StatusNotFound, errors.New("unknown payment")).
				SetType(gin.ErrorTypePublic)
		case errors.As(err, &transitionErr), errors.Is(err, domain.ErrNotConfirmed):
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			c.AbortWithStatus(http.StatusConflict)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.AbortWithStatus(http.StatusOK)
}

type SubscriptionResponse struct {
	Status domain.SubscriptionStatusType `json:"status"`
}

// SubscriptionStatus GET RouteGroup + SubscriptionRoute. Подписка активна
// пока баланс юзера больше нуля.
func (h *PaymentsHandler) SubscriptionStatus(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	active, err := h.paymentSvs.IsSubscriptionActive(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	status := domain.SubscriptionInactive
	if active {
		status = domain.SubscriptionActive
	}
	c.JSON(http.StatusOK, SubscriptionResponse{Status: status})
}
