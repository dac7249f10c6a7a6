// Package client реализует HTTP клиент платежного шлюза. Протокол шлюза
// для системы непрозрачен: создать сессию, спросить статус.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"

	"io"
)

const (
	RouteCreateSession = "/api/sessions"
	RouteSessionStatus = "/api/sessions/%s"
)

// Константы минимального и максимального значения в заголовке Retry-After.
const (
	minRetryAfter = 1
	maxRetryAfter = 120
)

type StatusType string

const (
	StatusPending   StatusType = "PENDING"
	StatusConfirmed StatusType = "CONFIRMED"
	StatusFailed    StatusType = "FAILED"
)

type lineItemPayload struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
}

type createSessionPayload struct {
	Items      []lineItemPayload `json:"items"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

type createSessionResponse struct {
	SessionRef string `json:"session_ref"`
}

type StatusResponse struct {
	SessionRef string     `json:"session_ref"`
	Status     StatusType `json:"status"`
}

// HTTPClient реализует service.PaymentGateway поверх HTTP API шлюза.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) HTTPClient {
	return HTTPClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// CreateSession запрашивает у шлюза платежную сессию для набора строк заказа.
// Ответ со статусом отличным от http.StatusOK превращается в StatusCodeError.
func (c HTTPClient) CreateSession(
	ctx context.Context,
	args domain.CreateSessionArgs,
) (*domain.GatewaySession, error) {
	payload := createSessionPayload{
		Items:      make([]lineItemPayload, len(args.Items)),
		SuccessURL: args.SuccessURL,
		CancelURL:  args.CancelURL,
	}
	for i, item := range args.Items {
		payload.Items[i] = lineItemPayload{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, pkgerrors.Wrap(marshalErr, "marshal create session payload")
	}

	var response createSessionResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+RouteCreateSession, bytes.NewReader(body), &response); err != nil {
		return nil, pkgerrors.Wrap(err, "create session")
	}

	return &domain.GatewaySession{SessionRef: response.SessionRef}, nil
}

// GetPaymentStatus возвращает статус платежной сессии. При ответе 429
// возвращает TooManyRequestError с паузой из заголовка Retry-After.
func (c HTTPClient) GetPaymentStatus(ctx context.Context, sessionRef string) (*StatusResponse, error) {
	url := c.baseURL + fmt.Sprintf(RouteSessionStatus, sessionRef)

	var response StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &response); err != nil {
		return nil, pkgerrors.Wrap(err, "get session status")
	}
	return &response, nil
}

//nolint:nonamedreturns
func (c HTTPClient) doJSON(ctx context.Context, method, url string, body io.Reader, out any) (err error) {
	req, reqErr := http.NewRequestWithContext(ctx, method, url, body)
	if reqErr != nil {
		return pkgerrors.Wrap(reqErr, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return pkgerrors.Wrap(doErr, "do request")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return NewTooManyRequestError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	// Статус отличный от http.StatusOK нас не интересует.
	if resp.StatusCode != http.StatusOK {
		return NewStatusCodeError(resp.StatusCode)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return pkgerrors.Wrap(readErr, "read response")
	}

	if jsonErr := json.Unmarshal(respBody, out); jsonErr != nil {
		return pkgerrors.Wrap(jsonErr, "parse response")
	}
	return nil
}

func parseRetryAfter(header string) time.Duration {
	minValue := decimal.NewFromInt(minRetryAfter)
	maxValue := decimal.NewFromInt(maxRetryAfter)

	retryAfter, parseErr := decimal.NewFromString(header)
	if parseErr != nil || retryAfter.LessThan(minValue) || retryAfter.GreaterThan(maxValue) {
		// в случае ошибки или неверных данных ставим 60 секунд
		retryAfter = decimal.NewFromInt(60) //nolint:mnd
	}
	return time.Duration(retryAfter.IntPart()) * time.Second
}
