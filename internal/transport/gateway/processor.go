// Package gateway опрашивает платежный шлюз по незавершенным платежам.
// Опрос - вторая линия доставки подтверждений после вебхука: шлюз может
// прислать сигнал дважды или не прислать вовсе, обе линии сходятся в
// идемпотентных операциях сервисного слоя.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"time"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/transport/gateway/client"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultAPITimeout             = 10 * time.Second
	defaultLimitPerIteration uint = 100
	defaultPollWorkers       uint = 10
)

// Processor обрабатывает статусы незавершенных платежей через API шлюза.
type Processor struct {
	client            Client
	svs               Servicer
	l                 *logrus.Entry
	limitPerIteration uint
	pollWorkers       uint
}

// New создает новый экземпляр процессора опроса шлюза.
func New(svs Servicer, apiBaseURL string, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "gateway",
		"module":    "processor",
	})

	return &Processor{
		svs:               svs,
		client:            client.New(apiBaseURL),
		l:                 loggerEntry,
		limitPerIteration: defaultLimitPerIteration,
		pollWorkers:       defaultPollWorkers,
	}
}

// SetLimitPerIteration устанавливает кол-во платежей, обрабатываемых в одной
// итерации обработчика.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetPollWorkers устанавливает кол-во воркеров, опрашивающих шлюз.
func (p *Processor) SetPollWorkers(workers uint) *Processor {
	p.pollWorkers = workers
	return p
}

// Run запускает опрос шлюза в бесконечном цикле до отмены контекста.
//
// Алгоритм работы:
//  1. В каждой итерации запрашивает через сервисный слой список PENDING
//     платежей (объем лимитируется через SetLimitPerIteration).
//  2. Воркеры (кол-во настраивается через SetPollWorkers) параллельно
//     запрашивают статусы у шлюза.
//  3. Конечные статусы применяются через сервисный слой: переход в леджере
//     плюс, для подтвержденных, зачисление на баланс.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"limitPerIteration": p.limitPerIteration,
		"pollWorkers":       p.pollWorkers,
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		default:
			if err := p.process(ctx); err != nil {
				if !errors.Is(err, ErrNoPayments) {
					p.l.WithError(err).Error("process error")
				}
				time.Sleep(time.Second) // небольшая пауза чтоб не заддосить БД.
			}
		}
	}
}

// process выполняет одну итерацию: дозачисление зависших CONFIRMED платежей,
// получение PENDING платежей, опрос шлюза и применение конечных статусов.
// Возвращает ErrNoPayments если опрашивать нечего.
func (p *Processor) process(ctx context.Context) error {
	p.sweepUnapplied(ctx)

	payments, paymentsErr := p.produce(ctx)
	if paymentsErr != nil {
		return fmt.Errorf("process: %w", paymentsErr)
	}

	results := p.runWorkers(ctx, payments)

	for _, result := range results {
		if result.Error != nil {
			// платеж останется PENDING и попадет в следующую итерацию
			continue
		}
		if result.Status == client.StatusPending {
			// шлюз еще не определился
			continue
		}
		if applyErr := p.applyResult(ctx, result); applyErr != nil {
			p.l.WithError(applyErr).
				WithField("paymentID", result.Payment.ID).
				Error("apply gateway status")
		}
	}
	return nil
}

// sweepUnapplied дозачисляет CONFIRMED платежи без зачисления: переход мог
// состояться по вебхуку, а зачисление сорваться до коммита. Повторное
// зачисление идемпотентно, поэтому подметать можно в каждой итерации.
func (p *Processor) sweepUnapplied(ctx context.Context) {
	listCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	payments, listErr := p.svs.UnappliedPayments(listCtx, p.limitPerIteration)
	cancel()
	if listErr != nil {
		p.l.WithError(listErr).Error("list unapplied payments")
		return
	}

	for _, payment := range payments {
		applyCtx, applyCancel := context.WithTimeout(ctx, defaultServiceTimeout)
		applyErr := p.svs.ApplyConfirmed(applyCtx, payment.ID)
		applyCancel()
		if applyErr != nil {
			p.l.WithError(applyErr).
				WithField("paymentID", payment.ID).
				Error("apply unapplied payment")
			continue
		}
		p.l.WithField("paymentID", payment.ID).Warn("credited payment left unapplied")
	}
}

// applyResult применяет конечный статус шлюза к платежу через сервисный слой.
func (p *Processor) applyResult(ctx context.Context, result workerResult) error {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	switch result.Status {
	case client.StatusConfirmed:
		if _, err := p.svs.MarkConfirmed(reqCtx, result.Payment.ID); err != nil {
			return fmt.Errorf("mark confirmed: %w", err)
		}
		if err := p.svs.ApplyConfirmed(reqCtx, result.Payment.ID); err != nil {
			return fmt.Errorf("apply confirmed: %w", err)
		}
	case client.StatusFailed:
		if _, err := p.svs.MarkFailed(reqCtx, result.Payment.ID); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
	case client.StatusPending:
	}
	return nil
}

// workerResult результат опроса шлюза по одному платежу.
type workerResult struct {
	WorkerID uint
	Payment  *domain.Payment
	Error    error
	Status   client.StatusType
}

// runWorkers запускает параллельных воркеров для опроса шлюза и ожидает конца
// их работы. Паттерн fan-out/fan-in.
func (p *Processor) runWorkers(ctx context.Context, payments []domain.Payment) []workerResult {
	var taskCh = make(chan *domain.Payment, len(payments))

	for _, payment := range payments {
		taskCh <- &payment
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(p.pollWorkers)) //nolint:gosec

	var resultCh = make(chan *workerResult, len(payments))

	for i := range p.pollWorkers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()

	close(resultCh)

	var results = make([]workerResult, 0, len(payments))
	for result := range resultCh {
		l := p.l.WithFields(logrus.Fields{
			"worker":    result.WorkerID,
			"paymentID": result.Payment.ID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("get payment status")
		} else {
			l.WithField("status", result.Status).Debug("gateway status received")
		}
		results = append(results, *result)
	}
	return results
}

// worker обрабатывает платежи из канала, запрашивая статусы через API шлюза.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan *domain.Payment,
	resultCh chan<- *workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- p.processWorkerTask(ctx, workerID, task)
		}
	}
}

// processWorkerTask делает запрос на API шлюза; в случае ответа 429 ждет
// паузу из заголовка и повторяет попытку.
func (p *Processor) processWorkerTask(ctx context.Context, workerID uint, task *domain.Payment) *workerResult {
	for {
		reqCtx, cancel := context.WithTimeout(ctx, defaultAPITimeout)
		resp, err := p.client.GetPaymentStatus(reqCtx, task.GatewayRef)
		cancel()

		if err != nil {
			result := workerResult{
				WorkerID: workerID,
				Payment:  task,
			}
			var tooManyReq *client.TooManyRequestError
			if errors.As(err, &tooManyReq) {
				// Проверяем отмену контекста перед спячкой
				select {
				case <-ctx.Done():
					result.Error = ctx.Err()
					return &result
				case <-time.After(tooManyReq.RetryAfter):
					continue
				}
			}
			result.Error = err
			return &result
		}

		return &workerResult{
			WorkerID: workerID,
			Payment:  task,
			Status:   resp.Status,
		}
	}
}

// produce получает список PENDING платежей для опроса.
// Возвращает ErrNoPayments, если платежи отсутствуют.
func (p *Processor) produce(ctx context.Context) ([]domain.Payment, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	payments, paymentsErr := p.svs.PendingPayments(produceCtx, p.limitPerIteration)
	if paymentsErr != nil {
		return nil, fmt.Errorf("produce: %w", paymentsErr)
	}

	if len(payments) == 0 {
		return nil, ErrNoPayments
	}
	return payments, nil
}
