package pgrepo

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type PaymentRepository struct {
	conn uow.DBTX
}

func NewPaymentRepository(conn uow.DBTX) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

const paymentColumns = "id, created_at, updated_at, user_id, amount, status, gateway_ref, applied"

// Create вставляет платеж в статусе PENDING. Идемпотентности по паре
// (user, amount) нет - каждый вызов создает новую запись.
func (p *PaymentRepository) Create(ctx context.Context, args repoargs.PaymentCreate) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		INSERT INTO payments (user_id, amount, status, gateway_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING `+paymentColumns,
		args.UserID, args.Amount, domain.PaymentStatusPending, args.GatewayRef,
	)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "creating payment for user %d", args.UserID)
	}
	return payment, nil
}

func (p *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by id %d", id)
	}
	return payment, nil
}

// GetPending возвращает PENDING платежи (старые первыми) для опроса шлюза.
func (p *PaymentRepository) GetPending(ctx context.Context, limit uint) ([]domain.Payment, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2`,
		domain.PaymentStatusPending, int64(limit), //nolint:gosec
	)
	if err != nil {
		return nil, convertErr(err, "getting pending payments")
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning pending payment")
		}
		payments = append(payments, *payment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating pending payments")
	}
	return payments, nil
}

// GetUnapplied возвращает CONFIRMED платежи без зачисления на баланс (старые
// первыми). Такие платежи остаются после сбоя зачисления между переходом
// статуса и кредитованием баланса.
func (p *PaymentRepository) GetUnapplied(ctx context.Context, limit uint) ([]domain.Payment, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = $1 AND NOT applied
		ORDER BY created_at
		LIMIT $2`,
		domain.PaymentStatusConfirmed, int64(limit), //nolint:gosec
	)
	if err != nil {
		return nil, convertErr(err, "getting unapplied payments")
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, scanErr := scanPayment(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning unapplied payment")
		}
		payments = append(payments, *payment)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating unapplied payments")
	}
	return payments, nil
}

// UpdateStatusFromPending переводит платеж из PENDING в конечный статус в
// стиле compare-and-set. Возвращает (true, платеж) если переход произошел,
// и (false, nil) если PENDING-строки уже нет - вызывающий сам разбирается,
// дубликат это или нарушение целостности.
func (p *PaymentRepository) UpdateStatusFromPending(
	ctx context.Context,
	args repoargs.PaymentStatusUpdate,
) (bool, *domain.Payment, error) {
	row := p.conn.QueryRow(ctx, `
		UPDATE payments SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+paymentColumns,
		args.PaymentID, args.Status, domain.PaymentStatusPending,
	)
	payment, err := scanPayment(row)
	if err != nil {
		convErr := convertErr(err, "updating status of payment %d", args.PaymentID)
		if isNotFound(convErr) {
			return false, nil, nil
		}
		return false, nil, convErr
	}
	return true, payment, nil
}

// MarkApplied помечает CONFIRMED платеж как зачисленный. Условие
// `NOT applied` гарантирует, что из любого числа конкурентных вызовов
// ровно один получит строку назад - check-and-mark в один атомарный шаг.
// Возвращает (false, nil) если пометка не произошла.
func (p *PaymentRepository) MarkApplied(ctx context.Context, paymentID int64) (bool, *repoargs.PaymentApplied, error) {
	var applied repoargs.PaymentApplied
	row := p.conn.QueryRow(ctx, `
		UPDATE payments SET applied = true, updated_at = now()
		WHERE id = $1 AND status = $2 AND NOT applied
		RETURNING user_id, amount`,
		paymentID, domain.PaymentStatusConfirmed,
	)
	if err := row.Scan(&applied.UserID, &applied.Amount); err != nil {
		convErr := convertErr(err, "marking payment %d applied", paymentID)
		if isNotFound(convErr) {
			return false, nil, nil
		}
		return false, nil, convErr
	}
	return true, &applied, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
		&payment.UserID,
		&payment.Amount,
		&payment.Status,
		&payment.GatewayRef,
		&payment.Applied,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &payment, nil
}
