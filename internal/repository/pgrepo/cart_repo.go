package pgrepo

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type CartRepository struct {
	conn uow.DBTX
}

func NewCartRepository(conn uow.DBTX) *CartRepository {
	return &CartRepository{conn: conn}
}

// Upsert добавляет позицию в корзину. Пара (user_id, product_id) уникальна,
// повторное добавление атомарно наращивает количество - гонка двух
// одновременных добавлений не может породить ни вторую строку, ни потерянный
// инкремент.
func (c *CartRepository) Upsert(ctx context.Context, args repoargs.CartUpsert) (*domain.CartEntry, error) {
	row := c.conn.QueryRow(ctx, `
		INSERT INTO cart_entries (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_entries.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, created_at, updated_at, user_id, product_id, quantity`,
		args.UserID, args.ProductID, args.Quantity,
	)

	var entry domain.CartEntry
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.UserID,
		&entry.ProductID,
		&entry.Quantity,
	)
	if err != nil {
		return nil, convertErr(err, "upserting cart entry for user %d product %d", args.UserID, args.ProductID)
	}
	return &entry, nil
}

// GetByUserID возвращает корзину юзера вместе с актуальными данными каталога.
// Порядок по product_id - для воспроизводимого порядка строк чекаута.
func (c *CartRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT ce.id, ce.created_at, ce.updated_at, ce.user_id, ce.product_id, ce.quantity,
		       p.name, p.price
		FROM cart_entries ce
		JOIN products p ON p.id = ce.product_id
		WHERE ce.user_id = $1
		ORDER BY ce.product_id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting cart for user %d", userID)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		scanErr := rows.Scan(
			&item.Entry.ID,
			&item.Entry.CreatedAt,
			&item.Entry.UpdatedAt,
			&item.Entry.UserID,
			&item.Entry.ProductID,
			&item.Entry.Quantity,
			&item.Name,
			&item.Price,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning cart item")
		}
		items = append(items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating cart for user %d", userID)
	}
	return items, nil
}

// Clear удаляет все позиции корзины юзера.
func (c *CartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := c.conn.Exec(ctx, `DELETE FROM cart_entries WHERE user_id = $1`, userID); err != nil {
		return convertErr(err, "clearing cart for user %d", userID)
	}
	return nil
}
