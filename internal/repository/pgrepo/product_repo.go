package pgrepo

import (
	"context"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type ProductRepository struct {
	conn uow.DBTX
}

func NewProductRepository(conn uow.DBTX) *ProductRepository {
	return &ProductRepository{conn: conn}
}

// GetAll возвращает весь каталог, отсортированный по id.
func (p *ProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := p.conn.Query(ctx, `SELECT id, name, price FROM products ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if scanErr := rows.Scan(&product.ID, &product.Name, &product.Price); scanErr != nil {
			return nil, convertErr(scanErr, "scanning product")
		}
		products = append(products, product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "iterating products")
	}
	return products, nil
}

// FindByID возвращает domain.ErrRecordNotFound для неизвестного товара.
func (p *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	row := p.conn.QueryRow(ctx, `SELECT id, name, price FROM products WHERE id = $1`, id)
	if err := row.Scan(&product.ID, &product.Name, &product.Price); err != nil {
		return nil, convertErr(err, "finding product by id %d", id)
	}
	return &product, nil
}
