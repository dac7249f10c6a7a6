package pgrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/sunshop/internal/domain"
	"github.com/fsdevblog/sunshop/internal/repository/repoargs"
	"github.com/fsdevblog/sunshop/pkg/uow"
)

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = "id, created_at, updated_at, username, encrypted_password, balance"

// CreateUser создает юзера. В случае конфликта юзернейма возвращает ошибку
// domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `
		INSERT INTO users (username, encrypted_password)
		VALUES ($1, $2)
		RETURNING `+userColumns,
		user.Username, user.Password,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindUserByUsername ищет юзера по его юзернейму. Возвращает ошибку
// domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return dbUser, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return dbUser, nil
}

// AddToBalance атомарно увеличивает баланс юзера на amount и возвращает
// новое значение баланса.
func (u *UserRepository) AddToBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	row := u.conn.QueryRow(ctx, `
		UPDATE users SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING balance`,
		userID, amount,
	)
	if err := row.Scan(&balance); err != nil {
		return decimal.Zero, convertErr(err, "adding %s to balance of user %d", amount, userID)
	}
	return balance, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Password,
		&user.Balance,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
