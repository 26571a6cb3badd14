package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	"github.com/shopspring/decimal"
)

var ErrUserNotFound = errors.New("user not found")

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, tg_id, COALESCE(username, ''), COALESCE(fio, ''), register_date, cash, cpm, is_active, COALESCE(trc20, '')`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	user := model.User{}
	err := row.Scan(
		&user.ID,
		&user.TgID,
		&user.Username,
		&user.FIO,
		&user.RegisterDate,
		&user.Cash,
		&user.CPM,
		&user.IsActive,
		&user.TRC20,
	)
	return user, err
}

// GetOrCreate returns the user with the given tg id, creating the row on
// first contact. The username is refreshed on every call.
func (r *UsersRepo) GetOrCreate(ctx context.Context, tgID int64, username string) (model.User, error) {
	if r.db == nil {
		return model.User{}, ErrUserNotFound
	}
	if tgID == 0 {
		return model.User{}, fmt.Errorf("invalid tg id")
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (tg_id, username, register_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (tg_id) DO UPDATE SET username = EXCLUDED.username
		RETURNING `+userColumns+`
	`, tgID, strings.TrimSpace(username), time.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	if r.db == nil {
		return model.User{}, ErrUserNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UsersRepo) GetByTGID(ctx context.Context, tgID int64) (model.User, error) {
	if r.db == nil {
		return model.User{}, ErrUserNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1 LIMIT 1`, tgID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by tg id: %w", err)
	}
	return user, nil
}

// ListActive returns active web-masters ordered by id for the paginated
// moderation menu.
func (r *UsersRepo) ListActive(ctx context.Context) ([]model.User, error) {
	if r.db == nil {
		return []model.User{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active users: %w", err)
	}
	return users, nil
}

func (r *UsersRepo) UpdateCPM(ctx context.Context, userID int64, cpm decimal.Decimal) error {
	if r.db == nil {
		return ErrUserNotFound
	}

	result, err := r.db.ExecContext(ctx, `UPDATE users SET cpm = $2 WHERE id = $1`, userID, cpm)
	if err != nil {
		return fmt.Errorf("update user cpm: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for update cpm: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UsersRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	if r.db == nil {
		return ErrUserNotFound
	}

	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, userID, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for set active: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
