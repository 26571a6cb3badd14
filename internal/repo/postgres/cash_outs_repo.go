package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

var (
	ErrCashOutNotFound = errors.New("cash out not found")
	ErrEmptyBalance    = errors.New("balance is empty")
)

type CashOutsRepo struct {
	db *sql.DB
}

func NewCashOutsRepo(db *sql.DB) *CashOutsRepo {
	return &CashOutsRepo{db: db}
}

const cashOutColumns = `id, user_id, trc20, cost, status, moderator_id, reject_text, register_date, group_chat_id, group_message_id`

func scanCashOut(row interface{ Scan(...any) error }) (model.CashOut, error) {
	cashOut := model.CashOut{}
	var status int
	err := row.Scan(
		&cashOut.ID,
		&cashOut.UserID,
		&cashOut.TRC20,
		&cashOut.Cost,
		&status,
		&cashOut.ModeratorID,
		&cashOut.RejectText,
		&cashOut.RegisterDate,
		&cashOut.GroupMsg.ChatID,
		&cashOut.GroupMsg.MessageID,
	)
	if err != nil {
		return model.CashOut{}, err
	}
	cashOut.Status = enums.DecisionStatus(status)
	return cashOut, nil
}

// CreateSnapshot deducts the full balance at submission time. In one
// transaction it locks the user row, snapshots cash into the payout
// amount, zeroes the balance and remembers the wallet on the user.
// A reject after this point never refunds.
func (r *CashOutsRepo) CreateSnapshot(ctx context.Context, userID int64, trc20 string) (id int64, amount int64, err error) {
	if r.db == nil {
		return 0, 0, fmt.Errorf("cash outs repo has no database")
	}
	trc20 = strings.TrimSpace(trc20)
	if trc20 == "" {
		return 0, 0, fmt.Errorf("empty trc20 wallet")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction for cash out: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		SELECT cash FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("lock user balance: %w", err)
	}
	if amount <= 0 {
		return 0, 0, ErrEmptyBalance
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO cash_outs (user_id, trc20, cost, status)
		VALUES ($1, $2, $3, 0)
		RETURNING id
	`, userID, trc20, amount).Scan(&id)
	if err != nil {
		return 0, 0, fmt.Errorf("insert cash out: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET cash = 0, trc20 = $2 WHERE id = $1
	`, userID, trc20)
	if err != nil {
		return 0, 0, fmt.Errorf("zero balance on cash out: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit cash out: %w", err)
	}
	return id, amount, nil
}

func (r *CashOutsRepo) GetByID(ctx context.Context, id int64) (model.CashOut, error) {
	if r.db == nil {
		return model.CashOut{}, ErrCashOutNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+cashOutColumns+` FROM cash_outs WHERE id = $1 LIMIT 1`, id)
	cashOut, err := scanCashOut(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CashOut{}, ErrCashOutNotFound
		}
		return model.CashOut{}, fmt.Errorf("get cash out by id: %w", err)
	}
	return cashOut, nil
}

func (r *CashOutsRepo) SetMessageRef(ctx context.Context, id int64, ref model.MessageRef) error {
	if r.db == nil {
		return ErrCashOutNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE cash_outs
		SET group_chat_id = $2, group_message_id = $3
		WHERE id = $1
	`, id, ref.ChatID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("set cash out message ref: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for cash out message ref: %w", err)
	}
	if affected == 0 {
		return ErrCashOutNotFound
	}
	return nil
}

// Approve marks the payout as sent. The money already left the balance
// at submission, so only the status flips here.
func (r *CashOutsRepo) Approve(ctx context.Context, id int64, moderatorID int64) (userID int64, err error) {
	return r.decide(ctx, id, `
		UPDATE cash_outs
		SET status = 1, moderator_id = $2
		WHERE id = $1 AND status = 0
		RETURNING user_id
	`, moderatorID)
}

// Reject closes the payout without refunding the snapshot amount.
func (r *CashOutsRepo) Reject(ctx context.Context, id int64, moderatorID int64, reason string) (userID int64, err error) {
	return r.decide(ctx, id, `
		UPDATE cash_outs
		SET status = -1, moderator_id = $2, reject_text = $3
		WHERE id = $1 AND status = 0
		RETURNING user_id
	`, moderatorID, strings.TrimSpace(reason))
}

func (r *CashOutsRepo) decide(ctx context.Context, id int64, query string, args ...any) (int64, error) {
	if r.db == nil {
		return 0, ErrCashOutNotFound
	}

	var userID int64
	err := r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.classifyMissing(ctx, id)
		}
		return 0, fmt.Errorf("decide cash out: %w", err)
	}
	return userID, nil
}

func (r *CashOutsRepo) classifyMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM cash_outs WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check cash out existence: %w", err)
	}
	if !exists {
		return ErrCashOutNotFound
	}
	return ErrAlreadyDecided
}
