package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	"github.com/shopspring/decimal"
)

var ErrRequestNotFound = errors.New("registration request not found")

// ErrAlreadyDecided is returned by every entity repo when a transition is
// attempted on an entity that has already reached a terminal status.
var ErrAlreadyDecided = errors.New("entity already decided")

type RequestsRepo struct {
	db *sql.DB
}

func NewRequestsRepo(db *sql.DB) *RequestsRepo {
	return &RequestsRepo{db: db}
}

func (r *RequestsRepo) Create(ctx context.Context, ownerID int64, text, source string) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("requests repo has no database")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO requests (user_id, text, source)
		VALUES ($1, $2, $3)
		RETURNING id
	`, ownerID, text, strings.TrimSpace(source)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create registration request: %w", err)
	}
	return id, nil
}

// HasPendingByOwner reports whether the owner already has an undecided
// registration request.
func (r *RequestsRepo) HasPendingByOwner(ctx context.Context, ownerID int64) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM requests WHERE user_id = $1 AND status = 0)
	`, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending request: %w", err)
	}
	return exists, nil
}

func (r *RequestsRepo) GetByID(ctx context.Context, id int64) (model.Request, error) {
	if r.db == nil {
		return model.Request{}, ErrRequestNotFound
	}

	request := model.Request{}
	var status int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, register_date, COALESCE(text, ''), COALESCE(source, ''), status,
		       moderator_id, COALESCE(reject_text, ''), cpm, group_chat_id, group_message_id
		FROM requests
		WHERE id = $1
		LIMIT 1
	`, id).Scan(
		&request.ID,
		&request.OwnerID,
		&request.RegisterDate,
		&request.Text,
		&request.Source,
		&status,
		&request.ModeratorID,
		&request.RejectText,
		&request.CPM,
		&request.GroupMsg.ChatID,
		&request.GroupMsg.MessageID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Request{}, ErrRequestNotFound
		}
		return model.Request{}, fmt.Errorf("get registration request: %w", err)
	}

	request.Status = enums.DecisionStatus(status)
	return request, nil
}

func (r *RequestsRepo) SetMessageRef(ctx context.Context, id int64, ref model.MessageRef) error {
	if r.db == nil {
		return ErrRequestNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE requests SET group_chat_id = $2, group_message_id = $3 WHERE id = $1
	`, id, ref.ChatID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("set request message ref: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for request message ref: %w", err)
	}
	if affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Approve flips a pending request to approved and, in the same
// transaction, activates the owner and assigns the CPM rate. A repeated
// call is refused by the status guard, so the owner settings are applied
// exactly once.
func (r *RequestsRepo) Approve(ctx context.Context, id int64, moderatorID int64, cpm decimal.Decimal) (ownerID int64, err error) {
	if r.db == nil {
		return 0, ErrRequestNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction for approve request: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE requests
		SET status = 1, moderator_id = $2, cpm = $3
		WHERE id = $1 AND status = 0
		RETURNING user_id
	`, id, moderatorID, cpm).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.classifyMissing(ctx, tx, id)
		}
		return 0, fmt.Errorf("approve registration request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET is_active = TRUE, cpm = $2 WHERE id = $1
	`, ownerID, cpm)
	if err != nil {
		return 0, fmt.Errorf("activate owner on request approve: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit approve request: %w", err)
	}
	return ownerID, nil
}

func (r *RequestsRepo) Reject(ctx context.Context, id int64, moderatorID int64, reason string) (ownerID int64, err error) {
	if r.db == nil {
		return 0, ErrRequestNotFound
	}

	err = r.db.QueryRowContext(ctx, `
		UPDATE requests
		SET status = -1, moderator_id = $2, reject_text = $3
		WHERE id = $1 AND status = 0
		RETURNING user_id
	`, id, moderatorID, strings.TrimSpace(reason)).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if existsErr := r.db.QueryRowContext(ctx, `
				SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)
			`, id).Scan(&exists); existsErr != nil {
				return 0, fmt.Errorf("check request existence: %w", existsErr)
			}
			if !exists {
				return 0, ErrRequestNotFound
			}
			return 0, ErrAlreadyDecided
		}
		return 0, fmt.Errorf("reject registration request: %w", err)
	}
	return ownerID, nil
}

func (r *RequestsRepo) classifyMissing(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check request existence: %w", err)
	}
	if !exists {
		return ErrRequestNotFound
	}
	return ErrAlreadyDecided
}
