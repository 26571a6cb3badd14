package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

var ErrWorkLinkRequestNotFound = errors.New("work link request not found")

type WorkLinksRepo struct {
	db *sql.DB
}

func NewWorkLinksRepo(db *sql.DB) *WorkLinksRepo {
	return &WorkLinksRepo{db: db}
}

const workRequestColumns = `id, owner_id, register_date, status, moderator_id, reject_text, group_chat_id, group_message_id`

func scanWorkRequest(row interface{ Scan(...any) error }) (model.WorkLinkRequest, error) {
	req := model.WorkLinkRequest{}
	var status int
	err := row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.RegisterDate,
		&status,
		&req.ModeratorID,
		&req.RejectText,
		&req.GroupMsg.ChatID,
		&req.GroupMsg.MessageID,
	)
	if err != nil {
		return model.WorkLinkRequest{}, err
	}
	req.Status = enums.DecisionStatus(status)
	return req, nil
}

func (r *WorkLinksRepo) CreateRequest(ctx context.Context, ownerID int64) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("work links repo has no database")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO work_link_requests (owner_id, status)
		VALUES ($1, 0)
		RETURNING id
	`, ownerID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create work link request: %w", err)
	}
	return id, nil
}

func (r *WorkLinksRepo) GetRequest(ctx context.Context, id int64) (model.WorkLinkRequest, error) {
	if r.db == nil {
		return model.WorkLinkRequest{}, ErrWorkLinkRequestNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+workRequestColumns+` FROM work_link_requests WHERE id = $1 LIMIT 1`, id)
	req, err := scanWorkRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WorkLinkRequest{}, ErrWorkLinkRequestNotFound
		}
		return model.WorkLinkRequest{}, fmt.Errorf("get work link request: %w", err)
	}
	return req, nil
}

func (r *WorkLinksRepo) SetRequestMessageRef(ctx context.Context, id int64, ref model.MessageRef) error {
	if r.db == nil {
		return ErrWorkLinkRequestNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE work_link_requests
		SET group_chat_id = $2, group_message_id = $3
		WHERE id = $1
	`, id, ref.ChatID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("set work link request message ref: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for work link request message ref: %w", err)
	}
	if affected == 0 {
		return ErrWorkLinkRequestNotFound
	}
	return nil
}

// ApproveRequest flips the pending request to approved and issues the
// personal work link inside one transaction.
func (r *WorkLinksRepo) ApproveRequest(ctx context.Context, id int64, moderatorID int64, url string) (ownerID int64, err error) {
	if r.db == nil {
		return 0, ErrWorkLinkRequestNotFound
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, fmt.Errorf("empty work link url")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction for approve work link request: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE work_link_requests
		SET status = 1, moderator_id = $2
		WHERE id = $1 AND status = 0
		RETURNING owner_id
	`, id, moderatorID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, classifyWorkRequest(ctx, tx, id)
		}
		return 0, fmt.Errorf("approve work link request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO work_links (worker_id, link, moderator_id) VALUES ($1, $2, $3)
	`, ownerID, url, moderatorID)
	if err != nil {
		return 0, fmt.Errorf("insert work link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit approve work link request: %w", err)
	}
	return ownerID, nil
}

func (r *WorkLinksRepo) RejectRequest(ctx context.Context, id int64, moderatorID int64, reason string) (ownerID int64, err error) {
	if r.db == nil {
		return 0, ErrWorkLinkRequestNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction for reject work link request: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE work_link_requests
		SET status = -1, moderator_id = $2, reject_text = $3
		WHERE id = $1 AND status = 0
		RETURNING owner_id
	`, id, moderatorID, strings.TrimSpace(reason)).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, classifyWorkRequest(ctx, tx, id)
		}
		return 0, fmt.Errorf("reject work link request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reject work link request: %w", err)
	}
	return ownerID, nil
}

func (r *WorkLinksRepo) ListByWorker(ctx context.Context, workerID int64) ([]model.WorkLink, error) {
	if r.db == nil {
		return []model.WorkLink{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, worker_id, link, moderator_id, register_date
		FROM work_links
		WHERE worker_id = $1
		ORDER BY id ASC
	`, workerID)
	if err != nil {
		return nil, fmt.Errorf("list work links: %w", err)
	}
	defer rows.Close()

	links := make([]model.WorkLink, 0)
	for rows.Next() {
		var link model.WorkLink
		var registered time.Time
		if err := rows.Scan(&link.ID, &link.WorkerID, &link.URL, &link.ModeratorID, &registered); err != nil {
			return nil, fmt.Errorf("scan work link: %w", err)
		}
		link.RegisterDate = registered
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work links: %w", err)
	}
	return links, nil
}

func classifyWorkRequest(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM work_link_requests WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check work link request existence: %w", err)
	}
	if !exists {
		return ErrWorkLinkRequestNotFound
	}
	return ErrAlreadyDecided
}
