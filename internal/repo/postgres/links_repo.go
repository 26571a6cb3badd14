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
	"github.com/lib/pq"
)

var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrDuplicateLink  = errors.New("link already submitted")
	ErrCostAlreadySet = errors.New("link cost already set")
)

const pqUniqueViolation = "23505"

type LinksRepo struct {
	db *sql.DB
}

func NewLinksRepo(db *sql.DB) *LinksRepo {
	return &LinksRepo{db: db}
}

const linkColumns = `id, owner_id, register_date, link, link_type, status, moderator_id, view_count, cost, group_chat_id, group_message_id`

func scanLink(row interface{ Scan(...any) error }) (model.Link, error) {
	link := model.Link{}
	var linkType, status string
	err := row.Scan(
		&link.ID,
		&link.OwnerID,
		&link.RegisterDate,
		&link.URL,
		&linkType,
		&status,
		&link.ModeratorID,
		&link.ViewCount,
		&link.Cost,
		&link.GroupMsg.ChatID,
		&link.GroupMsg.MessageID,
	)
	if err != nil {
		return model.Link{}, err
	}
	link.Type = enums.Platform(linkType)
	link.Status = enums.LinkStatus(strings.TrimSpace(status))
	return link, nil
}

func (r *LinksRepo) Create(ctx context.Context, ownerID int64, url string, platform enums.Platform) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("links repo has no database")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO links (owner_id, link, link_type, status)
		VALUES ($1, $2, $3, 'created')
		RETURNING id
	`, ownerID, strings.TrimSpace(url), string(platform)).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return 0, ErrDuplicateLink
		}
		return 0, fmt.Errorf("create link: %w", err)
	}
	return id, nil
}

func (r *LinksRepo) GetByID(ctx context.Context, id int64) (model.Link, error) {
	if r.db == nil {
		return model.Link{}, ErrLinkNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1 LIMIT 1`, id)
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Link{}, ErrLinkNotFound
		}
		return model.Link{}, fmt.Errorf("get link by id: %w", err)
	}
	return link, nil
}

// MarkModerate records the moderation-group announcement and moves the
// freshly created link into the moderation queue.
func (r *LinksRepo) MarkModerate(ctx context.Context, id int64, ref model.MessageRef) error {
	if r.db == nil {
		return ErrLinkNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET status = 'moderate', group_chat_id = $2, group_message_id = $3
		WHERE id = $1 AND status = 'created'
	`, id, ref.ChatID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("mark link moderate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for mark moderate: %w", err)
	}
	if affected == 0 {
		return r.classifyMissing(ctx, id)
	}
	return nil
}

// ConfirmWithCost is the flat-cost confirmation path. In one transaction
// it flips the link to confirmed with the moderator-entered cost and
// credits the owner's balance. A link still in 'created' (the group
// announcement never went out) is accepted the same as 'moderate'. The
// status+cost guard makes a duplicate delivery a no-op, so the owner is
// never credited twice.
func (r *LinksRepo) ConfirmWithCost(ctx context.Context, id int64, moderatorID int64, cost int64) (ownerID int64, newBalance int64, err error) {
	if r.db == nil {
		return 0, 0, ErrLinkNotFound
	}
	if cost <= 0 {
		return 0, 0, fmt.Errorf("invalid link cost")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction for confirm link: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE links
		SET status = 'confirmed', moderator_id = $2, cost = $3
		WHERE id = $1 AND status IN ('created', 'moderate') AND cost = 0
		RETURNING owner_id
	`, id, moderatorID, cost).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, r.classifyNotPending(ctx, tx, id)
		}
		return 0, 0, fmt.Errorf("confirm link: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE users SET cash = cash + $2 WHERE id = $1 RETURNING cash
	`, ownerID, cost).Scan(&newBalance)
	if err != nil {
		return 0, 0, fmt.Errorf("credit owner on link confirm: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit confirm link: %w", err)
	}
	return ownerID, newBalance, nil
}

// SetViews is the view-based cost path. It refuses to run once either
// cost path has executed (cost or view_count already set) and otherwise
// lands in the same terminal state as ConfirmWithCost, crediting the
// owner in the same transaction.
func (r *LinksRepo) SetViews(ctx context.Context, id int64, moderatorID int64, viewCount int64, cost int64) (ownerID int64, newBalance int64, err error) {
	if r.db == nil {
		return 0, 0, ErrLinkNotFound
	}
	if viewCount <= 0 {
		return 0, 0, fmt.Errorf("invalid view count")
	}
	if cost < 0 {
		return 0, 0, fmt.Errorf("invalid link cost")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction for set views: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE links
		SET status = 'confirmed', moderator_id = $2, view_count = $3, cost = $4
		WHERE id = $1
		  AND status IN ('created', 'moderate')
		  AND cost = 0
		  AND view_count = 0
		RETURNING owner_id
	`, id, moderatorID, viewCount, cost).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, r.classifyNotPending(ctx, tx, id)
		}
		return 0, 0, fmt.Errorf("set link views: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE users SET cash = cash + $2 WHERE id = $1 RETURNING cash
	`, ownerID, cost).Scan(&newBalance)
	if err != nil {
		return 0, 0, fmt.Errorf("credit owner on set views: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit set views: %w", err)
	}
	return ownerID, newBalance, nil
}

func (r *LinksRepo) Reject(ctx context.Context, id int64, moderatorID int64) error {
	if r.db == nil {
		return ErrLinkNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET status = 'rejected', moderator_id = $2
		WHERE id = $1 AND status = 'moderate'
	`, id, moderatorID)
	if err != nil {
		return fmt.Errorf("reject link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for reject link: %w", err)
	}
	if affected == 0 {
		return r.classifyMissing(ctx, id)
	}
	return nil
}

// ListFilter narrows the link listings used by the moderation menus.
type ListFilter struct {
	OwnerID      int64
	Since        time.Time
	Before       time.Time
	UnpricedOnly bool
}

func (r *LinksRepo) List(ctx context.Context, filter ListFilter) ([]model.Link, error) {
	if r.db == nil {
		return []model.Link{}, nil
	}

	query := `SELECT ` + linkColumns + ` FROM links WHERE 1=1`
	args := make([]any, 0, 4)
	if filter.UnpricedOnly {
		query += ` AND cost = 0`
	}
	if filter.OwnerID != 0 {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		query += fmt.Sprintf(` AND register_date > $%d`, len(args))
	}
	if !filter.Before.IsZero() {
		args = append(args, filter.Before)
		query += fmt.Sprintf(` AND register_date < $%d`, len(args))
	}
	query += ` ORDER BY register_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return links, nil
}

// SumCostByOwner returns the all-time earned amount of a web-master.
func (r *LinksRepo) SumCostByOwner(ctx context.Context, ownerID int64) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cost), 0) FROM links WHERE owner_id = $1
	`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum link cost by owner: %w", err)
	}
	return total, nil
}

func (r *LinksRepo) classifyMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM links WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check link existence: %w", err)
	}
	if !exists {
		return ErrLinkNotFound
	}
	return ErrAlreadyDecided
}

func (r *LinksRepo) classifyNotPending(ctx context.Context, tx *sql.Tx, id int64) error {
	var cost int64
	err := tx.QueryRowContext(ctx, `SELECT cost FROM links WHERE id = $1`, id).Scan(&cost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("check link state: %w", err)
	}
	if cost != 0 {
		return ErrCostAlreadySet
	}
	return ErrAlreadyDecided
}
