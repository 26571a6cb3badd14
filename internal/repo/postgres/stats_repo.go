package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// AggregateTotals sums confirmed link costs over the whole table and the
// two trailing windows in one round trip.
func (r *StatsRepo) AggregateTotals(ctx context.Context, monthStart, twoWeeksStart time.Time) (model.PayoutTotals, error) {
	if r.db == nil {
		return model.PayoutTotals{}, nil
	}

	totals := model.PayoutTotals{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(cost), 0),
			COALESCE(SUM(cost) FILTER (WHERE register_date >= $1), 0),
			COALESCE(SUM(cost) FILTER (WHERE register_date >= $2), 0),
			COUNT(DISTINCT owner_id),
			COUNT(*)
		FROM links
		WHERE status = 'confirmed'
	`, monthStart, twoWeeksStart).Scan(
		&totals.AllTime,
		&totals.LastMonth,
		&totals.LastTwo,
		&totals.UserCount,
		&totals.LinkCount,
	)
	if err != nil {
		return model.PayoutTotals{}, fmt.Errorf("aggregate payout totals: %w", err)
	}
	return totals, nil
}

func (r *StatsRepo) OwnerStats(ctx context.Context, userID int64) (model.OwnerStats, error) {
	if r.db == nil {
		return model.OwnerStats{}, ErrUserNotFound
	}

	stats := model.OwnerStats{}
	user := &stats.User
	err := r.db.QueryRowContext(ctx, `
		SELECT
			u.id, u.tg_id, COALESCE(u.username, ''), COALESCE(u.fio, ''),
			u.register_date, u.cash, u.cpm, u.is_active, COALESCE(u.trc20, ''),
			COALESCE(SUM(l.cost), 0),
			COUNT(l.id),
			COUNT(l.id) FILTER (WHERE l.status = 'confirmed'),
			COUNT(l.id) FILTER (WHERE l.status = 'rejected'),
			COUNT(l.id) FILTER (WHERE l.status IN ('created', 'moderate'))
		FROM users u
		LEFT JOIN links l ON l.owner_id = u.id
		WHERE u.id = $1
		GROUP BY u.id
	`, userID).Scan(
		&user.ID,
		&user.TgID,
		&user.Username,
		&user.FIO,
		&user.RegisterDate,
		&user.Cash,
		&user.CPM,
		&user.IsActive,
		&user.TRC20,
		&stats.TotalEarned,
		&stats.LinkCount,
		&stats.Confirmed,
		&stats.Rejected,
		&stats.Pending,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.OwnerStats{}, ErrUserNotFound
		}
		return model.OwnerStats{}, fmt.Errorf("owner stats: %w", err)
	}
	return stats, nil
}

// LinkExportRows returns every link with its owner, ordered by owner and
// submission date for the tabular report.
func (r *StatsRepo) LinkExportRows(ctx context.Context) ([]model.LinkExportRow, error) {
	if r.db == nil {
		return []model.LinkExportRow{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			u.id, u.tg_id, COALESCE(u.username, ''),
			l.id, l.link, l.link_type, l.status, l.register_date,
			l.view_count, l.cost
		FROM links l
		JOIN users u ON u.id = l.owner_id
		ORDER BY u.id ASC, l.register_date ASC, l.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query link export rows: %w", err)
	}
	defer rows.Close()

	exportRows := make([]model.LinkExportRow, 0)
	for rows.Next() {
		var row model.LinkExportRow
		if err := rows.Scan(
			&row.OwnerID,
			&row.OwnerTgID,
			&row.OwnerUsername,
			&row.LinkID,
			&row.URL,
			&row.Platform,
			&row.Status,
			&row.RegisterDate,
			&row.ViewCount,
			&row.Cost,
		); err != nil {
			return nil, fmt.Errorf("scan link export row: %w", err)
		}
		exportRows = append(exportRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link export rows: %w", err)
	}
	return exportRows, nil
}

func (r *StatsRepo) ExportRows(ctx context.Context) ([]model.ExportRow, error) {
	if r.db == nil {
		return []model.ExportRow{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			u.id, u.tg_id, COALESCE(u.username, ''), u.register_date,
			u.cash, u.cpm, u.is_active, COALESCE(u.trc20, ''),
			COALESCE(SUM(l.cost), 0),
			COUNT(l.id)
		FROM users u
		LEFT JOIN links l ON l.owner_id = u.id
		GROUP BY u.id
		ORDER BY u.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	exportRows := make([]model.ExportRow, 0)
	for rows.Next() {
		var row model.ExportRow
		if err := rows.Scan(
			&row.UserID,
			&row.TgID,
			&row.Username,
			&row.RegisterDate,
			&row.Cash,
			&row.CPM,
			&row.IsActive,
			&row.TRC20,
			&row.TotalEarned,
			&row.LinkCount,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		exportRows = append(exportRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}
	return exportRows, nil
}
