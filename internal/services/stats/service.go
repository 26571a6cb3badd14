package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

type Repo interface {
	AggregateTotals(context.Context, time.Time, time.Time) (model.PayoutTotals, error)
	OwnerStats(context.Context, int64) (model.OwnerStats, error)
	ExportRows(context.Context) ([]model.ExportRow, error)
	LinkExportRows(context.Context) ([]model.LinkExportRow, error)
}

type Service struct {
	repo  Repo
	nowFn func() time.Time
}

func NewService(repo Repo) *Service {
	return newService(repo, time.Now)
}

func newService(repo Repo, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{repo: repo, nowFn: nowFn}
}

// BuildTotals aggregates confirmed payouts over all time and the
// trailing 30 and 14 day windows.
func (s *Service) BuildTotals(ctx context.Context) (model.PayoutTotals, error) {
	if s.repo == nil {
		return model.PayoutTotals{}, fmt.Errorf("stats repo is not configured")
	}

	now := s.nowFn().UTC()
	totals, err := s.repo.AggregateTotals(ctx, now.AddDate(0, 0, -30), now.AddDate(0, 0, -14))
	if err != nil {
		return model.PayoutTotals{}, err
	}
	totals.ComputedAt = now
	return totals, nil
}

func (s *Service) OwnerStats(ctx context.Context, userID int64) (model.OwnerStats, error) {
	if s.repo == nil {
		return model.OwnerStats{}, fmt.Errorf("stats repo is not configured")
	}
	if userID <= 0 {
		return model.OwnerStats{}, fmt.Errorf("invalid user id")
	}
	return s.repo.OwnerStats(ctx, userID)
}

var exportHeader = []string{
	"id", "tg_id", "username", "register_date",
	"balance", "cpm", "active", "trc20", "total_earned", "links",
}

// ExportCSV renders the full users table with per-user link totals as a
// CSV document ready to send as a file.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("stats repo is not configured")
	}

	rows, err := s.repo.ExportRows(ctx)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.UserID, 10),
			strconv.FormatInt(row.TgID, 10),
			row.Username,
			row.RegisterDate.UTC().Format(time.RFC3339),
			strconv.FormatInt(row.Cash, 10),
			row.CPM.String(),
			strconv.FormatBool(row.IsActive),
			row.TRC20,
			strconv.FormatInt(row.TotalEarned, 10),
			strconv.FormatInt(row.LinkCount, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), nil
}

var linkExportHeader = []string{
	"owner_id", "owner_tg_id", "owner_username",
	"link_id", "link", "platform", "status",
	"register_date", "view_count", "cost",
}

// ExportLinksCSV renders every link with its owner, ordered by owner and
// submission date.
func (s *Service) ExportLinksCSV(ctx context.Context) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("stats repo is not configured")
	}

	rows, err := s.repo.LinkExportRows(ctx)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(linkExportHeader); err != nil {
		return nil, fmt.Errorf("write link export header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.OwnerID, 10),
			strconv.FormatInt(row.OwnerTgID, 10),
			row.OwnerUsername,
			strconv.FormatInt(row.LinkID, 10),
			row.URL,
			row.Platform,
			row.Status,
			row.RegisterDate.UTC().Format(time.RFC3339),
			strconv.FormatInt(row.ViewCount, 10),
			strconv.FormatInt(row.Cost, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write link export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush link export: %w", err)
	}
	return buf.Bytes(), nil
}
