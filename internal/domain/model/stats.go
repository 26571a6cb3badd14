package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutTotals aggregates confirmed link costs over fixed trailing
// windows.
type PayoutTotals struct {
	AllTime    int64
	LastMonth  int64
	LastTwo    int64
	UserCount  int64
	LinkCount  int64
	ComputedAt time.Time
}

// OwnerStats is the moderator view of one web-master.
type OwnerStats struct {
	User        User
	TotalEarned int64
	LinkCount   int64
	Confirmed   int64
	Rejected    int64
	Pending     int64
}

// LinkExportRow is one line of the links export, grouped by owner and
// submission date.
type LinkExportRow struct {
	OwnerID       int64
	OwnerTgID     int64
	OwnerUsername string
	LinkID        int64
	URL           string
	Platform      string
	Status        string
	RegisterDate  time.Time
	ViewCount     int64
	Cost          int64
}

// ExportRow is one line of the users export.
type ExportRow struct {
	UserID       int64
	TgID         int64
	Username     string
	RegisterDate time.Time
	Cash         int64
	CPM          decimal.Decimal
	IsActive     bool
	TRC20        string
	TotalEarned  int64
	LinkCount    int64
}
