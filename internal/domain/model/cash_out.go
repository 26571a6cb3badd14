package model

import (
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
)

// CashOut is a payout request. Cost and TRC20 are snapshots taken at
// submission: the requested amount is deducted from the owner's balance
// in the same transaction that creates the row, so approval and rejection
// never touch the ledger again.
type CashOut struct {
	ID           int64
	UserID       int64
	TRC20        string
	Cost         int64
	Status       enums.DecisionStatus
	ModeratorID  int64
	RejectText   string
	RegisterDate time.Time
	GroupMsg     MessageRef
}
