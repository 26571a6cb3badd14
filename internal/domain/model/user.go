package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User is a web-master (content creator) known to the bot. Cash is the
// current payable balance in integer currency units; CPM is the payout
// rate per 1000 views assigned when the registration request is approved.
type User struct {
	ID           int64
	TgID         int64
	Username     string
	FIO          string
	RegisterDate time.Time
	Cash         int64
	CPM          decimal.Decimal
	IsActive     bool
	TRC20        string
}

// Label renders the @username or, when the user has none, the tg id.
func (u User) Label() string {
	name := strings.TrimSpace(u.Username)
	if name != "" {
		return "@" + name
	}
	return strconv.FormatInt(u.TgID, 10)
}
