package model

import (
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/shopspring/decimal"
)

// Request is a channel registration application built from the survey
// answers. CPM is assigned by the moderator on approval and copied to the
// owner.
type Request struct {
	ID           int64
	OwnerID      int64
	RegisterDate time.Time
	Text         string
	Source       string
	Status       enums.DecisionStatus
	ModeratorID  int64
	RejectText   string
	CPM          decimal.Decimal
	GroupMsg     MessageRef
}
