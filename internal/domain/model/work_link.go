package model

import (
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
)

// WorkLinkRequest is a web-master's application for a tracking link.
type WorkLinkRequest struct {
	ID           int64
	OwnerID      int64
	RegisterDate time.Time
	Status       enums.DecisionStatus
	RejectText   string
	ModeratorID  int64
	GroupMsg     MessageRef
}

// WorkLink is a tracking link issued to a worker by a moderator on
// approval of a WorkLinkRequest. Terminal record, no further transitions.
type WorkLink struct {
	ID           int64
	WorkerID     int64
	URL          string
	ModeratorID  int64
	RegisterDate time.Time
}
