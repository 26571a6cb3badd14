package model

import (
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
)

// Link is a submitted content link. Cost is set exactly once, either as a
// flat amount entered by the moderator at confirmation or computed from
// view_count and the owner's CPM when views are tallied later.
type Link struct {
	ID           int64
	OwnerID      int64
	RegisterDate time.Time
	URL          string
	Type         enums.Platform
	Status       enums.LinkStatus
	ModeratorID  int64
	ViewCount    int64
	Cost         int64
	GroupMsg     MessageRef
}
