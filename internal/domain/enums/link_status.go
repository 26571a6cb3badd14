package enums

// LinkStatus is the lifecycle of a submitted content link. A link is
// created first, becomes "moderate" once it is surfaced to the moderation
// group, and ends in exactly one of the two terminal states.
type LinkStatus string

const (
	LinkStatusCreated   LinkStatus = "created"
	LinkStatusModerate  LinkStatus = "moderate"
	LinkStatusConfirmed LinkStatus = "confirmed"
	LinkStatusRejected  LinkStatus = "rejected"
)

func (s LinkStatus) IsTerminal() bool {
	return s == LinkStatusConfirmed || s == LinkStatusRejected
}
