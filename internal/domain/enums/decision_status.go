package enums

// DecisionStatus is the shared status column of registration requests,
// work-link requests and cash-out requests: 0 while pending, 1 once
// approved, -1 once rejected.
type DecisionStatus int

const (
	DecisionPending  DecisionStatus = 0
	DecisionApproved DecisionStatus = 1
	DecisionRejected DecisionStatus = -1
)

func (s DecisionStatus) IsTerminal() bool {
	return s != DecisionPending
}
