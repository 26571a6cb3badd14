package model

// MessageRef is an opaque handle to a previously sent chat message,
// persisted alongside an entity so the moderation-group announcement can
// be edited after a decision.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 || r.MessageID == 0
}
