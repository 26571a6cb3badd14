package notify

import (
	"log/slog"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Chat interface {
	Send(tgbotapi.Chattable) error
	SendReturningRef(tgbotapi.MessageConfig) (model.MessageRef, error)
	EditText(model.MessageRef, string) error
}

// Service owns the two delivery surfaces of a workflow event: the
// moderation group announcement and the private owner notification.
// Owner notifications are best effort, a blocked chat never rolls back
// a committed decision.
type Service struct {
	chat    Chat
	groupID int64
	logger  *slog.Logger
}

func NewService(chat Chat, groupID int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{chat: chat, groupID: groupID, logger: logger}
}

// Announce posts the pending entity to the moderation group with its
// decision keyboard and returns the message handle for later edits.
func (s *Service) Announce(text string, keyboard [][]telegram.InlineButton) (model.MessageRef, error) {
	if s.chat == nil {
		return model.MessageRef{}, nil
	}

	msg := tgbotapi.NewMessage(s.groupID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = telegram.BuildInlineKeyboard(keyboard)
	}
	ref, err := s.chat.SendReturningRef(msg)
	if err != nil {
		s.logger.Warn("group announcement failed", "error", err)
		return model.MessageRef{}, err
	}
	return ref, nil
}

// Finalize rewrites the group announcement with the outcome note. The
// edit drops the decision keyboard. A failed edit is logged and
// swallowed, the decision is already stored.
func (s *Service) Finalize(ref model.MessageRef, text string) {
	if s.chat == nil || ref.IsZero() {
		return
	}
	if err := s.chat.EditText(ref, text); err != nil {
		s.logger.Warn("announcement edit failed",
			"chat_id", ref.ChatID, "message_id", ref.MessageID, "error", err)
	}
}

// NotifyOwner sends a private message to the web-master. Delivery
// failures are logged and swallowed.
func (s *Service) NotifyOwner(tgID int64, text string) {
	if s.chat == nil || tgID == 0 {
		return
	}
	if err := s.chat.Send(tgbotapi.NewMessage(tgID, text)); err != nil {
		s.logger.Warn("owner notification failed", "tg_id", tgID, "error", err)
	}
}

// SendToGroup posts a plain message to the moderation group.
func (s *Service) SendToGroup(text string) {
	if s.chat == nil {
		return
	}
	if err := s.chat.Send(tgbotapi.NewMessage(s.groupID, text)); err != nil {
		s.logger.Warn("group message failed", "error", err)
	}
}
