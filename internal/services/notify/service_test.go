package notify

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeChat struct {
	sent     []tgbotapi.MessageConfig
	edits    []model.MessageRef
	sendErr  error
	editErr  error
	nextRef  model.MessageRef
	editText string
}

func (c *fakeChat) Send(msg tgbotapi.Chattable) error {
	if config, ok := msg.(tgbotapi.MessageConfig); ok {
		c.sent = append(c.sent, config)
	}
	return c.sendErr
}

func (c *fakeChat) SendReturningRef(msg tgbotapi.MessageConfig) (model.MessageRef, error) {
	if c.sendErr != nil {
		return model.MessageRef{}, c.sendErr
	}
	c.sent = append(c.sent, msg)
	return c.nextRef, nil
}

func (c *fakeChat) EditText(ref model.MessageRef, text string) error {
	c.edits = append(c.edits, ref)
	c.editText = text
	return c.editErr
}

func newTestService(chat *fakeChat) *Service {
	return NewService(chat, -1001234, slog.Default())
}

func TestAnnouncePostsToGroup(t *testing.T) {
	chat := &fakeChat{nextRef: model.MessageRef{ChatID: -1001234, MessageID: 42}}
	service := newTestService(chat)

	keyboard := [][]telegram.InlineButton{{{Text: "ok", Data: "reg:approve:1"}}}
	ref, err := service.Announce("новая заявка", keyboard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.MessageID != 42 {
		t.Fatalf("expected message id 42, got %d", ref.MessageID)
	}
	if len(chat.sent) != 1 || chat.sent[0].ChatID != -1001234 {
		t.Fatalf("announcement not sent to the group: %+v", chat.sent)
	}
	if chat.sent[0].ReplyMarkup == nil {
		t.Fatalf("announcement keyboard missing")
	}
}

func TestFinalizeSwallowsEditFailure(t *testing.T) {
	chat := &fakeChat{editErr: errors.New("message is not modified")}
	service := newTestService(chat)

	service.Finalize(model.MessageRef{ChatID: -1001234, MessageID: 7}, "итог")
	if len(chat.edits) != 1 {
		t.Fatalf("expected one edit attempt, got %d", len(chat.edits))
	}
	if chat.editText != "итог" {
		t.Fatalf("unexpected edit text %q", chat.editText)
	}

	service.Finalize(model.MessageRef{}, "итог")
	if len(chat.edits) != 1 {
		t.Fatalf("zero ref must not be edited")
	}
}

func TestNotifyOwnerSwallowsSendFailure(t *testing.T) {
	chat := &fakeChat{sendErr: errors.New("bot was blocked by the user")}
	service := newTestService(chat)

	service.NotifyOwner(100, "готово")
	service.NotifyOwner(0, "без адресата")
	if len(chat.sent) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(chat.sent))
	}
}

func TestSendToGroupTargetsGroupChat(t *testing.T) {
	chat := &fakeChat{}
	service := newTestService(chat)

	service.SendToGroup("заявка обработана")
	if len(chat.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(chat.sent))
	}
	if chat.sent[0].ChatID != -1001234 {
		t.Fatalf("expected group chat id, got %d", chat.sent[0].ChatID)
	}
	if chat.sent[0].Text != "заявка обработана" {
		t.Fatalf("unexpected text %q", chat.sent[0].Text)
	}
}
