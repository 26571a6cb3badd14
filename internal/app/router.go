package app

import (
	"context"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	"github.com/Maniackaa/Bot-seller-link-2/internal/ui"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type inputKind int

const (
	inputRegistrationCPM inputKind = iota + 1
	inputRegistrationReason
	inputLinkCost
	inputLinkViews
	inputWorkURL
	inputWorkReason
	inputCashReason
	inputUserCPM
	inputLinkURL
	inputWallet
)

// inputState marks a chat as waiting for one text message. EntityID is
// the request, link or user the input applies to. Only the actor who
// opened the input may complete it.
type inputState struct {
	ActorTGID int64
	Kind      inputKind
	EntityID  int64
}

// surveyState is an in-progress registration questionnaire. The current
// step is the number of collected answers.
type surveyState struct {
	ActorTGID int64
	Source    string
	Answers   []string
}

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		a.routeMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		a.handleCallback(ctx, update.CallbackQuery)
	}
}

func (a *App) routeMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	if message.Chat.ID == a.cfg.GroupID {
		a.routeGroupMessage(ctx, message)
		return
	}
	if message.Chat.IsPrivate() {
		a.routePrivateMessage(ctx, message)
	}
}

func (a *App) routeGroupMessage(ctx context.Context, message *tgbotapi.Message) {
	if a.handleModeratorInputIfNeeded(ctx, message) {
		return
	}

	if message.IsCommand() {
		a.sendMenu(message.Chat.ID, "Меню модератора", ui.GroupMenu())
		return
	}

	switch strings.TrimSpace(message.Text) {
	case ui.ButtonWebMasters:
		a.sendWebMastersPage(ctx, message.Chat.ID, 1)
	case ui.ButtonPayoutStats:
		a.handlePayoutStats(ctx, message.Chat.ID)
	case ui.ButtonExport:
		a.handleExport(ctx, message.Chat.ID)
	}
}

func (a *App) routePrivateMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			a.handleStart(ctx, message)
		default:
			a.sendText(message.Chat.ID, "Неизвестная команда. Используйте /start")
		}
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == ui.ButtonCancel {
		a.deleteInputState(message.Chat.ID)
		a.deleteSurveyState(message.Chat.ID)
		a.sendMenu(message.Chat.ID, "Действие отменено.", ui.MainMenu())
		return
	}

	if a.handleUserInputIfNeeded(ctx, message) {
		return
	}
	if a.handleSurveyAnswerIfNeeded(ctx, message) {
		return
	}

	switch text {
	case ui.ButtonSubmitLink:
		a.handleSubmitLinkEntry(ctx, message)
	case ui.ButtonAccount:
		a.handleAccount(ctx, message)
	case ui.ButtonCashOut:
		a.handleCashOutEntry(ctx, message)
	case ui.ButtonWorkLink:
		a.handleWorkLinkRequest(ctx, message)
	}
}

func (a *App) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query == nil || query.From == nil || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	ackText := ""
	ackAlert := false
	defer func() {
		a.answerCallback(query.ID, ackText, ackAlert)
	}()

	cmd, err := ParseCommand(query.Data)
	if err != nil {
		a.logger.Warn("malformed callback", "data", query.Data, "tg_id", query.From.ID)
		return
	}

	switch cmd.Kind {
	case kindRegistration:
		ackText, ackAlert = a.handleRegistrationCallback(ctx, chatID, query.From.ID, cmd)
	case kindLink:
		ackText, ackAlert = a.handleLinkCallback(ctx, chatID, query.From.ID, cmd)
	case kindWork:
		ackText, ackAlert = a.handleWorkCallback(ctx, chatID, query.From.ID, cmd)
	case kindCashOut:
		ackText, ackAlert = a.handleCashOutCallback(ctx, chatID, query.From.ID, cmd)
	case kindWebMasters:
		ackText, ackAlert = a.handleWebMastersCallback(ctx, chatID, query.From.ID, cmd)
	case kindLinkListing:
		ackText, ackAlert = a.handleLinkListingCallback(ctx, chatID, cmd)
	}
}

// Send helpers.

func (a *App) sendText(chatID int64, text string) {
	if err := a.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		a.logger.Warn("send message", "error", err, "chat_id", chatID)
	}
}

func (a *App) sendMenu(chatID int64, text string, menu [][]string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildReplyKeyboard(menu)
	if err := a.tg.Send(msg); err != nil {
		a.logger.Warn("send menu", "error", err, "chat_id", chatID)
	}
}

func (a *App) sendInline(chatID int64, text string, rows [][]telegram.InlineButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = telegram.BuildInlineKeyboard(rows)
	if err := a.tg.Send(msg); err != nil {
		a.logger.Warn("send inline message", "error", err, "chat_id", chatID)
	}
}

func (a *App) answerCallback(callbackID, text string, alert bool) {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = alert
	if err := a.tg.Send(callback); err != nil {
		a.logger.Warn("answer callback", "error", err)
	}
}

// Session state helpers.

func (a *App) setInputState(chatID int64, state inputState) {
	a.inputMu.Lock()
	defer a.inputMu.Unlock()
	a.inputByChat[chatID] = state
}

func (a *App) getInputState(chatID int64) (inputState, bool) {
	a.inputMu.Lock()
	defer a.inputMu.Unlock()
	state, ok := a.inputByChat[chatID]
	return state, ok
}

func (a *App) deleteInputState(chatID int64) {
	a.inputMu.Lock()
	defer a.inputMu.Unlock()
	delete(a.inputByChat, chatID)
}

func (a *App) setSurveyState(chatID int64, state surveyState) {
	a.surveyMu.Lock()
	defer a.surveyMu.Unlock()
	a.surveyByChat[chatID] = state
}

func (a *App) getSurveyState(chatID int64) (surveyState, bool) {
	a.surveyMu.Lock()
	defer a.surveyMu.Unlock()
	state, ok := a.surveyByChat[chatID]
	return state, ok
}

func (a *App) deleteSurveyState(chatID int64) {
	a.surveyMu.Lock()
	defer a.surveyMu.Unlock()
	delete(a.surveyByChat, chatID)
}
