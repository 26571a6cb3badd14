package app

import (
	"context"
	"errors"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	"github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/cashouts"
	linkssvc "github.com/Maniackaa/Bot-seller-link-2/internal/services/links"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/registration"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/worklinks"
	"github.com/Maniackaa/Bot-seller-link-2/internal/ui"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (a *App) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	tgID := message.From.ID

	user, err := a.usersRepo.GetByTGID(ctx, tgID)
	switch {
	case errors.Is(err, postgres.ErrUserNotFound):
		a.startSurvey(chatID, tgID, message.CommandArguments())
		return
	case err != nil:
		a.logger.Warn("load user on start", "error", err, "tg_id", tgID)
		a.sendText(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	if user.IsActive {
		a.sendMenu(chatID, "Главное меню", ui.MainMenu())
		return
	}

	pending, err := a.registrationService.HasPending(ctx, user.ID)
	if err != nil {
		a.logger.Warn("check pending registration", "error", err, "tg_id", tgID)
	}
	if pending {
		a.sendText(chatID, ui.SurveyPendingText())
		return
	}

	a.startSurvey(chatID, tgID, message.CommandArguments())
}

// Registration questionnaire.

func (a *App) startSurvey(chatID, tgID int64, source string) {
	a.setSurveyState(chatID, surveyState{ActorTGID: tgID, Source: strings.TrimSpace(source)})
	a.sendText(chatID, ui.SurveyIntroText())
	a.sendSurveyQuestion(chatID, 0)
}

func (a *App) sendSurveyQuestion(chatID int64, step int) {
	if step >= len(ui.SurveyQuestions) {
		return
	}

	question := ui.SurveyQuestions[step]
	menu := make([][]string, 0, len(question.Options)+1)
	for _, option := range question.Options {
		menu = append(menu, []string{option})
	}
	menu = append(menu, []string{ui.ButtonCancel})
	a.sendMenu(chatID, question.Prompt, menu)
}

func (a *App) handleSurveyAnswerIfNeeded(ctx context.Context, message *tgbotapi.Message) bool {
	state, ok := a.getSurveyState(message.Chat.ID)
	if !ok {
		return false
	}
	if state.ActorTGID != message.From.ID {
		return false
	}

	answer := strings.TrimSpace(message.Text)
	step := len(state.Answers)
	if step >= len(ui.SurveyQuestions) {
		if answer == ui.ButtonSendSurvey {
			a.deleteSurveyState(message.Chat.ID)
			a.submitSurvey(ctx, message, state)
			return true
		}
		a.sendSurveyConfirmation(message.Chat.ID, state)
		return true
	}

	question := ui.SurveyQuestions[step]
	if len(question.Options) > 0 && !containsOption(question.Options, answer) {
		a.sendSurveyQuestion(message.Chat.ID, step)
		return true
	}
	if answer == "" {
		a.sendSurveyQuestion(message.Chat.ID, step)
		return true
	}

	state.Answers = append(state.Answers, answer)
	a.setSurveyState(message.Chat.ID, state)
	if len(state.Answers) < len(ui.SurveyQuestions) {
		a.sendSurveyQuestion(message.Chat.ID, len(state.Answers))
		return true
	}

	a.sendSurveyConfirmation(message.Chat.ID, state)
	return true
}

func (a *App) sendSurveyConfirmation(chatID int64, state surveyState) {
	menu := [][]string{{ui.ButtonSendSurvey}, {ui.ButtonCancel}}
	a.sendMenu(chatID, ui.SurveyConfirmText(state.Answers), menu)
}

func (a *App) submitSurvey(ctx context.Context, message *tgbotapi.Message, state surveyState) {
	result, err := a.registrationService.Submit(ctx, registration.SubmitInput{
		TgID:     state.ActorTGID,
		Username: message.From.UserName,
		Answers:  ui.SurveyAnswerLines(state.Answers),
		Source:   state.Source,
	})
	if err != nil {
		a.logger.Warn("submit registration", "error", err, "tg_id", state.ActorTGID)
		a.sendText(message.Chat.ID, "Не удалось отправить заявку, попробуйте позже.")
		return
	}

	request, err := a.registrationService.Get(ctx, result.RequestID)
	if err != nil {
		a.logger.Warn("load registration request", "error", err, "request_id", result.RequestID)
		request = model.Request{ID: result.RequestID, Text: result.Text}
	}

	text := ui.RenderRegistrationAnnouncement(request, result.User)
	keyboard := [][]telegram.InlineButton{{
		{Text: "✅ Принять", Data: Command{Kind: kindRegistration, Action: "approve", ID: result.RequestID}.String()},
		{Text: "❌ Отклонить", Data: Command{Kind: kindRegistration, Action: "reject", ID: result.RequestID}.String()},
	}}
	ref, err := a.notifier.Announce(text, keyboard)
	if err == nil {
		if err := a.registrationService.AttachAnnouncement(ctx, result.RequestID, ref); err != nil {
			a.logger.Warn("attach registration announcement", "error", err, "request_id", result.RequestID)
		}
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, ui.SurveyDoneText())
	msg.ReplyMarkup = telegram.RemoveKeyboard()
	if err := a.tg.Send(msg); err != nil {
		a.logger.Warn("send survey done", "error", err, "chat_id", message.Chat.ID)
	}
}

// Link submission.

func (a *App) handleSubmitLinkEntry(ctx context.Context, message *tgbotapi.Message) {
	user, ok := a.requireActiveUser(ctx, message)
	if !ok {
		return
	}

	a.setInputState(message.Chat.ID, inputState{ActorTGID: user.TgID, Kind: inputLinkURL})
	a.sendMenu(message.Chat.ID, "Пришлите ссылку на видео (YouTube, Instagram или TikTok).", ui.CancelMenu())
}

func (a *App) handleUserInputIfNeeded(ctx context.Context, message *tgbotapi.Message) bool {
	state, ok := a.getInputState(message.Chat.ID)
	if !ok {
		return false
	}
	if state.ActorTGID != message.From.ID {
		return false
	}

	switch state.Kind {
	case inputLinkURL:
		a.handleLinkURLInput(ctx, message)
		return true
	case inputWallet:
		a.handleWalletInput(ctx, message)
		return true
	default:
		return false
	}
}

func (a *App) handleLinkURLInput(ctx context.Context, message *tgbotapi.Message) {
	result, err := a.linksService.Submit(ctx, linkssvc.SubmitInput{
		TgID:     message.From.ID,
		Username: message.From.UserName,
		URL:      message.Text,
	})
	switch {
	case errors.Is(err, linkssvc.ErrUnsupportedAddress):
		a.sendText(message.Chat.ID, "Не удалось распознать ссылку. Поддерживаются YouTube, Instagram и TikTok.")
		return
	case errors.Is(err, linkssvc.ErrDuplicate):
		a.deleteInputState(message.Chat.ID)
		a.sendMenu(message.Chat.ID, "Эта ссылка уже была отправлена ранее.", ui.MainMenu())
		return
	case err != nil:
		a.logger.Warn("submit link", "error", err, "tg_id", message.From.ID)
		a.deleteInputState(message.Chat.ID)
		a.sendMenu(message.Chat.ID, "Не удалось отправить ссылку, попробуйте позже.", ui.MainMenu())
		return
	}
	a.deleteInputState(message.Chat.ID)

	link, err := a.linksService.Get(ctx, result.LinkID)
	if err != nil {
		a.logger.Warn("load submitted link", "error", err, "link_id", result.LinkID)
		link = model.Link{ID: result.LinkID, URL: result.URL, Type: result.Platform}
	}

	text := ui.RenderLinkAnnouncement(link, result.Owner)
	keyboard := [][]telegram.InlineButton{
		{
			{Text: "✅ Подтвердить", Data: Command{Kind: kindLink, Action: "confirm", ID: result.LinkID}.String()},
			{Text: "👁 Просмотры", Data: Command{Kind: kindLink, Action: "views", ID: result.LinkID}.String()},
		},
		{
			{Text: "❌ Отклонить", Data: Command{Kind: kindLink, Action: "reject", ID: result.LinkID}.String()},
		},
	}
	ref, err := a.notifier.Announce(text, keyboard)
	if err == nil {
		if err := a.linksService.AttachAnnouncement(ctx, result.LinkID, ref); err != nil {
			a.logger.Warn("attach link announcement", "error", err, "link_id", result.LinkID)
		}
	}

	a.sendMenu(message.Chat.ID, ui.LinkAcceptedText(result.LinkID), ui.MainMenu())
}

// Account.

func (a *App) handleAccount(ctx context.Context, message *tgbotapi.Message) {
	user, ok := a.requireActiveUser(ctx, message)
	if !ok {
		return
	}

	totalEarned, err := a.linksService.TotalEarned(ctx, user.ID)
	if err != nil {
		a.logger.Warn("load total earned", "error", err, "user_id", user.ID)
	}
	workLinks, err := a.workLinksService.ListIssued(ctx, user.ID)
	if err != nil {
		a.logger.Warn("load work links", "error", err, "user_id", user.ID)
	}

	a.sendMenu(message.Chat.ID, ui.RenderAccount(user, totalEarned, workLinks), ui.MainMenu())
}

// Cash out.

func (a *App) handleCashOutEntry(ctx context.Context, message *tgbotapi.Message) {
	user, ok := a.requireActiveUser(ctx, message)
	if !ok {
		return
	}
	if user.Cash <= 0 {
		a.sendText(message.Chat.ID, "Баланс пуст, выводить нечего.")
		return
	}

	a.setInputState(message.Chat.ID, inputState{ActorTGID: user.TgID, Kind: inputWallet})
	prompt := "Пришлите адрес кошелька TRC20 для вывода."
	if user.TRC20 != "" {
		prompt += "\nПрошлый адрес: " + user.TRC20
	}
	a.sendMenu(message.Chat.ID, prompt, ui.CancelMenu())
}

func (a *App) handleWalletInput(ctx context.Context, message *tgbotapi.Message) {
	wallet := strings.TrimSpace(message.Text)
	if wallet == "" {
		a.sendText(message.Chat.ID, "Пришлите адрес кошелька TRC20.")
		return
	}
	a.deleteInputState(message.Chat.ID)

	result, err := a.cashOutsService.Submit(ctx, cashouts.SubmitInput{
		TgID:     message.From.ID,
		Username: message.From.UserName,
		TRC20:    wallet,
	})
	switch {
	case errors.Is(err, cashouts.ErrEmptyBalance):
		a.sendMenu(message.Chat.ID, "Баланс пуст, выводить нечего.", ui.MainMenu())
		return
	case err != nil:
		a.logger.Warn("submit cash out", "error", err, "tg_id", message.From.ID)
		a.sendMenu(message.Chat.ID, "Не удалось создать заявку на вывод, попробуйте позже.", ui.MainMenu())
		return
	}

	cashOut, err := a.cashOutsService.Get(ctx, result.CashOutID)
	if err != nil {
		a.logger.Warn("load cash out", "error", err, "cash_out_id", result.CashOutID)
		cashOut = model.CashOut{ID: result.CashOutID, TRC20: wallet, Cost: result.Amount}
	}

	text := ui.RenderCashOutAnnouncement(cashOut, result.Owner)
	keyboard := [][]telegram.InlineButton{{
		{Text: "✅ Выплачено", Data: Command{Kind: kindCashOut, Action: "approve", ID: result.CashOutID}.String()},
		{Text: "❌ Отклонить", Data: Command{Kind: kindCashOut, Action: "reject", ID: result.CashOutID}.String()},
	}}
	ref, err := a.notifier.Announce(text, keyboard)
	if err == nil {
		if err := a.cashOutsService.AttachAnnouncement(ctx, result.CashOutID, ref); err != nil {
			a.logger.Warn("attach cash out announcement", "error", err, "cash_out_id", result.CashOutID)
		}
	}

	a.sendMenu(message.Chat.ID, ui.CashOutCreatedText(result.Amount), ui.MainMenu())
}

// Work link request.

func (a *App) handleWorkLinkRequest(ctx context.Context, message *tgbotapi.Message) {
	user, ok := a.requireActiveUser(ctx, message)
	if !ok {
		return
	}

	result, err := a.workLinksService.Submit(ctx, worklinks.SubmitInput{
		TgID:     user.TgID,
		Username: message.From.UserName,
	})
	if err != nil {
		a.logger.Warn("submit work link request", "error", err, "tg_id", user.TgID)
		a.sendText(message.Chat.ID, "Не удалось отправить заявку, попробуйте позже.")
		return
	}

	request, err := a.workLinksService.Get(ctx, result.RequestID)
	if err != nil {
		a.logger.Warn("load work link request", "error", err, "request_id", result.RequestID)
		request = model.WorkLinkRequest{ID: result.RequestID}
	}

	text := ui.RenderWorkLinkAnnouncement(request, result.Owner)
	keyboard := [][]telegram.InlineButton{{
		{Text: "✅ Выдать ссылку", Data: Command{Kind: kindWork, Action: "approve", ID: result.RequestID}.String()},
		{Text: "❌ Отклонить", Data: Command{Kind: kindWork, Action: "reject", ID: result.RequestID}.String()},
	}}
	ref, err := a.notifier.Announce(text, keyboard)
	if err == nil {
		if err := a.workLinksService.AttachAnnouncement(ctx, result.RequestID, ref); err != nil {
			a.logger.Warn("attach work link announcement", "error", err, "request_id", result.RequestID)
		}
	}

	a.sendText(message.Chat.ID, "Заявка на рабочую ссылку отправлена.")
}

func (a *App) requireActiveUser(ctx context.Context, message *tgbotapi.Message) (model.User, bool) {
	user, err := a.usersRepo.GetByTGID(ctx, message.From.ID)
	if errors.Is(err, postgres.ErrUserNotFound) {
		a.sendText(message.Chat.ID, "Сначала пройдите регистрацию: /start")
		return model.User{}, false
	}
	if err != nil {
		a.logger.Warn("load user", "error", err, "tg_id", message.From.ID)
		a.sendText(message.Chat.ID, "Что-то пошло не так, попробуйте позже.")
		return model.User{}, false
	}
	if !user.IsActive {
		a.sendText(message.Chat.ID, "Ваша учётная запись ещё не активирована.")
		return model.User{}, false
	}
	return user, true
}

func containsOption(options []string, answer string) bool {
	for _, option := range options {
		if option == answer {
			return true
		}
	}
	return false
}
