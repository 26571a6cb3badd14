package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/infra/telegram"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/cashouts"
	linkssvc "github.com/Maniackaa/Bot-seller-link-2/internal/services/links"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/registration"
	"github.com/Maniackaa/Bot-seller-link-2/internal/services/worklinks"
	"github.com/Maniackaa/Bot-seller-link-2/internal/ui"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const (
	ackDone           = "Готово"
	ackAlreadyDecided = "Уже обработано"
	ackNotFound       = "Заявка не найдена"
	ackFailed         = "Не удалось обработать"
)

var listingPeriods = []struct {
	Period linkssvc.Period
	Label  string
}{
	{linkssvc.PeriodWeek, "Неделя"},
	{linkssvc.PeriodTwoWeeks, "14 дней"},
	{linkssvc.PeriodOlderWeek, "Старше 14 дней"},
	{linkssvc.PeriodMonth, "Месяц"},
	{linkssvc.PeriodAll, "Все"},
}

// Registration decisions.

func (a *App) handleRegistrationCallback(ctx context.Context, chatID, actorTGID int64, cmd Command) (string, bool) {
	request, err := a.registrationService.Get(ctx, cmd.ID)
	if err != nil {
		return a.ackForError(err), true
	}
	if request.Status.IsTerminal() {
		return ackAlreadyDecided, true
	}

	switch cmd.Action {
	case "approve":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputRegistrationCPM, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите CPM для заявки №%d:", cmd.ID))
	case "reject":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputRegistrationReason, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите причину отказа по заявке №%d (или «-»):", cmd.ID))
	}
	return "", false
}

// Link decisions.

func (a *App) handleLinkCallback(ctx context.Context, chatID, actorTGID int64, cmd Command) (string, bool) {
	link, err := a.linksService.Get(ctx, cmd.ID)
	if err != nil {
		return a.ackForError(err), true
	}
	if link.Status.IsTerminal() {
		return ackAlreadyDecided, true
	}

	switch cmd.Action {
	case "confirm":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputLinkCost, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите сумму по ссылке №%d:", cmd.ID))
		return "", false
	case "views":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputLinkViews, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите количество просмотров по ссылке №%d:", cmd.ID))
		return "", false
	case "reject":
		result, err := a.linksService.Reject(ctx, linkssvc.RejectInput{ActorTGID: actorTGID, LinkID: cmd.ID})
		if err != nil {
			return a.ackForError(err), true
		}
		a.notifier.Finalize(result.Link.GroupMsg,
			ui.RenderLinkAnnouncement(result.Link, result.Owner)+ui.RejectedNote(actorTGID, ""))
		a.notifier.NotifyOwner(result.Owner.TgID, ui.LinkRejectedText(result.Link))
		return ackDone, false
	}
	return "", false
}

// Work link decisions.

func (a *App) handleWorkCallback(ctx context.Context, chatID, actorTGID int64, cmd Command) (string, bool) {
	request, err := a.workLinksService.Get(ctx, cmd.ID)
	if err != nil {
		return a.ackForError(err), true
	}
	if request.Status.IsTerminal() {
		return ackAlreadyDecided, true
	}

	switch cmd.Action {
	case "approve":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputWorkURL, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Пришлите рабочую ссылку для заявки №%d:", cmd.ID))
	case "reject":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputWorkReason, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите причину отказа по заявке №%d (или «-»):", cmd.ID))
	}
	return "", false
}

// Cash out decisions.

func (a *App) handleCashOutCallback(ctx context.Context, chatID, actorTGID int64, cmd Command) (string, bool) {
	cashOut, err := a.cashOutsService.Get(ctx, cmd.ID)
	if err != nil {
		return a.ackForError(err), true
	}
	if cashOut.Status.IsTerminal() {
		return ackAlreadyDecided, true
	}

	switch cmd.Action {
	case "approve":
		result, err := a.cashOutsService.Approve(ctx, cashouts.DecideInput{ActorTGID: actorTGID, CashOutID: cmd.ID})
		if err != nil {
			return a.ackForError(err), true
		}
		a.notifier.Finalize(result.CashOut.GroupMsg,
			ui.RenderCashOutAnnouncement(result.CashOut, result.Owner)+ui.ApprovedNote(actorTGID))
		a.notifier.NotifyOwner(result.Owner.TgID, ui.CashOutApprovedText(result.CashOut))
		return ackDone, false
	case "reject":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputCashReason, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите причину отказа по выводу №%d (или «-»):", cmd.ID))
	}
	return "", false
}

// Pending moderator text inputs.

func (a *App) handleModeratorInputIfNeeded(ctx context.Context, message *tgbotapi.Message) bool {
	state, ok := a.getInputState(message.Chat.ID)
	if !ok {
		return false
	}
	if state.ActorTGID != message.From.ID {
		return false
	}

	text := strings.TrimSpace(message.Text)
	if text == ui.ButtonCancel {
		a.deleteInputState(message.Chat.ID)
		a.sendText(message.Chat.ID, "Действие отменено.")
		return true
	}

	switch state.Kind {
	case inputRegistrationCPM:
		a.handleRegistrationCPMInput(ctx, message, state, text)
	case inputRegistrationReason:
		a.handleRegistrationReasonInput(ctx, message, state, text)
	case inputLinkCost:
		a.handleLinkCostInput(ctx, message, state, text)
	case inputLinkViews:
		a.handleLinkViewsInput(ctx, message, state, text)
	case inputWorkURL:
		a.handleWorkURLInput(ctx, message, state, text)
	case inputWorkReason:
		a.handleWorkReasonInput(ctx, message, state, text)
	case inputCashReason:
		a.handleCashReasonInput(ctx, message, state, text)
	case inputUserCPM:
		a.handleUserCPMInput(ctx, message, state, text)
	default:
		return false
	}
	return true
}

func (a *App) handleRegistrationCPMInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	cpm, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
	if err != nil || cpm.IsNegative() || cpm.IsZero() {
		a.sendText(message.Chat.ID, "Введите положительное число, например 1.5")
		return
	}
	a.deleteInputState(message.Chat.ID)

	result, err := a.registrationService.Approve(ctx, registration.ApproveInput{
		ActorTGID: state.ActorTGID,
		RequestID: state.EntityID,
		CPM:       cpm,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Request.GroupMsg,
		ui.RenderRegistrationAnnouncement(result.Request, result.Owner)+ui.ApprovedNote(state.ActorTGID))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.RegistrationApprovedText(cpm.String()))
	a.sendOwnerMainMenu(result.Owner.TgID)
	a.notifier.SendToGroup(fmt.Sprintf("Заявка №%d принята, CPM %s.", state.EntityID, cpm.String()))
}

func (a *App) handleRegistrationReasonInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	a.deleteInputState(message.Chat.ID)
	reason := normalizeReason(text)

	result, err := a.registrationService.Reject(ctx, registration.RejectInput{
		ActorTGID: state.ActorTGID,
		RequestID: state.EntityID,
		Reason:    reason,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Request.GroupMsg,
		ui.RenderRegistrationAnnouncement(result.Request, result.Owner)+ui.RejectedNote(state.ActorTGID, reason))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.RegistrationRejectedText(reason))
	a.notifier.SendToGroup(fmt.Sprintf("Заявка №%d отклонена.", state.EntityID))
}

func (a *App) handleLinkCostInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	cost, err := strconv.ParseInt(text, 10, 64)
	if err != nil || cost <= 0 {
		a.sendText(message.Chat.ID, "Введите целое положительное число.")
		return
	}
	a.deleteInputState(message.Chat.ID)

	result, err := a.linksService.Confirm(ctx, linkssvc.ConfirmInput{
		ActorTGID: state.ActorTGID,
		LinkID:    state.EntityID,
		Cost:      cost,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Link.GroupMsg,
		ui.RenderLinkAnnouncement(result.Link, result.Owner)+ui.ConfirmedWithCostNote(state.ActorTGID, result.Link.Cost))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.LinkConfirmedText(result.Link, result.NewBalance))
	a.notifier.SendToGroup(fmt.Sprintf("Ссылка №%d подтверждена, начислено %d.", state.EntityID, result.Link.Cost))
}

func (a *App) handleLinkViewsInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	viewCount, err := strconv.ParseInt(text, 10, 64)
	if err != nil || viewCount <= 0 {
		a.sendText(message.Chat.ID, "Введите целое положительное число.")
		return
	}
	a.deleteInputState(message.Chat.ID)

	result, err := a.linksService.SetViews(ctx, linkssvc.SetViewsInput{
		ActorTGID: state.ActorTGID,
		LinkID:    state.EntityID,
		ViewCount: viewCount,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Link.GroupMsg,
		ui.RenderLinkAnnouncement(result.Link, result.Owner)+ui.ViewsNote(state.ActorTGID, viewCount, result.Cost))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.LinkViewsText(result.Link, result.NewBalance))
	a.notifier.SendToGroup(fmt.Sprintf("По ссылке №%d засчитано %d просмотров, начислено %d.", state.EntityID, viewCount, result.Cost))
}

func (a *App) handleWorkURLInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	if text == "" {
		a.sendText(message.Chat.ID, "Пришлите ссылку.")
		return
	}
	a.deleteInputState(message.Chat.ID)

	result, err := a.workLinksService.Approve(ctx, worklinks.ApproveInput{
		ActorTGID: state.ActorTGID,
		RequestID: state.EntityID,
		URL:       text,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Request.GroupMsg,
		ui.RenderWorkLinkAnnouncement(result.Request, result.Owner)+ui.ApprovedNote(state.ActorTGID))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.WorkLinkIssuedText(result.URL))
	a.notifier.SendToGroup(fmt.Sprintf("Рабочая ссылка по заявке №%d выдана.", state.EntityID))
}

func (a *App) handleWorkReasonInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	a.deleteInputState(message.Chat.ID)
	reason := normalizeReason(text)

	result, err := a.workLinksService.Reject(ctx, worklinks.RejectInput{
		ActorTGID: state.ActorTGID,
		RequestID: state.EntityID,
		Reason:    reason,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.Request.GroupMsg,
		ui.RenderWorkLinkAnnouncement(result.Request, result.Owner)+ui.RejectedNote(state.ActorTGID, reason))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.WorkLinkRejectedText(reason))
	a.notifier.SendToGroup(fmt.Sprintf("Заявка №%d отклонена.", state.EntityID))
}

func (a *App) handleCashReasonInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	a.deleteInputState(message.Chat.ID)
	reason := normalizeReason(text)

	result, err := a.cashOutsService.Reject(ctx, cashouts.DecideInput{
		ActorTGID: state.ActorTGID,
		CashOutID: state.EntityID,
		Reason:    reason,
	})
	if err != nil {
		a.reportDecisionError(message.Chat.ID, err)
		return
	}

	a.notifier.Finalize(result.CashOut.GroupMsg,
		ui.RenderCashOutAnnouncement(result.CashOut, result.Owner)+ui.RejectedNote(state.ActorTGID, reason))
	a.notifier.NotifyOwner(result.Owner.TgID, ui.CashOutRejectedText(result.CashOut))
	a.notifier.SendToGroup(fmt.Sprintf("Вывод №%d отклонён.", state.EntityID))
}

func (a *App) handleUserCPMInput(ctx context.Context, message *tgbotapi.Message, state inputState, text string) {
	cpm, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
	if err != nil || cpm.IsNegative() || cpm.IsZero() {
		a.sendText(message.Chat.ID, "Введите положительное число, например 1.5")
		return
	}
	a.deleteInputState(message.Chat.ID)

	if err := a.usersRepo.UpdateCPM(ctx, state.EntityID, cpm); err != nil {
		a.logger.Warn("update cpm", "error", err, "user_id", state.EntityID)
		a.sendText(message.Chat.ID, ackFailed)
		return
	}
	a.sendText(message.Chat.ID, fmt.Sprintf("CPM веб-мастера id %d изменён на %s.", state.EntityID, cpm.String()))
	a.sendWebMasterCard(ctx, message.Chat.ID, state.EntityID)
}

// Web-masters menu.

func (a *App) handleWebMastersCallback(ctx context.Context, chatID, actorTGID int64, cmd Command) (string, bool) {
	switch cmd.Action {
	case "root":
		a.sendWebMastersPage(ctx, chatID, cmd.ArgInt(1))
	case "user":
		a.sendWebMasterCard(ctx, chatID, cmd.ID)
	case "cpm":
		a.setInputState(chatID, inputState{ActorTGID: actorTGID, Kind: inputUserCPM, EntityID: cmd.ID})
		a.sendText(chatID, fmt.Sprintf("Введите новый CPM для веб-мастера id %d:", cmd.ID))
	case "deact":
		if err := a.usersRepo.SetActive(ctx, cmd.ID, false); err != nil {
			a.logger.Warn("deactivate user", "error", err, "user_id", cmd.ID)
			return ackFailed, true
		}
		a.sendText(chatID, fmt.Sprintf("Веб-мастер id %d деактивирован.", cmd.ID))
		return ackDone, false
	}
	return "", false
}

func (a *App) sendWebMastersPage(ctx context.Context, chatID int64, requested int) {
	users, err := a.usersRepo.ListActive(ctx)
	if err != nil {
		a.logger.Warn("list active users", "error", err)
		a.sendText(chatID, "Не удалось загрузить список веб-мастеров.")
		return
	}
	if len(users) == 0 {
		a.sendText(chatID, "Активных веб-мастеров нет.")
		return
	}

	page := ui.Paginate(len(users), a.cfg.UsersPageSize, requested)
	rows := make([][]telegram.InlineButton, 0, page.End-page.Start+1)
	for _, user := range users[page.Start:page.End] {
		rows = append(rows, []telegram.InlineButton{{
			Text: user.Label(),
			Data: Command{Kind: kindWebMasters, Action: "user", ID: user.ID}.String(),
		}})
	}
	if page.MaxPage > 1 {
		rows = append(rows, []telegram.InlineButton{
			{Text: "⬅️", Data: Command{Kind: kindWebMasters, Action: "root", ID: 0, Arg: strconv.Itoa(page.Index - 1)}.String()},
			{Text: "➡️", Data: Command{Kind: kindWebMasters, Action: "root", ID: 0, Arg: strconv.Itoa(page.Index + 1)}.String()},
		})
	}
	a.sendInline(chatID, "Веб-мастера\n"+ui.PageFooter(page), rows)
}

func (a *App) sendWebMasterCard(ctx context.Context, chatID, userID int64) {
	stats, err := a.statsService.OwnerStats(ctx, userID)
	if err != nil {
		a.logger.Warn("load owner stats", "error", err, "user_id", userID)
		a.sendText(chatID, "Не удалось загрузить карточку веб-мастера.")
		return
	}

	rows := [][]telegram.InlineButton{
		{
			{Text: "Изменить CPM", Data: Command{Kind: kindWebMasters, Action: "cpm", ID: userID}.String()},
			{Text: "Деактивировать", Data: Command{Kind: kindWebMasters, Action: "deact", ID: userID}.String()},
		},
		{
			{Text: "Ссылки", Data: Command{Kind: kindLinkListing, Action: "periods", ID: userID}.String()},
		},
		{
			{Text: "К списку", Data: Command{Kind: kindWebMasters, Action: "root", ID: 0, Arg: "1"}.String()},
		},
	}
	a.sendInline(chatID, ui.RenderOwnerStats(stats), rows)
}

// Link listings by period.

func (a *App) handleLinkListingCallback(ctx context.Context, chatID int64, cmd Command) (string, bool) {
	switch cmd.Action {
	case "periods":
		rows := make([][]telegram.InlineButton, 0, len(listingPeriods))
		for _, entry := range listingPeriods {
			rows = append(rows, []telegram.InlineButton{{
				Text: entry.Label,
				Data: Command{Kind: kindLinkListing, Action: "list", ID: cmd.ID, Arg: string(entry.Period) + "-1"}.String(),
			}})
		}
		a.sendInline(chatID, "Выберите период:", rows)
	case "list":
		period, requested := parseListingArg(cmd.Arg)
		a.sendLinkListingPage(ctx, chatID, cmd.ID, period, requested)
	}
	return "", false
}

func (a *App) sendLinkListingPage(ctx context.Context, chatID, userID int64, period linkssvc.Period, requested int) {
	links, err := a.linksService.ListUnpriced(ctx, userID, period, time.Now().UTC())
	if err != nil {
		a.logger.Warn("list links", "error", err, "user_id", userID, "period", string(period))
		a.sendText(chatID, "Не удалось загрузить ссылки.")
		return
	}
	if len(links) == 0 {
		a.sendText(chatID, "Ссылок за выбранный период нет.")
		return
	}

	page := ui.Paginate(len(links), a.cfg.LinksPageSize, requested)
	cards := make([]string, 0, page.End-page.Start)
	rows := make([][]telegram.InlineButton, 0, page.End-page.Start+1)
	for _, link := range links[page.Start:page.End] {
		cards = append(cards, ui.RenderLinkCard(link))
		if !link.Status.IsTerminal() {
			rows = append(rows, []telegram.InlineButton{
				{Text: fmt.Sprintf("✅ №%d", link.ID), Data: Command{Kind: kindLink, Action: "confirm", ID: link.ID}.String()},
				{Text: fmt.Sprintf("👁 №%d", link.ID), Data: Command{Kind: kindLink, Action: "views", ID: link.ID}.String()},
			})
		}
	}
	if page.MaxPage > 1 {
		rows = append(rows, []telegram.InlineButton{
			{Text: "⬅️", Data: Command{Kind: kindLinkListing, Action: "list", ID: userID, Arg: string(period) + "-" + strconv.Itoa(page.Index-1)}.String()},
			{Text: "➡️", Data: Command{Kind: kindLinkListing, Action: "list", ID: userID, Arg: string(period) + "-" + strconv.Itoa(page.Index+1)}.String()},
		})
	}

	text := strings.Join(cards, "\n\n") + "\n\n" + ui.PageFooter(page)
	a.sendInline(chatID, text, rows)
}

// Stats and export.

func (a *App) handlePayoutStats(ctx context.Context, chatID int64) {
	totals, err := a.statsService.BuildTotals(ctx)
	if err != nil {
		a.logger.Warn("build payout totals", "error", err)
		a.sendText(chatID, "Не удалось загрузить статистику.")
		return
	}
	a.sendText(chatID, ui.RenderPayoutTotals(totals))
}

func (a *App) handleExport(ctx context.Context, chatID int64) {
	date := time.Now().UTC().Format("2006-01-02")

	users, err := a.statsService.ExportCSV(ctx)
	if err != nil {
		a.logger.Warn("export users csv", "error", err)
		a.sendText(chatID, "Не удалось сформировать выгрузку.")
		return
	}
	links, err := a.statsService.ExportLinksCSV(ctx)
	if err != nil {
		a.logger.Warn("export links csv", "error", err)
		a.sendText(chatID, "Не удалось сформировать выгрузку.")
		return
	}

	a.sendDocument(chatID, fmt.Sprintf("users_%s.csv", date), users)
	a.sendDocument(chatID, fmt.Sprintf("links_%s.csv", date), links)
}

func (a *App) sendDocument(chatID int64, name string, data []byte) {
	document := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if err := a.tg.Send(document); err != nil {
		a.logger.Warn("send export document", "error", err, "chat_id", chatID, "file", name)
	}
}

// Helpers.

func (a *App) sendOwnerMainMenu(tgID int64) {
	if tgID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(tgID, "Главное меню")
	msg.ReplyMarkup = telegram.BuildReplyKeyboard(ui.MainMenu())
	if err := a.tg.Send(msg); err != nil {
		a.logger.Warn("send main menu to owner", "error", err, "tg_id", tgID)
	}
}

func (a *App) ackForError(err error) string {
	switch {
	case errors.Is(err, registration.ErrNotFound),
		errors.Is(err, linkssvc.ErrNotFound),
		errors.Is(err, worklinks.ErrNotFound),
		errors.Is(err, cashouts.ErrNotFound):
		return ackNotFound
	case errors.Is(err, registration.ErrAlreadyDecided),
		errors.Is(err, linkssvc.ErrAlreadyDecided),
		errors.Is(err, linkssvc.ErrCostAlreadySet),
		errors.Is(err, worklinks.ErrAlreadyDecided),
		errors.Is(err, cashouts.ErrAlreadyDecided):
		return ackAlreadyDecided
	default:
		a.logger.Warn("decision failed", "error", err)
		return ackFailed
	}
}

func (a *App) reportDecisionError(chatID int64, err error) {
	a.sendText(chatID, a.ackForError(err))
}

func normalizeReason(text string) string {
	if text == "-" {
		return ""
	}
	return text
}

func parseListingArg(arg string) (linkssvc.Period, int) {
	period, pageText, found := strings.Cut(arg, "-")
	if !found {
		return linkssvc.Period(arg), 1
	}
	page, err := strconv.Atoi(pageText)
	if err != nil {
		page = 1
	}
	return linkssvc.Period(period), page
}
