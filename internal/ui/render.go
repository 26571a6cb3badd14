package ui

import (
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

// Announcement texts are rendered from the stored entity alone, so the
// post-decision edit can rebuild the original text and append the
// outcome without keeping message copies around.

func RenderRegistrationAnnouncement(request model.Request, owner model.User) string {
	lines := []string{
		fmt.Sprintf("Заявка на регистрацию №%d", request.ID),
		fmt.Sprintf("От: %s", owner.Label()),
	}
	if request.Text != "" {
		lines = append(lines, "", request.Text)
	}
	if request.Source != "" {
		lines = append(lines, "", fmt.Sprintf("Источник: %s", request.Source))
	}
	return strings.Join(lines, "\n")
}

func RenderLinkAnnouncement(link model.Link, owner model.User) string {
	return strings.Join([]string{
		fmt.Sprintf("Новая ссылка №%d", link.ID),
		fmt.Sprintf("От: %s", owner.Label()),
		fmt.Sprintf("Платформа: %s", link.Type),
		link.URL,
	}, "\n")
}

func RenderWorkLinkAnnouncement(request model.WorkLinkRequest, owner model.User) string {
	return strings.Join([]string{
		fmt.Sprintf("Заявка на рабочую ссылку №%d", request.ID),
		fmt.Sprintf("От: %s", owner.Label()),
	}, "\n")
}

func RenderCashOutAnnouncement(cashOut model.CashOut, owner model.User) string {
	return strings.Join([]string{
		fmt.Sprintf("Заявка на вывод №%d", cashOut.ID),
		fmt.Sprintf("От: %s", owner.Label()),
		fmt.Sprintf("Сумма: %d", cashOut.Cost),
		fmt.Sprintf("Кошелёк TRC20: %s", cashOut.TRC20),
	}, "\n")
}

// Outcome notes appended to the announcement after a decision.

func ApprovedNote(moderatorTGID int64) string {
	return fmt.Sprintf("\n\n✅ Одобрено модератором %d", moderatorTGID)
}

func RejectedNote(moderatorTGID int64, reason string) string {
	note := fmt.Sprintf("\n\n❌ Отклонено модератором %d", moderatorTGID)
	reason = strings.TrimSpace(reason)
	if reason != "" {
		note += fmt.Sprintf("\nПричина: %s", reason)
	}
	return note
}

func ConfirmedWithCostNote(moderatorTGID int64, cost int64) string {
	return fmt.Sprintf("\n\n✅ Подтверждено модератором %d, начислено: %d", moderatorTGID, cost)
}

func ViewsNote(moderatorTGID int64, viewCount, cost int64) string {
	return fmt.Sprintf("\n\n✅ Просмотры: %d, начислено: %d (модератор %d)", viewCount, cost, moderatorTGID)
}

// Owner notifications.

func RegistrationApprovedText(cpm string) string {
	return fmt.Sprintf("Ваша заявка на регистрацию одобрена!\nВаша ставка CPM: %s\nТеперь вам доступно главное меню.", cpm)
}

func RegistrationRejectedText(reason string) string {
	text := "Ваша заявка на регистрацию отклонена."
	if strings.TrimSpace(reason) != "" {
		text += "\nПричина: " + strings.TrimSpace(reason)
	}
	return text
}

func LinkAcceptedText(linkID int64) string {
	return fmt.Sprintf("Ссылка №%d принята и отправлена на модерацию.", linkID)
}

func LinkConfirmedText(link model.Link, newBalance int64) string {
	return fmt.Sprintf("Ваша ссылка подтверждена!\n%s\nНачислено: %d\nБаланс: %d", link.URL, link.Cost, newBalance)
}

func LinkViewsText(link model.Link, newBalance int64) string {
	return fmt.Sprintf("По вашей ссылке засчитано просмотров: %d\n%s\nНачислено: %d\nБаланс: %d",
		link.ViewCount, link.URL, link.Cost, newBalance)
}

func LinkRejectedText(link model.Link) string {
	return fmt.Sprintf("Ваша ссылка отклонена модератором.\n%s", link.URL)
}

func WorkLinkIssuedText(url string) string {
	return fmt.Sprintf("Ваша рабочая ссылка готова:\n%s", url)
}

func WorkLinkRejectedText(reason string) string {
	text := "Заявка на рабочую ссылку отклонена."
	if strings.TrimSpace(reason) != "" {
		text += "\nПричина: " + strings.TrimSpace(reason)
	}
	return text
}

func CashOutCreatedText(amount int64) string {
	return fmt.Sprintf("Заявка на вывод %d принята.\nСредства списаны с баланса и будут отправлены после подтверждения.", amount)
}

func CashOutApprovedText(cashOut model.CashOut) string {
	return fmt.Sprintf("Выплата по заявке №%d отправлена.\nСумма: %d\nКошелёк: %s", cashOut.ID, cashOut.Cost, cashOut.TRC20)
}

func CashOutRejectedText(cashOut model.CashOut) string {
	text := fmt.Sprintf("Заявка на вывод №%d отклонена.", cashOut.ID)
	if strings.TrimSpace(cashOut.RejectText) != "" {
		text += "\nПричина: " + strings.TrimSpace(cashOut.RejectText)
	}
	return text
}

// Private account screens.

func RenderAccount(user model.User, totalEarned int64, workLinks []model.WorkLink) string {
	lines := []string{
		"Личный кабинет",
		fmt.Sprintf("Баланс: %d", user.Cash),
		fmt.Sprintf("CPM: %s", user.CPM.String()),
		fmt.Sprintf("Заработано всего: %d", totalEarned),
	}
	if user.TRC20 != "" {
		lines = append(lines, fmt.Sprintf("Кошелёк TRC20: %s", user.TRC20))
	}
	if len(workLinks) > 0 {
		lines = append(lines, "", "Ваши рабочие ссылки:")
		for _, workLink := range workLinks {
			lines = append(lines, workLink.URL)
		}
	}
	return strings.Join(lines, "\n")
}

// Moderator screens.

func RenderOwnerStats(stats model.OwnerStats) string {
	user := stats.User
	activity := "нет"
	if user.IsActive {
		activity = "да"
	}
	lines := []string{
		fmt.Sprintf("Веб-мастер %s (id %d)", user.Label(), user.ID),
		fmt.Sprintf("Активен: %s", activity),
		fmt.Sprintf("CPM: %s", user.CPM.String()),
		fmt.Sprintf("Баланс: %d", user.Cash),
		fmt.Sprintf("Заработано всего: %d", stats.TotalEarned),
		fmt.Sprintf("Ссылок: %d (принято %d, отклонено %d, в работе %d)",
			stats.LinkCount, stats.Confirmed, stats.Rejected, stats.Pending),
	}
	if user.TRC20 != "" {
		lines = append(lines, fmt.Sprintf("Кошелёк TRC20: %s", user.TRC20))
	}
	return strings.Join(lines, "\n")
}

func RenderPayoutTotals(totals model.PayoutTotals) string {
	return strings.Join([]string{
		"Статистика выплат",
		fmt.Sprintf("Всего: %d", totals.AllTime),
		fmt.Sprintf("За 30 дней: %d", totals.LastMonth),
		fmt.Sprintf("За 14 дней: %d", totals.LastTwo),
		fmt.Sprintf("Веб-мастеров с выплатами: %d", totals.UserCount),
		fmt.Sprintf("Подтверждённых ссылок: %d", totals.LinkCount),
	}, "\n")
}

func RenderLinkCard(link model.Link) string {
	lines := []string{
		fmt.Sprintf("Ссылка №%d (%s)", link.ID, link.Type),
		link.URL,
		fmt.Sprintf("Статус: %s", linkStatusLabel(link.Status)),
		fmt.Sprintf("Дата: %s", link.RegisterDate.Format("02.01.2006")),
	}
	if link.ViewCount > 0 {
		lines = append(lines, fmt.Sprintf("Просмотры: %d", link.ViewCount))
	}
	if link.Cost > 0 {
		lines = append(lines, fmt.Sprintf("Начислено: %d", link.Cost))
	}
	return strings.Join(lines, "\n")
}

func linkStatusLabel(status enums.LinkStatus) string {
	switch status {
	case enums.LinkStatusCreated:
		return "создана"
	case enums.LinkStatusModerate:
		return "на модерации"
	case enums.LinkStatusConfirmed:
		return "подтверждена"
	case enums.LinkStatusRejected:
		return "отклонена"
	default:
		return string(status)
	}
}

func PageFooter(page Page) string {
	return fmt.Sprintf("Страница %d из %d", page.Index, page.MaxPage)
}
