package ui

// Main reply menu button titles. The router matches incoming private
// messages against these exact strings.
const (
	ButtonSubmitLink  = "Скинуть ссылку"
	ButtonAccount     = "Личный кабинет"
	ButtonCashOut     = "Вывод средств"
	ButtonWorkLink    = "Получить рабочую ссылку"
	ButtonCancel      = "Отмена"
	ButtonSendSurvey  = "Отправить заявку"
	ButtonWebMasters  = "Веб-мастера"
	ButtonPayoutStats = "Статистика"
	ButtonExport      = "Выгрузка"
)

// MainMenu is the private menu of an approved web-master.
func MainMenu() [][]string {
	return [][]string{
		{ButtonSubmitLink},
		{ButtonAccount, ButtonCashOut},
		{ButtonWorkLink},
	}
}

// CancelMenu replaces the main menu while the bot waits for a text
// input.
func CancelMenu() [][]string {
	return [][]string{{ButtonCancel}}
}

// GroupMenu is the reply menu pinned in the moderation group.
func GroupMenu() [][]string {
	return [][]string{
		{ButtonWebMasters},
		{ButtonPayoutStats, ButtonExport},
	}
}
