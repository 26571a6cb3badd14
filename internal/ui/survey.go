package ui

import (
	"fmt"
	"strings"
)

// SurveyQuestion is one questionnaire step. Questions with options are
// answered by a button press, a question without options expects free
// text.
type SurveyQuestion struct {
	Prompt  string
	Options []string
}

// SurveyQuestions is the registration questionnaire in order. The
// answers become the text of the registration request.
var SurveyQuestions = []SurveyQuestion{
	{
		Prompt:  "Какой у вас опыт работы с трафиком?",
		Options: []string{"Нет опыта", "Меньше года", "1-3 года", "Больше 3 лет"},
	},
	{
		Prompt:  "С какими платформами вы работаете?",
		Options: []string{"YouTube", "Instagram", "TikTok", "Несколько платформ"},
	},
	{
		Prompt:  "Какой объём просмотров вы можете давать в месяц?",
		Options: []string{"До 100 тысяч", "100-500 тысяч", "500 тысяч - 1 млн", "Больше 1 млн"},
	},
	{
		Prompt: "Расскажите о своих каналах: ссылки и краткое описание.",
	},
}

// SurveyAnswerLines pairs each question with its answer for the request
// text.
func SurveyAnswerLines(answers []string) []string {
	lines := make([]string, 0, len(answers))
	for i, answer := range answers {
		if i >= len(SurveyQuestions) {
			break
		}
		lines = append(lines, fmt.Sprintf("%s\n- %s", SurveyQuestions[i].Prompt, strings.TrimSpace(answer)))
	}
	return lines
}

// SurveyConfirmText shows the collected answers before submission.
func SurveyConfirmText(answers []string) string {
	return "Проверьте анкету:\n\n" + strings.Join(SurveyAnswerLines(answers), "\n\n") +
		"\n\nОтправить заявку на рассмотрение?"
}

func SurveyIntroText() string {
	return "Для регистрации ответьте на несколько вопросов."
}

func SurveyDoneText() string {
	return "Спасибо! Ваша заявка отправлена на рассмотрение.\nМы сообщим вам о решении."
}

func SurveyPendingText() string {
	return "Ваша заявка уже на рассмотрении, ожидайте решения."
}
