package ui

import (
	"strings"
	"testing"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
)

func TestRenderLinkAnnouncementIsDeterministic(t *testing.T) {
	link := model.Link{
		ID:     42,
		URL:    "https://youtu.be/abc",
		Type:   enums.PlatformYouTube,
		Status: enums.LinkStatusModerate,
	}
	owner := model.User{TgID: 100, Username: "master"}

	first := RenderLinkAnnouncement(link, owner)
	second := RenderLinkAnnouncement(link, owner)
	if first != second {
		t.Fatalf("announcement text changed between renders")
	}
	if !strings.Contains(first, "№42") || !strings.Contains(first, "@master") {
		t.Fatalf("unexpected announcement: %s", first)
	}
}

func TestRejectedNoteIncludesReason(t *testing.T) {
	note := RejectedNote(555, "нет просмотров")
	if !strings.Contains(note, "нет просмотров") {
		t.Fatalf("reason missing: %s", note)
	}

	plain := RejectedNote(555, "  ")
	if strings.Contains(plain, "Причина") {
		t.Fatalf("unexpected reason line: %s", plain)
	}
}

func TestSurveyAnswerLinesPairsQuestions(t *testing.T) {
	answers := []string{"Нет опыта", "YouTube"}
	lines := SurveyAnswerLines(answers)

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], SurveyQuestions[0].Prompt) || !strings.Contains(lines[0], "Нет опыта") {
		t.Fatalf("unexpected line: %s", lines[0])
	}
}
