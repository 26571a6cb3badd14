package registration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	nextID   int64
	requests map[int64]*model.Request
	users    *fakeUsers
}

func newFakeRepo(users *fakeUsers) *fakeRepo {
	return &fakeRepo{requests: make(map[int64]*model.Request), users: users}
}

func (r *fakeRepo) Create(_ context.Context, ownerID int64, text, source string) (int64, error) {
	r.nextID++
	r.requests[r.nextID] = &model.Request{
		ID:      r.nextID,
		OwnerID: ownerID,
		Text:    text,
		Source:  source,
		Status:  enums.DecisionPending,
	}
	return r.nextID, nil
}

func (r *fakeRepo) HasPendingByOwner(_ context.Context, ownerID int64) (bool, error) {
	for _, request := range r.requests {
		if request.OwnerID == ownerID && request.Status == enums.DecisionPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (model.Request, error) {
	request, ok := r.requests[id]
	if !ok {
		return model.Request{}, pgrepo.ErrRequestNotFound
	}
	return *request, nil
}

func (r *fakeRepo) SetMessageRef(_ context.Context, id int64, ref model.MessageRef) error {
	request, ok := r.requests[id]
	if !ok {
		return pgrepo.ErrRequestNotFound
	}
	request.GroupMsg = ref
	return nil
}

func (r *fakeRepo) Approve(_ context.Context, id, moderatorID int64, cpm decimal.Decimal) (int64, error) {
	request, ok := r.requests[id]
	if !ok {
		return 0, pgrepo.ErrRequestNotFound
	}
	if request.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	request.Status = enums.DecisionApproved
	request.ModeratorID = moderatorID
	request.CPM = cpm
	if user, ok := r.users.users[request.OwnerID]; ok {
		user.IsActive = true
		user.CPM = cpm
		r.users.users[request.OwnerID] = user
	}
	return request.OwnerID, nil
}

func (r *fakeRepo) Reject(_ context.Context, id, moderatorID int64, reason string) (int64, error) {
	request, ok := r.requests[id]
	if !ok {
		return 0, pgrepo.ErrRequestNotFound
	}
	if request.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	request.Status = enums.DecisionRejected
	request.ModeratorID = moderatorID
	request.RejectText = reason
	return request.OwnerID, nil
}

type fakeUsers struct {
	users map[int64]model.User
}

func (u *fakeUsers) GetOrCreate(_ context.Context, tgID int64, username string) (model.User, error) {
	for _, user := range u.users {
		if user.TgID == tgID {
			return user, nil
		}
	}
	user := model.User{ID: int64(len(u.users) + 1), TgID: tgID, Username: username}
	u.users[user.ID] = user
	return user, nil
}

func (u *fakeUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	user, ok := u.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func newTestService() (*Service, *fakeRepo, *fakeUsers) {
	users := &fakeUsers{users: make(map[int64]model.User)}
	repo := newFakeRepo(users)
	return NewService(repo, users), repo, users
}

func TestSubmitJoinsAnswers(t *testing.T) {
	service, repo, _ := newTestService()

	result, err := service.Submit(context.Background(), SubmitInput{
		TgID:     200,
		Username: "newbie",
		Answers:  []string{"Опыт: 1-3 года", "Платформа: YouTube"},
		Source:   "ref42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.requests[result.RequestID]
	if !strings.Contains(stored.Text, "Опыт: 1-3 года") || !strings.Contains(stored.Text, "Платформа: YouTube") {
		t.Fatalf("answers missing from request text: %q", stored.Text)
	}
	if stored.Source != "ref42" {
		t.Fatalf("expected source ref42, got %q", stored.Source)
	}
}

func TestApproveSetsCPM(t *testing.T) {
	service, repo, users := newTestService()

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 200, Answers: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cpm := decimal.RequireFromString("2.5")
	result, err := service.Approve(context.Background(), ApproveInput{
		ActorTGID: 555,
		RequestID: submitted.RequestID,
		CPM:       cpm,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Request.CPM.Equal(cpm) {
		t.Fatalf("expected cpm %s, got %s", cpm, result.Request.CPM)
	}
	if repo.requests[submitted.RequestID].Status != enums.DecisionApproved {
		t.Fatalf("request not approved")
	}
	owner := users.users[result.Owner.ID]
	if !owner.IsActive || !owner.CPM.Equal(cpm) {
		t.Fatalf("owner not activated with cpm: %+v", owner)
	}
}

func TestApproveRejectsInvalidCPM(t *testing.T) {
	service, _, _ := newTestService()

	for _, raw := range []string{"0", "-1.5"} {
		_, err := service.Approve(context.Background(), ApproveInput{
			ActorTGID: 555,
			RequestID: 1,
			CPM:       decimal.RequireFromString(raw),
		})
		if err == nil {
			t.Fatalf("expected error for cpm %s", raw)
		}
	}
}

func TestDecisionIsFinal(t *testing.T) {
	service, _, users := newTestService()

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 200, Answers: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.Reject(context.Background(), RejectInput{ActorTGID: 555, RequestID: submitted.RequestID, Reason: "спам"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owner := users.users[submitted.User.ID]
	if owner.IsActive || !owner.CPM.IsZero() {
		t.Fatalf("reject must leave the owner untouched: %+v", owner)
	}

	_, err = service.Approve(context.Background(), ApproveInput{
		ActorTGID: 555,
		RequestID: submitted.RequestID,
		CPM:       decimal.RequireFromString("1.0"),
	})
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestHasPending(t *testing.T) {
	service, _, _ := newTestService()

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 200, Answers: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := service.HasPending(context.Background(), submitted.User.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pending {
		t.Fatalf("expected pending request")
	}
}
