package worklinks

import (
	"context"
	"errors"
	"testing"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
)

type fakeRepo struct {
	nextID   int64
	requests map[int64]*model.WorkLinkRequest
	issued   []model.WorkLink
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: make(map[int64]*model.WorkLinkRequest)}
}

func (r *fakeRepo) CreateRequest(_ context.Context, ownerID int64) (int64, error) {
	r.nextID++
	r.requests[r.nextID] = &model.WorkLinkRequest{ID: r.nextID, OwnerID: ownerID, Status: enums.DecisionPending}
	return r.nextID, nil
}

func (r *fakeRepo) GetRequest(_ context.Context, id int64) (model.WorkLinkRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return model.WorkLinkRequest{}, pgrepo.ErrWorkLinkRequestNotFound
	}
	return *request, nil
}

func (r *fakeRepo) SetRequestMessageRef(_ context.Context, id int64, ref model.MessageRef) error {
	request, ok := r.requests[id]
	if !ok {
		return pgrepo.ErrWorkLinkRequestNotFound
	}
	request.GroupMsg = ref
	return nil
}

func (r *fakeRepo) ApproveRequest(_ context.Context, id, moderatorID int64, url string) (int64, error) {
	request, ok := r.requests[id]
	if !ok {
		return 0, pgrepo.ErrWorkLinkRequestNotFound
	}
	if request.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	request.Status = enums.DecisionApproved
	request.ModeratorID = moderatorID
	r.issued = append(r.issued, model.WorkLink{
		ID:          int64(len(r.issued) + 1),
		WorkerID:    request.OwnerID,
		URL:         url,
		ModeratorID: moderatorID,
	})
	return request.OwnerID, nil
}

func (r *fakeRepo) RejectRequest(_ context.Context, id, moderatorID int64, reason string) (int64, error) {
	request, ok := r.requests[id]
	if !ok {
		return 0, pgrepo.ErrWorkLinkRequestNotFound
	}
	if request.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	request.Status = enums.DecisionRejected
	request.ModeratorID = moderatorID
	request.RejectText = reason
	return request.OwnerID, nil
}

func (r *fakeRepo) ListByWorker(_ context.Context, workerID int64) ([]model.WorkLink, error) {
	result := make([]model.WorkLink, 0)
	for _, link := range r.issued {
		if link.WorkerID == workerID {
			result = append(result, link)
		}
	}
	return result, nil
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

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	users := &fakeUsers{users: make(map[int64]model.User)}
	return NewService(repo, users), repo
}

func TestApproveIssuesLink(t *testing.T) {
	service, repo := newTestService()

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 400, Username: "master"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Approve(context.Background(), ApproveInput{
		ActorTGID: 555,
		RequestID: submitted.RequestID,
		URL:       "https://t.me/channel?start=ref400",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.URL != "https://t.me/channel?start=ref400" {
		t.Fatalf("unexpected url %q", result.URL)
	}

	issued, err := service.ListIssued(context.Background(), result.Owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 1 {
		t.Fatalf("expected one issued link, got %d", len(issued))
	}
	if issued[0].ModeratorID != 555 {
		t.Fatalf("expected issuing moderator 555, got %d", issued[0].ModeratorID)
	}
	if repo.requests[submitted.RequestID].Status != enums.DecisionApproved {
		t.Fatalf("request not approved")
	}
}

func TestApproveRequiresURL(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Approve(context.Background(), ApproveInput{ActorTGID: 555, RequestID: 1, URL: "  "})
	if err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestRejectKeepsReason(t *testing.T) {
	service, repo := newTestService()

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 400})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.Reject(context.Background(), RejectInput{ActorTGID: 555, RequestID: submitted.RequestID, Reason: "рано"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.requests[submitted.RequestID].RejectText != "рано" {
		t.Fatalf("reason not stored")
	}

	_, err = service.Approve(context.Background(), ApproveInput{ActorTGID: 555, RequestID: submitted.RequestID, URL: "https://t.me/x"})
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}
