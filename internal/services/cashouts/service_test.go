package cashouts

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
	cashOuts map[int64]*model.CashOut
	users    *fakeUsers
}

func (r *fakeRepo) CreateSnapshot(_ context.Context, userID int64, trc20 string) (int64, int64, error) {
	user, ok := r.users.users[userID]
	if !ok {
		return 0, 0, pgrepo.ErrUserNotFound
	}
	if user.Cash <= 0 {
		return 0, 0, pgrepo.ErrEmptyBalance
	}

	amount := user.Cash
	r.nextID++
	r.cashOuts[r.nextID] = &model.CashOut{
		ID:     r.nextID,
		UserID: userID,
		TRC20:  trc20,
		Cost:   amount,
		Status: enums.DecisionPending,
	}
	user.Cash = 0
	user.TRC20 = trc20
	r.users.users[userID] = user
	return r.nextID, amount, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (model.CashOut, error) {
	cashOut, ok := r.cashOuts[id]
	if !ok {
		return model.CashOut{}, pgrepo.ErrCashOutNotFound
	}
	return *cashOut, nil
}

func (r *fakeRepo) SetMessageRef(_ context.Context, id int64, ref model.MessageRef) error {
	cashOut, ok := r.cashOuts[id]
	if !ok {
		return pgrepo.ErrCashOutNotFound
	}
	cashOut.GroupMsg = ref
	return nil
}

func (r *fakeRepo) Approve(_ context.Context, id, moderatorID int64) (int64, error) {
	cashOut, ok := r.cashOuts[id]
	if !ok {
		return 0, pgrepo.ErrCashOutNotFound
	}
	if cashOut.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	cashOut.Status = enums.DecisionApproved
	cashOut.ModeratorID = moderatorID
	return cashOut.UserID, nil
}

func (r *fakeRepo) Reject(_ context.Context, id, moderatorID int64, reason string) (int64, error) {
	cashOut, ok := r.cashOuts[id]
	if !ok {
		return 0, pgrepo.ErrCashOutNotFound
	}
	if cashOut.Status != enums.DecisionPending {
		return 0, pgrepo.ErrAlreadyDecided
	}
	cashOut.Status = enums.DecisionRejected
	cashOut.ModeratorID = moderatorID
	cashOut.RejectText = reason
	return cashOut.UserID, nil
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

func newTestService(balance int64) (*Service, *fakeRepo, *fakeUsers) {
	users := &fakeUsers{users: map[int64]model.User{
		1: {ID: 1, TgID: 300, Username: "master", IsActive: true, Cash: balance},
	}}
	repo := &fakeRepo{cashOuts: make(map[int64]*model.CashOut), users: users}
	return NewService(repo, users), repo, users
}

func TestSubmitDeductsFullBalance(t *testing.T) {
	service, _, users := newTestService(150)

	result, err := service.Submit(context.Background(), SubmitInput{TgID: 300, TRC20: "TAbc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 150 {
		t.Fatalf("expected amount 150, got %d", result.Amount)
	}
	if users.users[1].Cash != 0 {
		t.Fatalf("balance not zeroed: %d", users.users[1].Cash)
	}
	if users.users[1].TRC20 != "TAbc123" {
		t.Fatalf("wallet not stored: %q", users.users[1].TRC20)
	}
}

func TestSubmitEmptyBalance(t *testing.T) {
	service, _, _ := newTestService(0)

	_, err := service.Submit(context.Background(), SubmitInput{TgID: 300, TRC20: "TAbc123"})
	if !errors.Is(err, ErrEmptyBalance) {
		t.Fatalf("expected ErrEmptyBalance, got %v", err)
	}
}

func TestRejectDoesNotRefund(t *testing.T) {
	service, _, users := newTestService(80)

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 300, TRC20: "TAbc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Reject(context.Background(), DecideInput{ActorTGID: 555, CashOutID: submitted.CashOutID, Reason: "неверный кошелёк"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CashOut.Status != enums.DecisionRejected {
		t.Fatalf("cash out not rejected")
	}
	if users.users[1].Cash != 0 {
		t.Fatalf("reject refunded the balance: %d", users.users[1].Cash)
	}
}

func TestDecisionIsFinal(t *testing.T) {
	service, _, _ := newTestService(80)

	submitted, err := service.Submit(context.Background(), SubmitInput{TgID: 300, TRC20: "TAbc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.Approve(context.Background(), DecideInput{ActorTGID: 555, CashOutID: submitted.CashOutID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = service.Reject(context.Background(), DecideInput{ActorTGID: 555, CashOutID: submitted.CashOutID})
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}
