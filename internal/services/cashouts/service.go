package cashouts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
)

var (
	ErrNotFound       = errors.New("cash out not found")
	ErrAlreadyDecided = errors.New("cash out already decided")
	ErrEmptyBalance   = errors.New("balance is empty")
)

type Repo interface {
	CreateSnapshot(context.Context, int64, string) (int64, int64, error)
	GetByID(context.Context, int64) (model.CashOut, error)
	SetMessageRef(context.Context, int64, model.MessageRef) error
	Approve(context.Context, int64, int64) (int64, error)
	Reject(context.Context, int64, int64, string) (int64, error)
}

type UsersRepo interface {
	GetOrCreate(context.Context, int64, string) (model.User, error)
	GetByID(context.Context, int64) (model.User, error)
}

type Service struct {
	repo  Repo
	users UsersRepo
}

func NewService(repo Repo, users UsersRepo) *Service {
	return &Service{repo: repo, users: users}
}

type SubmitInput struct {
	TgID     int64
	Username string
	TRC20    string
}

type SubmitResult struct {
	CashOutID int64
	Owner     model.User
	Amount    int64
}

// Submit creates the payout and deducts the full balance in the same
// step. The deducted amount is final, a later reject does not return it.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if s.repo == nil || s.users == nil {
		return SubmitResult{}, fmt.Errorf("cash outs service is not configured")
	}
	if input.TgID == 0 {
		return SubmitResult{}, fmt.Errorf("invalid tg id")
	}
	trc20 := strings.TrimSpace(input.TRC20)
	if trc20 == "" {
		return SubmitResult{}, fmt.Errorf("empty trc20 wallet")
	}

	owner, err := s.users.GetOrCreate(ctx, input.TgID, input.Username)
	if err != nil {
		return SubmitResult{}, err
	}

	id, amount, err := s.repo.CreateSnapshot(ctx, owner.ID, trc20)
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmptyBalance) {
			return SubmitResult{}, ErrEmptyBalance
		}
		return SubmitResult{}, err
	}
	owner.Cash = 0
	owner.TRC20 = trc20
	return SubmitResult{CashOutID: id, Owner: owner, Amount: amount}, nil
}

func (s *Service) AttachAnnouncement(ctx context.Context, cashOutID int64, ref model.MessageRef) error {
	if s.repo == nil {
		return ErrNotFound
	}
	return mapErr(s.repo.SetMessageRef(ctx, cashOutID, ref))
}

func (s *Service) Get(ctx context.Context, cashOutID int64) (model.CashOut, error) {
	if s.repo == nil {
		return model.CashOut{}, ErrNotFound
	}
	cashOut, err := s.repo.GetByID(ctx, cashOutID)
	if err != nil {
		return model.CashOut{}, mapErr(err)
	}
	return cashOut, nil
}

type DecideInput struct {
	ActorTGID int64
	CashOutID int64
	Reason    string
}

type DecideResult struct {
	CashOut model.CashOut
	Owner   model.User
}

func (s *Service) Approve(ctx context.Context, input DecideInput) (DecideResult, error) {
	return s.decide(ctx, input, true)
}

// Reject closes the payout. The balance stays at zero, the snapshot
// amount is not returned.
func (s *Service) Reject(ctx context.Context, input DecideInput) (DecideResult, error) {
	return s.decide(ctx, input, false)
}

func (s *Service) decide(ctx context.Context, input DecideInput, approve bool) (DecideResult, error) {
	if s.repo == nil || s.users == nil {
		return DecideResult{}, fmt.Errorf("cash outs service is not configured")
	}
	if input.ActorTGID == 0 {
		return DecideResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.CashOutID <= 0 {
		return DecideResult{}, fmt.Errorf("invalid cash out id")
	}

	var (
		userID int64
		err    error
	)
	if approve {
		userID, err = s.repo.Approve(ctx, input.CashOutID, input.ActorTGID)
	} else {
		userID, err = s.repo.Reject(ctx, input.CashOutID, input.ActorTGID, input.Reason)
	}
	if err != nil {
		return DecideResult{}, mapErr(err)
	}

	cashOut, err := s.repo.GetByID(ctx, input.CashOutID)
	if err != nil {
		return DecideResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return DecideResult{}, err
	}
	return DecideResult{CashOut: cashOut, Owner: owner}, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgrepo.ErrCashOutNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrAlreadyDecided):
		return ErrAlreadyDecided
	default:
		return err
	}
}
