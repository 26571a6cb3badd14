package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("registration request not found")
	ErrAlreadyDecided = errors.New("registration request already decided")
)

type Repo interface {
	Create(context.Context, int64, string, string) (int64, error)
	HasPendingByOwner(context.Context, int64) (bool, error)
	GetByID(context.Context, int64) (model.Request, error)
	SetMessageRef(context.Context, int64, model.MessageRef) error
	Approve(context.Context, int64, int64, decimal.Decimal) (int64, error)
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
	Answers  []string
	Source   string
}

type SubmitResult struct {
	RequestID int64
	User      model.User
	Text      string
}

// Submit stores the finished questionnaire as a pending registration
// request. The answers are joined into the request text so a moderator
// sees the whole questionnaire in one announcement.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if s.repo == nil || s.users == nil {
		return SubmitResult{}, fmt.Errorf("registration service is not configured")
	}
	if input.TgID == 0 {
		return SubmitResult{}, fmt.Errorf("invalid tg id")
	}
	if len(input.Answers) == 0 {
		return SubmitResult{}, fmt.Errorf("empty questionnaire")
	}

	user, err := s.users.GetOrCreate(ctx, input.TgID, input.Username)
	if err != nil {
		return SubmitResult{}, err
	}

	text := strings.Join(input.Answers, "\n")
	id, err := s.repo.Create(ctx, user.ID, text, strings.TrimSpace(input.Source))
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{RequestID: id, User: user, Text: text}, nil
}

// HasPending reports whether the user already has an undecided
// registration request, so a second questionnaire is not started.
func (s *Service) HasPending(ctx context.Context, userID int64) (bool, error) {
	if s.repo == nil {
		return false, nil
	}
	return s.repo.HasPendingByOwner(ctx, userID)
}

func (s *Service) AttachAnnouncement(ctx context.Context, requestID int64, ref model.MessageRef) error {
	if s.repo == nil {
		return ErrNotFound
	}
	return mapErr(s.repo.SetMessageRef(ctx, requestID, ref))
}

func (s *Service) Get(ctx context.Context, requestID int64) (model.Request, error) {
	if s.repo == nil {
		return model.Request{}, ErrNotFound
	}
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, mapErr(err)
	}
	return request, nil
}

type ApproveInput struct {
	ActorTGID int64
	RequestID int64
	CPM       decimal.Decimal
}

type ApproveResult struct {
	Request model.Request
	Owner   model.User
}

// Approve activates the web-master with the moderator-entered CPM.
// A second approve or an approve after reject returns ErrAlreadyDecided
// and leaves the stored decision untouched.
func (s *Service) Approve(ctx context.Context, input ApproveInput) (ApproveResult, error) {
	if s.repo == nil || s.users == nil {
		return ApproveResult{}, fmt.Errorf("registration service is not configured")
	}
	if input.ActorTGID == 0 {
		return ApproveResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.RequestID <= 0 {
		return ApproveResult{}, fmt.Errorf("invalid request id")
	}
	if input.CPM.IsNegative() || input.CPM.IsZero() {
		return ApproveResult{}, fmt.Errorf("invalid cpm")
	}

	ownerID, err := s.repo.Approve(ctx, input.RequestID, input.ActorTGID, input.CPM)
	if err != nil {
		return ApproveResult{}, mapErr(err)
	}

	request, err := s.repo.GetByID(ctx, input.RequestID)
	if err != nil {
		return ApproveResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return ApproveResult{}, err
	}
	return ApproveResult{Request: request, Owner: owner}, nil
}

type RejectInput struct {
	ActorTGID int64
	RequestID int64
	Reason    string
}

type RejectResult struct {
	Request model.Request
	Owner   model.User
}

func (s *Service) Reject(ctx context.Context, input RejectInput) (RejectResult, error) {
	if s.repo == nil || s.users == nil {
		return RejectResult{}, fmt.Errorf("registration service is not configured")
	}
	if input.ActorTGID == 0 {
		return RejectResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.RequestID <= 0 {
		return RejectResult{}, fmt.Errorf("invalid request id")
	}

	ownerID, err := s.repo.Reject(ctx, input.RequestID, input.ActorTGID, input.Reason)
	if err != nil {
		return RejectResult{}, mapErr(err)
	}

	request, err := s.repo.GetByID(ctx, input.RequestID)
	if err != nil {
		return RejectResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return RejectResult{}, err
	}
	return RejectResult{Request: request, Owner: owner}, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgrepo.ErrRequestNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrAlreadyDecided):
		return ErrAlreadyDecided
	default:
		return err
	}
}
