package worklinks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
)

var (
	ErrNotFound       = errors.New("work link request not found")
	ErrAlreadyDecided = errors.New("work link request already decided")
)

type Repo interface {
	CreateRequest(context.Context, int64) (int64, error)
	GetRequest(context.Context, int64) (model.WorkLinkRequest, error)
	SetRequestMessageRef(context.Context, int64, model.MessageRef) error
	ApproveRequest(context.Context, int64, int64, string) (int64, error)
	RejectRequest(context.Context, int64, int64, string) (int64, error)
	ListByWorker(context.Context, int64) ([]model.WorkLink, error)
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
}

type SubmitResult struct {
	RequestID int64
	Owner     model.User
}

func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if s.repo == nil || s.users == nil {
		return SubmitResult{}, fmt.Errorf("work links service is not configured")
	}
	if input.TgID == 0 {
		return SubmitResult{}, fmt.Errorf("invalid tg id")
	}

	owner, err := s.users.GetOrCreate(ctx, input.TgID, input.Username)
	if err != nil {
		return SubmitResult{}, err
	}
	id, err := s.repo.CreateRequest(ctx, owner.ID)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{RequestID: id, Owner: owner}, nil
}

func (s *Service) AttachAnnouncement(ctx context.Context, requestID int64, ref model.MessageRef) error {
	if s.repo == nil {
		return ErrNotFound
	}
	return mapErr(s.repo.SetRequestMessageRef(ctx, requestID, ref))
}

func (s *Service) Get(ctx context.Context, requestID int64) (model.WorkLinkRequest, error) {
	if s.repo == nil {
		return model.WorkLinkRequest{}, ErrNotFound
	}
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return model.WorkLinkRequest{}, mapErr(err)
	}
	return request, nil
}

type ApproveInput struct {
	ActorTGID int64
	RequestID int64
	URL       string
}

type ApproveResult struct {
	Request model.WorkLinkRequest
	Owner   model.User
	URL     string
}

// Approve records the personal referral link the moderator issued and
// closes the request. The issued link row outlives the request.
func (s *Service) Approve(ctx context.Context, input ApproveInput) (ApproveResult, error) {
	if s.repo == nil || s.users == nil {
		return ApproveResult{}, fmt.Errorf("work links service is not configured")
	}
	if input.ActorTGID == 0 {
		return ApproveResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.RequestID <= 0 {
		return ApproveResult{}, fmt.Errorf("invalid request id")
	}
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return ApproveResult{}, fmt.Errorf("empty work link url")
	}

	ownerID, err := s.repo.ApproveRequest(ctx, input.RequestID, input.ActorTGID, url)
	if err != nil {
		return ApproveResult{}, mapErr(err)
	}

	request, err := s.repo.GetRequest(ctx, input.RequestID)
	if err != nil {
		return ApproveResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return ApproveResult{}, err
	}
	return ApproveResult{Request: request, Owner: owner, URL: url}, nil
}

type RejectInput struct {
	ActorTGID int64
	RequestID int64
	Reason    string
}

type RejectResult struct {
	Request model.WorkLinkRequest
	Owner   model.User
}

func (s *Service) Reject(ctx context.Context, input RejectInput) (RejectResult, error) {
	if s.repo == nil || s.users == nil {
		return RejectResult{}, fmt.Errorf("work links service is not configured")
	}
	if input.ActorTGID == 0 {
		return RejectResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.RequestID <= 0 {
		return RejectResult{}, fmt.Errorf("invalid request id")
	}

	ownerID, err := s.repo.RejectRequest(ctx, input.RequestID, input.ActorTGID, input.Reason)
	if err != nil {
		return RejectResult{}, mapErr(err)
	}

	request, err := s.repo.GetRequest(ctx, input.RequestID)
	if err != nil {
		return RejectResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return RejectResult{}, err
	}
	return RejectResult{Request: request, Owner: owner}, nil
}

func (s *Service) ListIssued(ctx context.Context, workerID int64) ([]model.WorkLink, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("work links service is not configured")
	}
	return s.repo.ListByWorker(ctx, workerID)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgrepo.ErrWorkLinkRequestNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrAlreadyDecided):
		return ErrAlreadyDecided
	default:
		return err
	}
}
