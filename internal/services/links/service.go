package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("link not found")
	ErrAlreadyDecided     = errors.New("link already decided")
	ErrDuplicate          = errors.New("link already submitted")
	ErrCostAlreadySet     = errors.New("link cost already set")
	ErrUnsupportedAddress = errors.New("unsupported link address")
)

const viewsPerCostUnit = 1000

type Repo interface {
	Create(context.Context, int64, string, enums.Platform) (int64, error)
	GetByID(context.Context, int64) (model.Link, error)
	MarkModerate(context.Context, int64, model.MessageRef) error
	ConfirmWithCost(context.Context, int64, int64, int64) (int64, int64, error)
	SetViews(context.Context, int64, int64, int64, int64) (int64, int64, error)
	Reject(context.Context, int64, int64) error
	List(context.Context, pgrepo.ListFilter) ([]model.Link, error)
	SumCostByOwner(context.Context, int64) (int64, error)
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
	URL      string
}

type SubmitResult struct {
	LinkID   int64
	Owner    model.User
	URL      string
	Platform enums.Platform
}

// Submit validates the address against the supported platforms and stores
// the link in the created state. A repeated address is refused, the link
// table keeps one row per URL forever.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if s.repo == nil || s.users == nil {
		return SubmitResult{}, fmt.Errorf("links service is not configured")
	}
	if input.TgID == 0 {
		return SubmitResult{}, fmt.Errorf("invalid tg id")
	}

	url := strings.TrimSpace(input.URL)
	platform, ok := enums.DetectPlatform(url)
	if !ok {
		return SubmitResult{}, ErrUnsupportedAddress
	}

	owner, err := s.users.GetOrCreate(ctx, input.TgID, input.Username)
	if err != nil {
		return SubmitResult{}, err
	}

	id, err := s.repo.Create(ctx, owner.ID, url, platform)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicateLink) {
			return SubmitResult{}, ErrDuplicate
		}
		return SubmitResult{}, err
	}
	return SubmitResult{LinkID: id, Owner: owner, URL: url, Platform: platform}, nil
}

// AttachAnnouncement moves the link into moderation once the group post
// exists, so a decision always has an announcement to edit.
func (s *Service) AttachAnnouncement(ctx context.Context, linkID int64, ref model.MessageRef) error {
	if s.repo == nil {
		return ErrNotFound
	}
	return mapErr(s.repo.MarkModerate(ctx, linkID, ref))
}

func (s *Service) Get(ctx context.Context, linkID int64) (model.Link, error) {
	if s.repo == nil {
		return model.Link{}, ErrNotFound
	}
	link, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		return model.Link{}, mapErr(err)
	}
	return link, nil
}

type ConfirmInput struct {
	ActorTGID int64
	LinkID    int64
	Cost      int64
}

type ConfirmResult struct {
	Link       model.Link
	Owner      model.User
	NewBalance int64
}

// Confirm is the flat-cost path. The moderator enters the payment amount
// directly and the owner is credited with it once.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (ConfirmResult, error) {
	if s.repo == nil || s.users == nil {
		return ConfirmResult{}, fmt.Errorf("links service is not configured")
	}
	if input.ActorTGID == 0 {
		return ConfirmResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.LinkID <= 0 {
		return ConfirmResult{}, fmt.Errorf("invalid link id")
	}
	if input.Cost <= 0 {
		return ConfirmResult{}, fmt.Errorf("invalid link cost")
	}

	ownerID, newBalance, err := s.repo.ConfirmWithCost(ctx, input.LinkID, input.ActorTGID, input.Cost)
	if err != nil {
		return ConfirmResult{}, mapErr(err)
	}
	return s.confirmResult(ctx, input.LinkID, ownerID, newBalance)
}

type SetViewsInput struct {
	ActorTGID int64
	LinkID    int64
	ViewCount int64
}

type SetViewsResult struct {
	Link       model.Link
	Owner      model.User
	Cost       int64
	NewBalance int64
}

// SetViews is the view-based path. The cost is the owner's CPM applied
// per thousand views, truncated to whole units. Either path may price a
// link, never both.
func (s *Service) SetViews(ctx context.Context, input SetViewsInput) (SetViewsResult, error) {
	if s.repo == nil || s.users == nil {
		return SetViewsResult{}, fmt.Errorf("links service is not configured")
	}
	if input.ActorTGID == 0 {
		return SetViewsResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.LinkID <= 0 {
		return SetViewsResult{}, fmt.Errorf("invalid link id")
	}
	if input.ViewCount <= 0 {
		return SetViewsResult{}, fmt.Errorf("invalid view count")
	}

	link, err := s.repo.GetByID(ctx, input.LinkID)
	if err != nil {
		return SetViewsResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, link.OwnerID)
	if err != nil {
		return SetViewsResult{}, err
	}

	cost := CostForViews(input.ViewCount, owner.CPM)
	ownerID, newBalance, err := s.repo.SetViews(ctx, input.LinkID, input.ActorTGID, input.ViewCount, cost)
	if err != nil {
		return SetViewsResult{}, mapErr(err)
	}

	updated, err := s.repo.GetByID(ctx, input.LinkID)
	if err != nil {
		return SetViewsResult{}, mapErr(err)
	}
	owner, err = s.users.GetByID(ctx, ownerID)
	if err != nil {
		return SetViewsResult{}, err
	}
	return SetViewsResult{Link: updated, Owner: owner, Cost: cost, NewBalance: newBalance}, nil
}

type RejectInput struct {
	ActorTGID int64
	LinkID    int64
}

type RejectResult struct {
	Link  model.Link
	Owner model.User
}

func (s *Service) Reject(ctx context.Context, input RejectInput) (RejectResult, error) {
	if s.repo == nil || s.users == nil {
		return RejectResult{}, fmt.Errorf("links service is not configured")
	}
	if input.ActorTGID == 0 {
		return RejectResult{}, fmt.Errorf("invalid actor tg id")
	}
	if input.LinkID <= 0 {
		return RejectResult{}, fmt.Errorf("invalid link id")
	}

	if err := s.repo.Reject(ctx, input.LinkID, input.ActorTGID); err != nil {
		return RejectResult{}, mapErr(err)
	}

	link, err := s.repo.GetByID(ctx, input.LinkID)
	if err != nil {
		return RejectResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, link.OwnerID)
	if err != nil {
		return RejectResult{}, err
	}
	return RejectResult{Link: link, Owner: owner}, nil
}

// Period narrows link listings by submission age.
type Period string

const (
	PeriodWeek      Period = "week"
	PeriodTwoWeeks  Period = "two_weeks"
	PeriodOlderWeek Period = "older_two_weeks"
	PeriodMonth     Period = "month"
	PeriodAll       Period = "all"
)

// ListUnpriced returns the links of one owner that still wait for a view
// count, narrowed to the requested period.
func (s *Service) ListUnpriced(ctx context.Context, ownerID int64, period Period, now time.Time) ([]model.Link, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("links service is not configured")
	}

	filter := pgrepo.ListFilter{OwnerID: ownerID, UnpricedOnly: true}
	switch period {
	case PeriodWeek:
		filter.Since = now.AddDate(0, 0, -7)
	case PeriodTwoWeeks:
		filter.Since = now.AddDate(0, 0, -14)
	case PeriodOlderWeek:
		filter.Before = now.AddDate(0, 0, -14)
	case PeriodMonth:
		filter.Since = now.AddDate(0, -1, 0)
	case PeriodAll:
	default:
		return nil, fmt.Errorf("unsupported listing period")
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]model.Link, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("links service is not configured")
	}
	return s.repo.List(ctx, pgrepo.ListFilter{OwnerID: ownerID})
}

// TotalEarned returns the all-time confirmed amount of one owner.
func (s *Service) TotalEarned(ctx context.Context, ownerID int64) (int64, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("links service is not configured")
	}
	return s.repo.SumCostByOwner(ctx, ownerID)
}

// CostForViews applies the CPM rate per thousand views and truncates the
// result to whole units.
func CostForViews(viewCount int64, cpm decimal.Decimal) int64 {
	if viewCount <= 0 {
		return 0
	}
	return decimal.NewFromInt(viewCount).
		Div(decimal.NewFromInt(viewsPerCostUnit)).
		Mul(cpm).
		IntPart()
}

func (s *Service) confirmResult(ctx context.Context, linkID, ownerID, newBalance int64) (ConfirmResult, error) {
	link, err := s.repo.GetByID(ctx, linkID)
	if err != nil {
		return ConfirmResult{}, mapErr(err)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Link: link, Owner: owner, NewBalance: newBalance}, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgrepo.ErrLinkNotFound):
		return ErrNotFound
	case errors.Is(err, pgrepo.ErrCostAlreadySet):
		return ErrCostAlreadySet
	case errors.Is(err, pgrepo.ErrAlreadyDecided):
		return ErrAlreadyDecided
	default:
		return err
	}
}
