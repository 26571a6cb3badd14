package links

import (
	"context"
	"errors"
	"testing"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/enums"
	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	pgrepo "github.com/Maniackaa/Bot-seller-link-2/internal/repo/postgres"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	nextID int64
	links  map[int64]*model.Link
	byURL  map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		links: make(map[int64]*model.Link),
		byURL: make(map[string]int64),
	}
}

func (r *fakeRepo) Create(_ context.Context, ownerID int64, url string, platform enums.Platform) (int64, error) {
	if _, ok := r.byURL[url]; ok {
		return 0, pgrepo.ErrDuplicateLink
	}
	r.nextID++
	r.links[r.nextID] = &model.Link{
		ID:      r.nextID,
		OwnerID: ownerID,
		URL:     url,
		Type:    platform,
		Status:  enums.LinkStatusCreated,
	}
	r.byURL[url] = r.nextID
	return r.nextID, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (model.Link, error) {
	link, ok := r.links[id]
	if !ok {
		return model.Link{}, pgrepo.ErrLinkNotFound
	}
	return *link, nil
}

func (r *fakeRepo) MarkModerate(_ context.Context, id int64, ref model.MessageRef) error {
	link, ok := r.links[id]
	if !ok {
		return pgrepo.ErrLinkNotFound
	}
	if link.Status != enums.LinkStatusCreated {
		return pgrepo.ErrAlreadyDecided
	}
	link.Status = enums.LinkStatusModerate
	link.GroupMsg = ref
	return nil
}

func (r *fakeRepo) ConfirmWithCost(_ context.Context, id, moderatorID, cost int64) (int64, int64, error) {
	link, ok := r.links[id]
	if !ok {
		return 0, 0, pgrepo.ErrLinkNotFound
	}
	if link.Cost != 0 {
		return 0, 0, pgrepo.ErrCostAlreadySet
	}
	if link.Status.IsTerminal() {
		return 0, 0, pgrepo.ErrAlreadyDecided
	}
	link.Status = enums.LinkStatusConfirmed
	link.ModeratorID = moderatorID
	link.Cost = cost
	return link.OwnerID, cost, nil
}

func (r *fakeRepo) SetViews(_ context.Context, id, moderatorID, viewCount, cost int64) (int64, int64, error) {
	link, ok := r.links[id]
	if !ok {
		return 0, 0, pgrepo.ErrLinkNotFound
	}
	if link.Cost != 0 || link.ViewCount != 0 {
		return 0, 0, pgrepo.ErrCostAlreadySet
	}
	if link.Status.IsTerminal() {
		return 0, 0, pgrepo.ErrAlreadyDecided
	}
	link.Status = enums.LinkStatusConfirmed
	link.ModeratorID = moderatorID
	link.ViewCount = viewCount
	link.Cost = cost
	return link.OwnerID, cost, nil
}

func (r *fakeRepo) Reject(_ context.Context, id, moderatorID int64) error {
	link, ok := r.links[id]
	if !ok {
		return pgrepo.ErrLinkNotFound
	}
	if link.Status != enums.LinkStatusModerate {
		return pgrepo.ErrAlreadyDecided
	}
	link.Status = enums.LinkStatusRejected
	link.ModeratorID = moderatorID
	return nil
}

func (r *fakeRepo) List(_ context.Context, filter pgrepo.ListFilter) ([]model.Link, error) {
	result := make([]model.Link, 0)
	for _, link := range r.links {
		if filter.OwnerID != 0 && link.OwnerID != filter.OwnerID {
			continue
		}
		if filter.UnpricedOnly && link.Cost != 0 {
			continue
		}
		result = append(result, *link)
	}
	return result, nil
}

func (r *fakeRepo) SumCostByOwner(_ context.Context, ownerID int64) (int64, error) {
	var total int64
	for _, link := range r.links {
		if link.OwnerID == ownerID {
			total += link.Cost
		}
	}
	return total, nil
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
	user := model.User{ID: int64(len(u.users) + 1), TgID: tgID, Username: username, IsActive: true}
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

func newService(t *testing.T) (*Service, *fakeRepo, *fakeUsers) {
	t.Helper()
	repo := newFakeRepo()
	users := &fakeUsers{users: map[int64]model.User{
		1: {ID: 1, TgID: 100, Username: "master", IsActive: true, CPM: decimal.RequireFromString("1.5")},
	}}
	return NewService(repo, users), repo, users
}

func TestSubmitDetectsPlatform(t *testing.T) {
	service, _, _ := newService(t)

	result, err := service.Submit(context.Background(), SubmitInput{
		TgID: 100,
		URL:  "https://www.youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Platform != enums.PlatformYouTube {
		t.Fatalf("expected youtube, got %s", result.Platform)
	}
}

func TestSubmitRejectsUnknownAddress(t *testing.T) {
	service, _, _ := newService(t)

	for _, url := range []string{"", "youtube.com/watch", "https://example.com/video"} {
		_, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: url})
		if !errors.Is(err, ErrUnsupportedAddress) {
			t.Fatalf("url %q: expected ErrUnsupportedAddress, got %v", url, err)
		}
	}
}

func TestSubmitDuplicate(t *testing.T) {
	service, _, _ := newService(t)

	url := "https://www.tiktok.com/@u/video/1"
	if _, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: url}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: url})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestConfirmCreditsOnce(t *testing.T) {
	service, repo, _ := newService(t)

	result, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: "https://instagram.com/p/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.AttachAnnouncement(context.Background(), result.LinkID, model.MessageRef{ChatID: -1, MessageID: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confirmed, err := service.Confirm(context.Background(), ConfirmInput{ActorTGID: 555, LinkID: result.LinkID, Cost: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Link.Cost != 70 || confirmed.Link.Status != enums.LinkStatusConfirmed {
		t.Fatalf("unexpected link state: %+v", confirmed.Link)
	}

	_, err = service.Confirm(context.Background(), ConfirmInput{ActorTGID: 555, LinkID: result.LinkID, Cost: 70})
	if !errors.Is(err, ErrCostAlreadySet) {
		t.Fatalf("expected ErrCostAlreadySet on repeat, got %v", err)
	}
	if repo.links[result.LinkID].Cost != 70 {
		t.Fatalf("repeat confirm changed cost to %d", repo.links[result.LinkID].Cost)
	}
}

func TestConfirmAcceptsUnannouncedLink(t *testing.T) {
	service, repo, _ := newService(t)

	result, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: "https://instagram.com/p/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.links[result.LinkID].Status != enums.LinkStatusCreated {
		t.Fatalf("unexpected status before confirm: %s", repo.links[result.LinkID].Status)
	}

	confirmed, err := service.Confirm(context.Background(), ConfirmInput{ActorTGID: 555, LinkID: result.LinkID, Cost: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Link.Cost != 40 || confirmed.Link.Status != enums.LinkStatusConfirmed {
		t.Fatalf("unexpected link state: %+v", confirmed.Link)
	}
}

func TestSetViewsUsesOwnerCPM(t *testing.T) {
	service, repo, _ := newService(t)

	result, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: "https://youtu.be/abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.AttachAnnouncement(context.Background(), result.LinkID, model.MessageRef{ChatID: -1, MessageID: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	viewsResult, err := service.SetViews(context.Background(), SetViewsInput{ActorTGID: 555, LinkID: result.LinkID, ViewCount: 47000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 47000 / 1000 * 1.5 = 70.5, truncated.
	if viewsResult.Cost != 70 {
		t.Fatalf("expected cost 70, got %d", viewsResult.Cost)
	}
	if repo.links[result.LinkID].ViewCount != 47000 {
		t.Fatalf("view count not stored")
	}
}

func TestSetViewsRefusedAfterConfirm(t *testing.T) {
	service, _, _ := newService(t)

	result, err := service.Submit(context.Background(), SubmitInput{TgID: 100, URL: "https://youtube.com/watch?v=x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.AttachAnnouncement(context.Background(), result.LinkID, model.MessageRef{ChatID: -1, MessageID: 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Confirm(context.Background(), ConfirmInput{ActorTGID: 555, LinkID: result.LinkID, Cost: 30}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = service.SetViews(context.Background(), SetViewsInput{ActorTGID: 555, LinkID: result.LinkID, ViewCount: 1000})
	if !errors.Is(err, ErrCostAlreadySet) {
		t.Fatalf("expected ErrCostAlreadySet, got %v", err)
	}
}

func TestCostForViewsTruncates(t *testing.T) {
	cases := []struct {
		views int64
		cpm   string
		want  int64
	}{
		{1000, "1.5", 1},
		{47000, "1.5", 70},
		{999, "1.0", 0},
		{2500, "2.0", 5},
		{0, "1.5", 0},
	}

	for _, tc := range cases {
		got := CostForViews(tc.views, decimal.RequireFromString(tc.cpm))
		if got != tc.want {
			t.Fatalf("views %d cpm %s: expected %d, got %d", tc.views, tc.cpm, tc.want, got)
		}
	}
}
