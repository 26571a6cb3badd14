package ui

import "testing"

func TestPaginatePartialLastPage(t *testing.T) {
	page := Paginate(8, 7, 2)

	if page.MaxPage != 2 {
		t.Fatalf("expected max page 2, got %d", page.MaxPage)
	}
	if page.Start != 7 || page.End != 8 {
		t.Fatalf("expected window [7:8], got [%d:%d]", page.Start, page.End)
	}
}

func TestPaginateWrapAround(t *testing.T) {
	cases := []struct {
		requested int
		want      int
	}{
		{-1, 1},
		{0, 2},
		{1, 1},
		{2, 2},
		{3, 1},
		{14, 2},
	}

	for _, tc := range cases {
		page := Paginate(8, 7, tc.requested)
		if page.Index != tc.want {
			t.Fatalf("requested %d: expected page %d, got %d", tc.requested, tc.want, page.Index)
		}
	}
}

func TestPaginateEmptyListing(t *testing.T) {
	for _, requested := range []int{-3, 0, 1, 5} {
		page := Paginate(0, 20, requested)

		if page.Index != 1 || page.MaxPage != 1 {
			t.Fatalf("requested %d: expected single page, got index %d of %d", requested, page.Index, page.MaxPage)
		}
		if page.Start != 0 || page.End != 0 {
			t.Fatalf("requested %d: expected empty window, got [%d:%d]", requested, page.Start, page.End)
		}
	}
}

func TestPaginateExactFit(t *testing.T) {
	page := Paginate(40, 20, 2)

	if page.MaxPage != 2 {
		t.Fatalf("expected max page 2, got %d", page.MaxPage)
	}
	if page.Start != 20 || page.End != 40 {
		t.Fatalf("expected window [20:40], got [%d:%d]", page.Start, page.End)
	}
}
