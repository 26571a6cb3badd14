package ui

// Page is one window over an ordered listing. Index is 1-based.
type Page struct {
	Index   int
	MaxPage int
	Start   int
	End     int
	Total   int
}

// Paginate resolves a requested page against a listing of total items.
// Out-of-range requests wrap around, so "next" on the last page lands on
// the first and "prev" on the first lands on the last. An empty listing
// yields a single empty page.
func Paginate(total, pageSize, requested int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}

	maxPage := (total + pageSize - 1) / pageSize
	if maxPage < 1 {
		maxPage = 1
	}

	index := ((requested-1)%maxPage+maxPage)%maxPage + 1

	start := (index - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Index:   index,
		MaxPage: maxPage,
		Start:   start,
		End:     end,
		Total:   total,
	}
}
