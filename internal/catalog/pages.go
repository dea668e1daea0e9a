package catalog

// maxVisiblePages is the width of the numbered window in the pagination bar.
const maxVisiblePages = 5

// PageLink is one entry of the pagination bar: a page number or a gap.
type PageLink struct {
	Number   int
	Ellipsis bool
	Current  bool
}

// PageWindow lists the pagination entries for current out of total pages.
// Up to five pages are all shown. Past that a five page window around current
// is shown, shifted to stay in range, and the first and last pages are pinned
// with an ellipsis wherever pages are skipped.
func PageWindow(current, total int) []PageLink {
	if total < 1 {
		return nil
	}
	current = max(1, min(current, total))

	link := func(n int) PageLink { return PageLink{Number: n, Current: n == current} }

	if total <= maxVisiblePages {
		out := make([]PageLink, 0, total)
		for n := 1; n <= total; n++ {
			out = append(out, link(n))
		}
		return out
	}

	start := max(1, min(current-2, total-maxVisiblePages+1))
	end := start + maxVisiblePages - 1

	out := make([]PageLink, 0, maxVisiblePages+4)
	if start > 1 {
		out = append(out, link(1))
		if start > 2 {
			out = append(out, PageLink{Ellipsis: true})
		}
	}
	for n := start; n <= end; n++ {
		out = append(out, link(n))
	}
	if end < total {
		if end < total-1 {
			out = append(out, PageLink{Ellipsis: true})
		}
		out = append(out, link(total))
	}
	return out
}

// PageInfo returns the 1-based positions of the first and last item shown on
// page, for a "Showing X-Y of Z" line. Both are 0 when the page is empty.
func PageInfo(page, pageSize, totalItems int) (startItem, endItem int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if totalItems < 1 || page > (totalItems+pageSize-1)/pageSize {
		return 0, 0
	}
	startItem = (page-1)*pageSize + 1
	return startItem, min(page*pageSize, totalItems)
}
