package domain

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// HasPrev reports whether a previous page exists.
func (m PageMeta) HasPrev() bool { return m.Page > 1 }

// HasNext reports whether a next page exists.
func (m PageMeta) HasNext() bool { return m.Page < m.TotalPages }

// Paginate returns the requested page of items. page is clamped into
// [1, TotalPages] and TotalPages is at least 1, so an empty listing is a
// single empty page.
func Paginate[T any](items []T, page, size int) ([]T, PageMeta) {
	if size < 1 {
		size = 1
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return items[start:end], PageMeta{Page: page, TotalPages: totalPages, Total: total}
}
