package repository

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
}

// NormalizePage clamps a requested page and size into the accepted range.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset converts a 1-based page into a row offset.
func Offset(page, size int) int {
	page, size = NormalizePage(page, size)
	return (page - 1) * size
}

// NewPagination reports the requested page as is, even past the last one, so
// callers can tell an out of range page from a clamped one. LastPage is at least 1.
func NewPagination(total int64, page, size int) Pagination {
	page, size = NormalizePage(page, size)

	lastPage := int((total + int64(size) - 1) / int64(size))
	if lastPage < 1 {
		lastPage = 1
	}

	return Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PageSize:    size,
		Total:       total,
	}
}
