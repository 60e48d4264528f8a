package util

const (
	DefaultPage = 1
	DefaultSize = 15
	MaxSize     = 1000
)

// Calculate turns a 1-based page and a page size into offset and limit.
// Callers validate the bounds; out-of-range input falls back to defaults.
func Calculate(page, size int) (offset int, limit int) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 || size > MaxSize {
		size = DefaultSize
	}
	offset = (page - 1) * size
	limit = size
	return offset, limit
}
