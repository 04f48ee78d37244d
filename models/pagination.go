package models

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Pagination is a 1-based page window.
type Pagination struct {
	Page    int
	PerPage int
}

// Offset is the number of rows skipped before the window.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
