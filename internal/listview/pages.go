package listview

import (
	"strconv"
	"strings"
)

// PageItem is one entry of a pagination control: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// Ellipsis is the gap marker of a pagination control.
var Ellipsis = PageItem{Ellipsis: true}

// P returns the item of page n.
func P(n int) PageItem { return PageItem{Page: n} }

func (p PageItem) String() string {
	if p.Ellipsis {
		return "ellipsis"
	}
	return strconv.Itoa(p.Page)
}

// windowLimit is the largest page count shown without ellipses.
const windowLimit = 7

// GetPages returns the pagination control for the given page count and current page:
//
//	totalPages <= 7             every page
//	current <= 3                1 2 3 … n-1 n
//	current >= totalPages-2     1 2 … n-2 n-1 n
//	otherwise                   1 2 … current … n-1 n
func GetPages(totalPages, current int) []PageItem {
	if totalPages <= 0 {
		return nil
	}
	if totalPages <= windowLimit {
		items := make([]PageItem, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			items = append(items, P(i))
		}
		return items
	}
	switch {
	case current <= 3:
		return []PageItem{P(1), P(2), P(3), Ellipsis, P(totalPages - 1), P(totalPages)}
	case current >= totalPages-2:
		return []PageItem{P(1), P(2), Ellipsis, P(totalPages - 2), P(totalPages - 1), P(totalPages)}
	default:
		return []PageItem{P(1), P(2), Ellipsis, P(current), Ellipsis, P(totalPages - 1), P(totalPages)}
	}
}

// ClampPage clamps a jump-to-page input into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	switch {
	case page < 1:
		return 1
	case page > totalPages:
		return totalPages
	}
	return page
}

// ParseJump parses free text from a jump-to-page input. ok is false when the
// text is not a number; numbers are clamped.
func ParseJump(text string, totalPages int) (page int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return ClampPage(n, totalPages), true
}

// TotalPages returns the number of pages for total rows; never less than 1.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
