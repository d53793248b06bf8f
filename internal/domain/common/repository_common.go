// internal/domain/common/repository_common.go
package common

// SortOrder はソート順
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder は "asc" 以外をすべて desc として扱う。
func ParseSortOrder(s string) SortOrder {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

// Sort はソート指定の共通表現
type Sort struct {
	Column string    // 各ドメイン側で許可カラムをバリデート
	Order  SortOrder // 昇順/降順
}

// Page はオフセットページング指定
type Page struct {
	Number  int // 1-based
	PerPage int
}

// PageResult はページング結果
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}

// HasNext reports whether a later page exists.
func (r PageResult[T]) HasNext() bool { return r.Page < r.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (r PageResult[T]) HasPrevious() bool { return r.Page > 1 }

// MaxPerPage is the upper bound for every paginated listing.
const MaxPerPage = 100

// NormalizePage clamps the page number to >= 1 and perPage to [1, maxPerPage].
func NormalizePage(p Page, maxPerPage int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if maxPerPage > 0 && p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// ComputeTotalPages は合計件数と1ページあたり件数から総ページ数を計算します。
func ComputeTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Paginate slices items to the requested page. A page past the end yields an empty slice.
func Paginate[T any](items []T, p Page) PageResult[T] {
	p = NormalizePage(p, MaxPerPage)

	total := len(items)
	start := (p.Number - 1) * p.PerPage
	end := start + p.PerPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	return PageResult[T]{
		Items:      out,
		TotalCount: total,
		TotalPages: ComputeTotalPages(total, p.PerPage),
		Page:       p.Number,
		PerPage:    p.PerPage,
	}
}
