package pagination

const (
	// DefaultPage is the first page served when none is requested.
	DefaultPage = 1
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many rows any single page can carry.
	MaxPageSize = 100
)

// Params holds page/size pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces defaults and the maximum page size.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the zero-based slice offset for the normalized params.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages computes the page count for a total row count.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Slice returns the [start, end) bounds of the page within a ranked list
// of length total. Pages past the end collapse to an empty interval.
func Slice(p Params, total int) (int, int) {
	start := p.Offset()
	if start >= total {
		return total, total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}
