package query

// PageInfo is the pagination metadata computed from a total row count and
// the envelope's skip/take window.
type PageInfo struct {
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewPageInfo computes pagination metadata. A non-positive take means an
// unwindowed query: one page holding everything.
func NewPageInfo(total, skip, take int) PageInfo {
	if total < 0 {
		total = 0
	}
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		return PageInfo{
			Total:      total,
			Page:       1,
			PageSize:   total,
			TotalPages: 1,
		}
	}

	totalPages := (total + take - 1) / take
	if totalPages == 0 {
		totalPages = 1
	}
	page := skip/take + 1

	return PageInfo{
		Total:      total,
		Page:       page,
		PageSize:   take,
		TotalPages: totalPages,
		HasNext:    skip+take < total,
		HasPrev:    skip > 0,
	}
}
