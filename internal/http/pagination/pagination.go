// Package pagination turns list query parameters into a storage query and
// builds the meta block of the list envelope.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/aanand-mishra/school-api/internal/storage"
)

const (
	DefaultLimit = 10
	DefaultPage  = 1

	SortAsc  = "asc"
	SortDesc = "desc"

	// NoRelations is echoed in meta when the include parameter is empty.
	NoRelations = "none"
)

// Params are the parsed list query parameters.
type Params struct {
	Page      int
	Limit     int
	Ascending bool
	// Include is the raw include parameter, echoed back unmodified.
	Include string
}

// Parse reads page, limit, sort and include. Values that are not
// positive integers fall back to the defaults; any sort other than "asc"
// means descending.
func Parse(q url.Values) Params {
	return Params{
		Page:      positiveInt(q.Get("page"), DefaultPage),
		Limit:     positiveInt(q.Get("limit"), DefaultLimit),
		Ascending: q.Get("sort") == SortAsc,
		Include:   q.Get("include"),
	}
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt, which no table reaches, so a page past the end is empty.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

func (p Params) SortOrder() string {
	if p.Ascending {
		return SortAsc
	}
	return SortDesc
}

// Query builds the storage query for this page with the given preloads.
func (p Params) Query(preloads []string) storage.ListQuery {
	return storage.ListQuery{
		Limit:     p.Limit,
		Offset:    p.Offset(),
		Ascending: p.Ascending,
		Preloads:  preloads,
	}
}

// IncludeNames splits the include parameter on commas. Order and
// duplicates are kept; surrounding blanks are dropped.
func (p Params) IncludeNames() []string {
	if p.Include == "" {
		return nil
	}
	parts := strings.Split(p.Include, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Meta describes the page returned in an Envelope.
type Meta struct {
	TotalItems        int64  `json:"totalItems"`
	TotalPages        int64  `json:"totalPages"`
	CurrentPage       int    `json:"currentPage"`
	ItemsPerPage      int    `json:"itemsPerPage"`
	SortOrder         string `json:"sortOrder"`
	IncludedRelations string `json:"includedRelations"`
}

// Envelope is the {meta, data} wrapper returned by list endpoints.
type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data []T  `json:"data"`
}

func NewMeta(p Params, total int64) Meta {
	included := p.Include
	if included == "" {
		included = NoRelations
	}
	return Meta{
		TotalItems:        total,
		TotalPages:        TotalPages(total, p.Limit),
		CurrentPage:       p.Page,
		ItemsPerPage:      p.Limit,
		SortOrder:         p.SortOrder(),
		IncludedRelations: included,
	}
}

// TotalPages is ceil(total/limit) for any positive limit.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	n := total / l
	if total%l != 0 {
		n++
	}
	return n
}
