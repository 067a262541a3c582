package pagination

import (
	"math"
	"net/url"
	"strconv"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, Limit: 10}},
		{"explicit", "page=3&limit=25&sort=asc", Params{Page: 3, Limit: 25, Ascending: true}},
		{"non numeric", "page=abc&limit=x", Params{Page: 1, Limit: 10}},
		{"zero", "page=0&limit=0", Params{Page: 1, Limit: 10}},
		{"negative", "page=-2&limit=-5", Params{Page: 1, Limit: 10}},
		{"sort case sensitive", "sort=ASC", Params{Page: 1, Limit: 10}},
		{"sort other", "sort=desc", Params{Page: 1, Limit: 10}},
		{"include raw", "include=Courses,Foo", Params{Page: 1, Limit: 10, Include: "Courses,Foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := Parse(q); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOffsetAndQuery(t *testing.T) {
	p := Params{Page: 4, Limit: 7, Ascending: true}
	if p.Offset() != 21 {
		t.Errorf("offset: got %d", p.Offset())
	}
	q := p.Query([]string{"Courses"})
	if q.Limit != 7 || q.Offset != 21 || !q.Ascending || len(q.Preloads) != 1 {
		t.Errorf("query: got %+v", q)
	}
}

func TestOffsetSaturates(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int
	}{
		{"first page", Params{Page: 1, Limit: math.MaxInt}, 0},
		{"second page of max limit", Params{Page: 2, Limit: math.MaxInt}, math.MaxInt},
		{"third page of max limit", Params{Page: 3, Limit: math.MaxInt}, math.MaxInt},
		{"huge page", Params{Page: math.MaxInt, Limit: 10}, math.MaxInt},
		{"zero value", Params{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Offset(); got != tt.want {
				t.Errorf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHugeLimitMeta(t *testing.T) {
	q := url.Values{"limit": {strconv.Itoa(math.MaxInt)}, "page": {"3"}}
	p := Parse(q)
	if p.Limit != math.MaxInt || p.Page != 3 {
		t.Fatalf("parse: got %+v", p)
	}
	if p.Offset() < 0 {
		t.Errorf("offset went negative: %d", p.Offset())
	}
	m := NewMeta(p, 2)
	if m.TotalPages != 1 || m.CurrentPage != 3 || m.ItemsPerPage != math.MaxInt {
		t.Errorf("meta: got %+v", m)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{26, 5, 6},
		{2, math.MaxInt, 1},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MaxInt64, 10, math.MaxInt64/10 + 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Params{Page: 2, Limit: 3}, 7)
	want := Meta{TotalItems: 7, TotalPages: 3, CurrentPage: 2, ItemsPerPage: 3, SortOrder: "desc", IncludedRelations: "none"}
	if m != want {
		t.Errorf("got %+v, want %+v", m, want)
	}

	m = NewMeta(Params{Page: 1, Limit: 10, Ascending: true, Include: "Bogus"}, 0)
	if m.IncludedRelations != "Bogus" || m.SortOrder != "asc" {
		t.Errorf("got %+v", m)
	}
}

func TestIncludeNames(t *testing.T) {
	p := Params{Include: "Courses, Teacher,,Courses"}
	want := []string{"Courses", "Teacher", "Courses"}
	if got := p.IncludeNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := (Params{}).IncludeNames(); got != nil {
		t.Errorf("empty include: got %v", got)
	}
}
