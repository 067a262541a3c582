package teacher

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"

	"github.com/aanand-mishra/school-api/internal/storage/gormstore"
)

func TestPreloads(t *testing.T) {
	tests := []struct {
		names []string
		want  []string
	}{
		{nil, nil},
		{[]string{"Courses"}, []string{"Courses"}},
		{[]string{"Students"}, []string{"Courses.Students"}},
		{[]string{"Teacher", "students"}, nil},
		{[]string{"Students", "Students"}, []string{"Courses.Students", "Courses.Students"}},
	}
	for _, tt := range tests {
		if got := Preloads(tt.names); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Preloads(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestPathPanicsOnUnknownRelation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	_ = Relation(42).Path()
}

func TestRoutes(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := gormstore.Open(sqlite.Open(dsn), zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r := chi.NewRouter()
	r.Route("/teachers", Routes(st))

	var got []string
	err = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got = append(got, method+" "+strings.TrimSuffix(route, "/"))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /teachers/{id}",
		"GET /teachers",
		"GET /teachers/{id}",
		"POST /teachers",
		"PUT /teachers/{id}",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("routes: got %v, want %v", got, want)
	}
}
