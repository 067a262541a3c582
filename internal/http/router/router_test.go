package router_test

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/http/pagination"
	"github.com/aanand-mishra/school-api/internal/http/router"
	"github.com/aanand-mishra/school-api/internal/storage/gormstore"
	"github.com/aanand-mishra/school-api/internal/types"
)

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newClient(t *testing.T, burst int) *client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	log := zerolog.New(io.Discard)
	st, err := gormstore.Open(sqlite.Open(dsn), log)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	limiter := middleware.NewRateLimiter(0.001, burst)
	t.Cleanup(func() {
		limiter.Stop()
		st.Close()
	})

	h := router.New(router.Deps{
		Store:          st,
		Issuer:         auth.NewIssuer("router-test-secret-0123", time.Hour),
		Limiter:        limiter,
		Log:            log,
		AllowedOrigins: []string{"*"},
	})
	return &client{t: t, h: h}
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func (c *client) login() {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/auth/register", `{"name":"Admin","email":"admin@school.test","password":"s3cret-pass"}`)
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("register: %d %s", rec.Code, rec.Body)
	}
	rec = c.do(http.MethodPost, "/auth/login", `{"email":"admin@school.test","password":"s3cret-pass"}`)
	if rec.Code != http.StatusOK {
		c.t.Fatalf("login: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&body)
	c.token = body.Token
}

func TestPublicRoutes(t *testing.T) {
	c := newClient(t, 10)

	rec := c.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != router.Welcome {
		t.Errorf("welcome: %d %q", rec.Code, rec.Body)
	}

	rec = c.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("health: %d %s", rec.Code, rec.Body)
	}

	rec = c.do(http.MethodGet, "/docs/doc.json", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"/students/{id}"`) {
		t.Errorf("docs: %d", rec.Code)
	}

	rec = c.do(http.MethodGet, "/docs", "")
	if rec.Code != http.StatusMovedPermanently {
		t.Errorf("docs redirect: %d", rec.Code)
	}
}

func TestResourcesRequireToken(t *testing.T) {
	c := newClient(t, 10)

	for _, path := range []string{"/students", "/teachers", "/courses", "/students/1"} {
		rec := c.do(http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without header: %d", path, rec.Code)
		}
	}

	c.token = "not-a-jwt"
	rec := c.do(http.MethodGet, "/students", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("bad token: %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Invalid or expired token"}` {
		t.Errorf("bad token body: %s", got)
	}
}

func TestStudentLifecycle(t *testing.T) {
	c := newClient(t, 10)
	c.login()

	rec := c.do(http.MethodPost, "/students", `{"name":"Ada","courses":[{"title":"Unsaved"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"courses":[]`) {
		t.Errorf("create should answer with the stored row: %s", body)
	}
	var ada types.Student
	_ = json.NewDecoder(rec.Body).Decode(&ada)
	if ada.ID == 0 || ada.Name != "Ada" {
		t.Fatalf("created: %+v", ada)
	}

	path := fmt.Sprintf("/students/%d", ada.ID)
	rec = c.do(http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"courses":[]`) {
		t.Errorf("a student without courses should list none: %s", body)
	}
	var got types.Student
	_ = json.NewDecoder(rec.Body).Decode(&got)
	if got.Name != "Ada" {
		t.Errorf("get: %+v", got)
	}

	rec = c.do(http.MethodPut, path, `{"name":"Ada Lovelace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d", rec.Code)
	}

	rec = c.do(http.MethodDelete, path, "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"message":"Deleted"}` {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body)
	}

	rec = c.do(http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound || strings.TrimSpace(rec.Body.String()) != `{"message":"Not found"}` {
		t.Errorf("after delete: %d %s", rec.Code, rec.Body)
	}
}

func TestListPaginationAndSort(t *testing.T) {
	c := newClient(t, 10)
	c.login()

	for i := 1; i <= 25; i++ {
		rec := c.do(http.MethodPost, "/teachers", fmt.Sprintf(`{"name":"T%02d","department":"Math"}`, i))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: %d", i, rec.Code)
		}
	}

	list := func(query string) pagination.Envelope[types.Teacher] {
		t.Helper()
		rec := c.do(http.MethodGet, "/teachers"+query, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list %s: %d", query, rec.Code)
		}
		var env pagination.Envelope[types.Teacher]
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatal(err)
		}
		return env
	}

	env := list("?limit=10&page=3")
	if env.Meta.TotalItems != 25 || env.Meta.TotalPages != 3 || len(env.Data) != 5 {
		t.Errorf("page 3: %+v, %d items", env.Meta, len(env.Data))
	}
	if env.Meta.SortOrder != "desc" || env.Data[0].Name != "T05" {
		t.Errorf("desc order: %s first %s", env.Meta.SortOrder, env.Data[0].Name)
	}

	env = list("?sort=asc&limit=5")
	if env.Meta.SortOrder != "asc" || env.Data[0].Name != "T01" || env.Data[4].Name != "T05" {
		t.Errorf("asc order: %+v", env.Data)
	}

	env = list("?include=Bogus")
	if env.Meta.IncludedRelations != "Bogus" || len(env.Data) != 10 {
		t.Errorf("unknown include: %+v", env.Meta)
	}

	env = list("")
	if env.Meta.IncludedRelations != "none" || env.Meta.CurrentPage != 1 || env.Meta.ItemsPerPage != 10 {
		t.Errorf("defaults: %+v", env.Meta)
	}

	env = list(fmt.Sprintf("?page=3&limit=%d", math.MaxInt))
	if env.Meta.TotalPages != 1 || env.Meta.CurrentPage != 3 || len(env.Data) != 0 {
		t.Errorf("huge limit: %+v, %d items", env.Meta, len(env.Data))
	}
}

func TestCourseWithTeacherAndStudents(t *testing.T) {
	c := newClient(t, 10)
	c.login()

	var grace types.Teacher
	rec := c.do(http.MethodPost, "/teachers", `{"name":"Grace","department":"CS"}`)
	_ = json.NewDecoder(rec.Body).Decode(&grace)

	var compilers types.Course
	rec = c.do(http.MethodPost, "/courses", fmt.Sprintf(`{"title":"Compilers","teacherId":%d}`, grace.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create course: %d %s", rec.Code, rec.Body)
	}
	_ = json.NewDecoder(rec.Body).Decode(&compilers)

	rec = c.do(http.MethodGet, fmt.Sprintf("/courses/%d", compilers.ID), "")
	if body := rec.Body.String(); !strings.Contains(body, `"students":[]`) {
		t.Errorf("a course without students should list none: %s", body)
	}

	var ada types.Student
	rec = c.do(http.MethodPost, "/students", `{"name":"Ada"}`)
	_ = json.NewDecoder(rec.Body).Decode(&ada)

	rec = c.do(http.MethodPost, fmt.Sprintf("/students/%d/courses/%d", ada.ID, compilers.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("enroll: %d %s", rec.Code, rec.Body)
	}

	rec = c.do(http.MethodGet, fmt.Sprintf("/courses/%d", compilers.ID), "")
	var got types.Course
	_ = json.NewDecoder(rec.Body).Decode(&got)
	if got.Teacher == nil || got.Teacher.Name != "Grace" {
		t.Errorf("teacher: %+v", got.Teacher)
	}
	if len(got.Students) != 1 || got.Students[0].Name != "Ada" {
		t.Errorf("students: %+v", got.Students)
	}

	rec = c.do(http.MethodGet, "/teachers?include=Students", "")
	var env pagination.Envelope[types.Teacher]
	_ = json.NewDecoder(rec.Body).Decode(&env)
	if len(env.Data) != 1 || len(env.Data[0].Courses) != 1 || len(env.Data[0].Courses[0].Students) != 1 {
		t.Errorf("teacher students: %+v", env.Data)
	}
}

func TestCourseUnknownTeacher(t *testing.T) {
	c := newClient(t, 10)
	c.login()

	rec := c.do(http.MethodPost, "/courses", `{"title":"Orphan","teacherId":999}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}

	env := pagination.Envelope[types.Course]{}
	rec = c.do(http.MethodGet, "/courses", "")
	_ = json.NewDecoder(rec.Body).Decode(&env)
	if env.Meta.TotalItems != 0 {
		t.Errorf("rejected course was stored: %+v", env.Data)
	}
}

func TestAuthRateLimited(t *testing.T) {
	c := newClient(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		last = c.do(http.MethodPost, "/auth/login", `{"email":"x@school.test","password":"whatever"}`).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third attempt: %d", last)
	}

	if rec := c.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health is not limited: %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	c := newClient(t, 10)

	req := httptest.NewRequest(http.MethodOptions, "/students", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin: %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
