// Package router assembles the HTTP handler tree.
//
// Route table:
//
//	GET    /                   welcome text               public
//	GET    /health             liveness                   public
//	GET    /docs/*             Swagger UI and doc.json    public
//	POST   /auth/register      create account             public, rate limited
//	POST   /auth/login         issue token                public, rate limited
//	*      /students/...       student resource           bearer token
//	*      /teachers/...       teacher resource           bearer token
//	*      /courses/...        course resource            bearer token
//
// Every resource path is mounted once, behind Authenticate.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/aanand-mishra/school-api/docs"
	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/http/handlers/account"
	"github.com/aanand-mishra/school-api/internal/http/handlers/course"
	"github.com/aanand-mishra/school-api/internal/http/handlers/student"
	"github.com/aanand-mishra/school-api/internal/http/handlers/teacher"
	"github.com/aanand-mishra/school-api/internal/http/middleware"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

const Welcome = "Welcome to the School API"

// Deps are the objects the handlers share. They are built once in main.
type Deps struct {
	Store          storage.Storage
	Issuer         *auth.Issuer
	Limiter        *middleware.RateLimiter
	Log            zerolog.Logger
	AllowedOrigins []string
}

// New returns the root handler with CORS applied.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(Welcome))
	})
	r.Get("/health", health)
	r.Get("/docs", http.RedirectHandler("/docs/index.html", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/auth", func(r chi.Router) {
		r.Use(d.Limiter.Limit)
		r.Post("/register", account.Register(d.Store.Users(), d.Issuer))
		r.Post("/login", account.Login(d.Store.Users(), d.Issuer))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Issuer))
		r.Route("/students", student.Routes(d.Store))
		r.Route("/teachers", teacher.Routes(d.Store))
		r.Route("/courses", course.Routes(d.Store))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

// health reports liveness.
//
//	@Summary	Liveness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func health(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
