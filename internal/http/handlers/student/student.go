// Package student contains all HTTP handlers related to the Student resource.
//
// The five CRUD handlers come from the generic crud package; this package
// supplies what is specific to students: the relations a list request may
// include, the associations loaded for a single student, and the
// enrollment endpoints that link students to courses.
//
//	r.Route("/students", student.Routes(store))
package student

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-api/internal/http/handlers/crud"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

// Relation is an association a student list may include.
type Relation int

const (
	RelCourses Relation = iota
	RelTeacher
)

// ParseRelation matches an include name case-sensitively.
func ParseRelation(name string) (Relation, bool) {
	switch name {
	case "Courses":
		return RelCourses, true
	case "Teacher":
		return RelTeacher, true
	}
	return 0, false
}

// Path is the gorm preload path. Students reach teachers through their
// courses.
func (r Relation) Path() string {
	switch r {
	case RelCourses:
		return "Courses"
	case RelTeacher:
		return "Courses.Teacher"
	}
	panic("student: unknown relation")
}

// Preloads keeps the known names in order, duplicates included.
func Preloads(names []string) []string {
	var out []string
	for _, n := range names {
		if rel, ok := ParseRelation(n); ok {
			out = append(out, rel.Path())
		}
	}
	return out
}

func resource(s storage.Storage) crud.Resource[types.Student, *types.Student] {
	return crud.Resource[types.Student, *types.Student]{
		Name:     "student",
		Repo:     s.Students(),
		Preloads: Preloads,
		Detail:   []string{"Courses"},
	}
}

// Routes mounts the student endpoints on a sub-router.
func Routes(s storage.Storage) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", New(s))
		r.Get("/", GetList(s))
		r.Get("/{id}", GetByID(s))
		r.Put("/{id}", Update(s))
		r.Delete("/{id}", Delete(s))
		r.Post("/{id}/courses/{courseId}", Enroll(s))
		r.Delete("/{id}/courses/{courseId}", Unenroll(s))
	}
}

// New creates a student.
//
//	@Summary	Create a student
//	@Tags		students
//	@Accept		json
//	@Produce	json
//	@Param		student	body		types.Student	true	"Student"
//	@Success	201		{object}	types.Student
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students [post]
func New(s storage.Storage) http.HandlerFunc {
	return resource(s).New()
}

// GetList lists students one page at a time.
//
//	@Summary	List students
//	@Tags		students
//	@Produce	json
//	@Param		page	query		int		false	"Page number"		default(1)
//	@Param		limit	query		int		false	"Items per page"	default(10)
//	@Param		sort	query		string	false	"asc or desc"		default(desc)
//	@Param		include	query		string	false	"Comma separated: Courses,Teacher"
//	@Success	200		{object}	pagination.Envelope[types.Student]
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students [get]
func GetList(s storage.Storage) http.HandlerFunc {
	return resource(s).GetList()
}

// GetByID returns one student with their courses.
//
//	@Summary	Get a student
//	@Tags		students
//	@Produce	json
//	@Param		id	path		int	true	"Student ID"
//	@Success	200	{object}	types.Student
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students/{id} [get]
func GetByID(s storage.Storage) http.HandlerFunc {
	return resource(s).GetByID()
}

// Update merges the body into a stored student.
//
//	@Summary	Update a student
//	@Tags		students
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"Student ID"
//	@Param		student	body		types.Student	true	"Fields to change"
//	@Success	200		{object}	types.Student
//	@Failure	404		{object}	response.Message
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students/{id} [put]
func Update(s storage.Storage) http.HandlerFunc {
	return resource(s).Update()
}

// Delete removes a student and their enrollments.
//
//	@Summary	Delete a student
//	@Tags		students
//	@Produce	json
//	@Param		id	path		int	true	"Student ID"
//	@Success	200	{object}	response.Message
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students/{id} [delete]
func Delete(s storage.Storage) http.HandlerFunc {
	return resource(s).Delete()
}

// Enroll links a student to a course and returns the student with their
// courses.
//
//	@Summary	Enroll a student in a course
//	@Tags		students
//	@Produce	json
//	@Param		id			path		int	true	"Student ID"
//	@Param		courseId	path		int	true	"Course ID"
//	@Success	200			{object}	types.Student
//	@Failure	404			{object}	response.Message
//	@Failure	500			{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students/{id}/courses/{courseId} [post]
func Enroll(s storage.Storage) http.HandlerFunc {
	return enrollment(s, "enroll", s.Enroll)
}

// Unenroll removes the link between a student and a course.
//
//	@Summary	Remove a student from a course
//	@Tags		students
//	@Produce	json
//	@Param		id			path		int	true	"Student ID"
//	@Param		courseId	path		int	true	"Course ID"
//	@Success	200			{object}	types.Student
//	@Failure	404			{object}	response.Message
//	@Failure	500			{object}	response.Error
//	@Security	BearerAuth
//	@Router		/students/{id}/courses/{courseId} [delete]
func Unenroll(s storage.Storage) http.HandlerFunc {
	return enrollment(s, "unenroll", s.Unenroll)
}

func enrollment(s storage.Storage, op string, change func(ctx context.Context, studentID, courseID uint) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		studentID, ok := crud.PathID(r, "id")
		courseID, ok2 := crud.PathID(r, "courseId")
		log.Info().
			Str("op", op).
			Str("student", chi.URLParam(r, "id")).
			Str("course", chi.URLParam(r, "courseId")).
			Msg("changing enrollment")
		if !ok || !ok2 {
			crud.NotFound(w)
			return
		}

		err := change(r.Context(), studentID, courseID)
		if errors.Is(err, storage.ErrNotFound) {
			crud.NotFound(w)
			return
		}
		if err != nil {
			crud.ServerError(w, log, "student", op, err)
			return
		}

		st, err := s.Students().GetByID(r.Context(), studentID, "Courses")
		if errors.Is(err, storage.ErrNotFound) {
			crud.NotFound(w)
			return
		}
		if err != nil {
			crud.ServerError(w, log, "student", "get", err)
			return
		}
		st.InitRelations()

		response.WriteJSON(w, http.StatusOK, st)
	}
}
