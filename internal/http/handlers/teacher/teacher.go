// Package teacher wires the Teacher resource into the generic crud
// handlers.
package teacher

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/school-api/internal/http/handlers/crud"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// Relation is an association a teacher list may include.
type Relation int

const (
	RelCourses Relation = iota
	RelStudents
)

// ParseRelation matches an include name case-sensitively.
func ParseRelation(name string) (Relation, bool) {
	switch name {
	case "Courses":
		return RelCourses, true
	case "Students":
		return RelStudents, true
	}
	return 0, false
}

// Path is the gorm preload path. A teacher's students are the students
// of their courses.
func (r Relation) Path() string {
	switch r {
	case RelCourses:
		return "Courses"
	case RelStudents:
		return "Courses.Students"
	}
	panic("teacher: unknown relation")
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

func resource(s storage.Storage) crud.Resource[types.Teacher, *types.Teacher] {
	return crud.Resource[types.Teacher, *types.Teacher]{
		Name:     "teacher",
		Repo:     s.Teachers(),
		Preloads: Preloads,
		Detail:   []string{"Courses"},
	}
}

// Routes mounts the teacher endpoints on a sub-router.
func Routes(s storage.Storage) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", New(s))
		r.Get("/", GetList(s))
		r.Get("/{id}", GetByID(s))
		r.Put("/{id}", Update(s))
		r.Delete("/{id}", Delete(s))
	}
}

// New creates a teacher.
//
//	@Summary	Create a teacher
//	@Tags		teachers
//	@Accept		json
//	@Produce	json
//	@Param		teacher	body		types.Teacher	true	"Teacher"
//	@Success	201		{object}	types.Teacher
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/teachers [post]
func New(s storage.Storage) http.HandlerFunc {
	return resource(s).New()
}

// GetList lists teachers.
//
//	@Summary	List teachers
//	@Tags		teachers
//	@Produce	json
//	@Param		page	query		int		false	"Page number"		default(1)
//	@Param		limit	query		int		false	"Items per page"	default(10)
//	@Param		sort	query		string	false	"asc or desc"		default(desc)
//	@Param		include	query		string	false	"Comma separated: Courses,Students"
//	@Success	200		{object}	pagination.Envelope[types.Teacher]
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/teachers [get]
func GetList(s storage.Storage) http.HandlerFunc {
	return resource(s).GetList()
}

// GetByID returns one teacher with their courses.
//
//	@Summary	Get a teacher
//	@Tags		teachers
//	@Produce	json
//	@Param		id	path		int	true	"Teacher ID"
//	@Success	200	{object}	types.Teacher
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/teachers/{id} [get]
func GetByID(s storage.Storage) http.HandlerFunc {
	return resource(s).GetByID()
}

// Update merges the body into a stored teacher.
//
//	@Summary	Update a teacher
//	@Tags		teachers
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"Teacher ID"
//	@Param		teacher	body		types.Teacher	true	"Fields to change"
//	@Success	200		{object}	types.Teacher
//	@Failure	404		{object}	response.Message
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/teachers/{id} [put]
func Update(s storage.Storage) http.HandlerFunc {
	return resource(s).Update()
}

// Delete removes a teacher. Their courses stay, without a teacher.
//
//	@Summary	Delete a teacher
//	@Tags		teachers
//	@Produce	json
//	@Param		id	path		int	true	"Teacher ID"
//	@Success	200	{object}	response.Message
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/teachers/{id} [delete]
func Delete(s storage.Storage) http.HandlerFunc {
	return resource(s).Delete()
}
