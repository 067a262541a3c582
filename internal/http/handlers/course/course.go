// Package course wires the Course resource into the generic crud
// handlers.
package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/school-api/internal/http/handlers/crud"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// Relation is an association a course list may include.
type Relation int

const (
	RelStudents Relation = iota
	RelTeacher
)

// ParseRelation matches an include name case-sensitively.
func ParseRelation(name string) (Relation, bool) {
	switch name {
	case "Students":
		return RelStudents, true
	case "Teacher":
		return RelTeacher, true
	}
	return 0, false
}

// Path is the gorm preload path.
func (r Relation) Path() string {
	switch r {
	case RelStudents:
		return "Students"
	case RelTeacher:
		return "Teacher"
	}
	panic("course: unknown relation")
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

func resource(s storage.Storage) crud.Resource[types.Course, *types.Course] {
	return crud.Resource[types.Course, *types.Course]{
		Name:     "course",
		Repo:     s.Courses(),
		Preloads: Preloads,
		Detail:   []string{"Teacher", "Students"},
	}
}

// Routes mounts the course endpoints on a sub-router.
func Routes(s storage.Storage) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/", New(s))
		r.Get("/", GetList(s))
		r.Get("/{id}", GetByID(s))
		r.Put("/{id}", Update(s))
		r.Delete("/{id}", Delete(s))
	}
}

// New creates a course. teacherId may be set in the body.
//
//	@Summary	Create a course
//	@Tags		courses
//	@Accept		json
//	@Produce	json
//	@Param		course	body		types.Course	true	"Course"
//	@Success	201		{object}	types.Course
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/courses [post]
func New(s storage.Storage) http.HandlerFunc {
	return resource(s).New()
}

// GetList lists courses one page at a time.
//
//	@Summary	List courses
//	@Tags		courses
//	@Produce	json
//	@Param		page	query		int		false	"Page number"		default(1)
//	@Param		limit	query		int		false	"Items per page"	default(10)
//	@Param		sort	query		string	false	"asc or desc"		default(desc)
//	@Param		include	query		string	false	"Comma separated: Students,Teacher"
//	@Success	200		{object}	pagination.Envelope[types.Course]
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/courses [get]
func GetList(s storage.Storage) http.HandlerFunc {
	return resource(s).GetList()
}

// GetByID returns one course with its teacher and students.
//
//	@Summary	Get a course
//	@Tags		courses
//	@Produce	json
//	@Param		id	path		int	true	"Course ID"
//	@Success	200	{object}	types.Course
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/courses/{id} [get]
func GetByID(s storage.Storage) http.HandlerFunc {
	return resource(s).GetByID()
}

// Update merges the body into a stored course.
//
//	@Summary	Update a course
//	@Tags		courses
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"Course ID"
//	@Param		course	body		types.Course	true	"Fields to change"
//	@Success	200		{object}	types.Course
//	@Failure	404		{object}	response.Message
//	@Failure	500		{object}	response.Error
//	@Security	BearerAuth
//	@Router		/courses/{id} [put]
func Update(s storage.Storage) http.HandlerFunc {
	return resource(s).Update()
}

// Delete removes a course and its enrollments.
//
//	@Summary	Delete a course
//	@Tags		courses
//	@Produce	json
//	@Param		id	path		int	true	"Course ID"
//	@Success	200	{object}	response.Message
//	@Failure	404	{object}	response.Message
//	@Failure	500	{object}	response.Error
//	@Security	BearerAuth
//	@Router		/courses/{id} [delete]
func Delete(s storage.Storage) http.HandlerFunc {
	return resource(s).Delete()
}
