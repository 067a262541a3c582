// Package storage defines the Storage interface, the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on these interfaces. The concrete gorm backend
// lives in storage/gormstore and is constructed once in main, then passed
// to every controller.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/school-api/internal/types"
)

var (
	// ErrNotFound is returned when a lookup by id or email matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// ListQuery describes one page of a list request.
type ListQuery struct {
	Limit     int
	Offset    int
	Ascending bool
	// Preloads are association paths to eager-load, e.g. "Courses.Teacher".
	Preloads []string
}

// Repository is the CRUD surface shared by every school entity.
type Repository[T any] interface {
	// Create inserts v and fills in its generated id and timestamps.
	Create(ctx context.Context, v *T) error

	// List returns one page ordered by creation time, plus the total row
	// count ignoring pagination.
	List(ctx context.Context, q ListQuery) ([]T, int64, error)

	// GetByID fetches one record with the given associations loaded.
	// Returns ErrNotFound if no row has that id.
	GetByID(ctx context.Context, id uint, preloads ...string) (*T, error)

	// Update writes every field of v back to its row.
	Update(ctx context.Context, v *T) error

	// Delete removes v's row and its many-to-many join rows.
	Delete(ctx context.Context, v *T) error
}

// UserRepository stores API accounts.
type UserRepository interface {
	// CreateUser returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *types.User) error
	UserByEmail(ctx context.Context, email string) (*types.User, error)
}

// Storage is the database contract.
type Storage interface {
	Students() Repository[types.Student]
	Teachers() Repository[types.Teacher]
	Courses() Repository[types.Course]
	Users() UserRepository

	// Enroll links a student to a course. Both must exist.
	Enroll(ctx context.Context, studentID, courseID uint) error
	// Unenroll removes the link; a missing link is not an error.
	Unenroll(ctx context.Context, studentID, courseID uint) error

	Close() error
}
