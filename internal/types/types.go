// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import "time"

// Student represents a student record. A student attends any number of
// courses; the join rows live in student_courses.
//
// Struct tags serve two purposes:
//
//  1. json:"..." controls how the field appears in request and response
//     bodies (camelCase keys match the public API).
//  2. gorm:"..." declares the column constraints and associations the
//     storage layer enforces. Nothing above storage validates these.
type Student struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	Name      string    `json:"name"      gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	Courses []Course `json:"courses" gorm:"many2many:student_courses;constraint:OnDelete:CASCADE"`
}

// Teacher represents a teacher who runs zero or more courses.
type Teacher struct {
	ID         uint      `json:"id"         gorm:"primaryKey"`
	Name       string    `json:"name"       gorm:"not null"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"  gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Courses []Course `json:"courses" gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL"`
}

// Course is taught by at most one teacher and attended by many students.
type Course struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	Title       string    `json:"title"       gorm:"not null"`
	Description string    `json:"description"`
	TeacherID   *uint     `json:"teacherId"   gorm:"index"`
	CreatedAt   time.Time `json:"createdAt"   gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Teacher  *Teacher  `json:"teacher"  gorm:"foreignKey:TeacherID"`
	Students []Student `json:"students" gorm:"many2many:student_courses;constraint:OnDelete:CASCADE"`
}

// User is an API account. Only the bcrypt hash of the password is stored
// and it never leaves the process.
type User struct {
	ID           uint      `json:"id"        gorm:"primaryKey"`
	Name         string    `json:"name"      gorm:"not null"`
	Email        string    `json:"email"     gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-"         gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SetID pins the primary key. Update handlers call it after decoding a
// request body over a stored record so the body cannot move the row.
func (s *Student) SetID(id uint) { s.ID = id }

func (t *Teacher) SetID(id uint) { t.ID = id }

func (c *Course) SetID(id uint) { c.ID = id }

func (s *Student) GetID() uint { return s.ID }

func (t *Teacher) GetID() uint { return t.ID }

func (c *Course) GetID() uint { return c.ID }

// InitRelations replaces nil association slices with empty ones. Call it
// once the associations are loaded so an empty relation encodes as []
// rather than null.
func (s *Student) InitRelations() {
	if s.Courses == nil {
		s.Courses = []Course{}
	}
}

func (t *Teacher) InitRelations() {
	if t.Courses == nil {
		t.Courses = []Course{}
	}
}

func (c *Course) InitRelations() {
	if c.Students == nil {
		c.Students = []Student{}
	}
}
