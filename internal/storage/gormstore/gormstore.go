// Package gormstore provides a gorm-backed implementation of the
// storage.Storage interface. The same code serves SQLite (the default,
// through the mattn/go-sqlite3 driver) and PostgreSQL (through pgx);
// only the dialector differs.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/logger"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/types"
)

// Store is the concrete implementation of storage.Storage.
// A single *gorm.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db *gorm.DB

	students repo[types.Student]
	teachers repo[types.Teacher]
	courses  repo[types.Course]
}

var _ storage.Storage = (*Store)(nil)

// New opens the database selected by cfg.Storage and migrates the schema.
func New(cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return Open(sqlite.Open(cfg.Storage.DSN), log)
	case "postgres":
		return Open(postgres.Open(cfg.Storage.DSN), log)
	default:
		return nil, fmt.Errorf("gormstore.New: unknown driver %q", cfg.Storage.Driver)
	}
}

// Open wraps an arbitrary dialector. AutoMigrate is idempotent, so it is
// safe to run on every startup.
func Open(dialector gorm.Dialector, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGorm(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.Open: open db: %w", err)
	}

	isSQLite := dialector.Name() == "sqlite"
	if isSQLite {
		// SQLite allows one writer at a time; a single connection avoids
		// "database is locked" under concurrent requests.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gormstore.Open: pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&types.User{}, &types.Teacher{}, &types.Course{}, &types.Student{}); err != nil {
		return nil, fmt.Errorf("gormstore.Open: migrate: %w", err)
	}

	if isSQLite {
		// Foreign keys are off per connection by default. The pool holds a
		// single connection, so enabling them once covers every query.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("gormstore.Open: foreign keys: %w", err)
		}
	}

	return &Store{
		db: db,
		students: repo[types.Student]{
			db:   db,
			name: "Student",
			beforeDelete: func(tx *gorm.DB, s *types.Student) error {
				return tx.Model(s).Association("Courses").Clear()
			},
		},
		teachers: repo[types.Teacher]{
			db:   db,
			name: "Teacher",
			beforeDelete: func(tx *gorm.DB, t *types.Teacher) error {
				// courses outlive their teacher
				return tx.Model(&types.Course{}).Where("teacher_id = ?", t.ID).Update("teacher_id", nil).Error
			},
		},
		courses: repo[types.Course]{
			db:   db,
			name: "Course",
			beforeDelete: func(tx *gorm.DB, c *types.Course) error {
				return tx.Model(c).Association("Students").Clear()
			},
		},
	}, nil
}

func (s *Store) Students() storage.Repository[types.Student] { return s.students }
func (s *Store) Teachers() storage.Repository[types.Teacher] { return s.teachers }
func (s *Store) Courses() storage.Repository[types.Course]   { return s.courses }
func (s *Store) Users() storage.UserRepository               { return users{db: s.db} }

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gormstore.Close: %w", err)
	}
	return sqlDB.Close()
}

// Enroll links a student to a course inside one transaction so a
// concurrent delete cannot leave a dangling join row.
func (s *Store) Enroll(ctx context.Context, studentID, courseID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st types.Student
		if err := tx.First(&st, studentID).Error; err != nil {
			return fmt.Errorf("Enroll: student: %w", translate(err))
		}
		var c types.Course
		if err := tx.First(&c, courseID).Error; err != nil {
			return fmt.Errorf("Enroll: course: %w", translate(err))
		}
		if err := tx.Model(&st).Omit("Courses.*").Association("Courses").Append(&c); err != nil {
			return fmt.Errorf("Enroll: append: %w", translate(err))
		}
		return nil
	})
}

func (s *Store) Unenroll(ctx context.Context, studentID, courseID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st types.Student
		if err := tx.First(&st, studentID).Error; err != nil {
			return fmt.Errorf("Unenroll: student: %w", translate(err))
		}
		if err := tx.Model(&st).Association("Courses").Delete(&types.Course{ID: courseID}); err != nil {
			return fmt.Errorf("Unenroll: delete: %w", translate(err))
		}
		return nil
	})
}

// repo implements storage.Repository for one model type.
type repo[T any] struct {
	db   *gorm.DB
	name string
	// beforeDelete detaches associations that must not block or survive
	// the row's removal.
	beforeDelete func(tx *gorm.DB, v *T) error
}

func (r repo[T]) Create(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("Create%s: insert: %w", r.name, translate(err))
	}
	return nil
}

func (r repo[T]) List(ctx context.Context, q storage.ListQuery) ([]T, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("List%ss: count: %w", r.name, err)
	}

	tx := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "created_at"}, Desc: !q.Ascending}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Desc: !q.Ascending}).
		Limit(q.Limit).
		Offset(q.Offset)
	for _, p := range q.Preloads {
		tx = tx.Preload(p)
	}

	// non-nil so an empty page encodes as [] rather than null
	items := make([]T, 0)
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("List%ss: find: %w", r.name, err)
	}
	return items, total, nil
}

func (r repo[T]) GetByID(ctx context.Context, id uint, preloads ...string) (*T, error) {
	tx := r.db.WithContext(ctx)
	for _, p := range preloads {
		tx = tx.Preload(p)
	}

	var v T
	if err := tx.First(&v, id).Error; err != nil {
		return nil, fmt.Errorf("Get%sByID: %w", r.name, translate(err))
	}
	return &v, nil
}

func (r repo[T]) Update(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return fmt.Errorf("Update%s: save: %w", r.name, translate(err))
	}
	return nil
}

func (r repo[T]) Delete(ctx context.Context, v *T) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.beforeDelete != nil {
			if err := r.beforeDelete(tx, v); err != nil {
				return err
			}
		}
		return tx.Delete(v).Error
	})
	if err != nil {
		return fmt.Errorf("Delete%s: %w", r.name, translate(err))
	}
	return nil
}

type users struct {
	db *gorm.DB
}

func (u users) CreateUser(ctx context.Context, user *types.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("CreateUser: insert: %w", translate(err))
	}
	return nil
}

func (u users) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("UserByEmail: %w", translate(err))
	}
	return &user, nil
}

// translate maps gorm's sentinel errors onto the storage package's so
// handlers never import gorm.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	default:
		return err
	}
}
