// Package repository holds every database query of the service. Functions
// that depend on who is asking take the user id explicitly.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotExists        = errors.New("does not exist")
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
)

// Repository wraps a GORM handle.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for health checks and tests.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	var b []rune
	for _, r := range s {
		if r == '\\' || r == '%' || r == '_' {
			b = append(b, '\\')
		}
		b = append(b, r)
	}
	return string(b)
}
