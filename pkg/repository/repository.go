package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is a minimal generic gorm store for a single model type.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Save(ctx context.Context, record *T) error
	Find(ctx context.Context, conds ...any) ([]T, error)
	First(ctx context.Context, conds ...any) (*T, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the shared connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Save(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Save(record).Error
}

func (s *store[T]) Find(ctx context.Context, conds ...any) ([]T, error) {
	var records []T
	if err := s.db.WithContext(ctx).Find(&records, conds...).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) First(ctx context.Context, conds ...any) (*T, error) {
	var record T
	if err := s.db.WithContext(ctx).First(&record, conds...).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
