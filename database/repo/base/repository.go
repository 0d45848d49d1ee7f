// Package base 各仓库共用的泛型增查
package base

import (
	"context"

	"gorm.io/gorm"
)

type Repository[T any] struct {
	db *gorm.DB
}

func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// First 按条件取第一条，未找到返回 gorm.ErrRecordNotFound
func (r *Repository[T]) First(ctx context.Context, query interface{}, args ...interface{}) (*T, error) {
	var out T
	if err := r.db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
