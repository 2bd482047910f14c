package account

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository persists accounts through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repo.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a. Unique violations are returned as-is for the caller to
// classify.
func (r *Repository) Create(ctx context.Context, a *Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ByUsername returns nil, nil when no account has that username.
func (r *Repository) ByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ByID returns nil, nil when the id is unknown.
func (r *Repository) ByID(ctx context.Context, id uint) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Take(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByRoles returns accounts holding any of roles, ordered by username.
func (r *Repository) ListByRoles(ctx context.Context, roles ...Role) ([]Account, error) {
	var out []Account
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("username").
		Find(&out).Error
	return out, err
}
