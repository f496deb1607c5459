package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/pkg/utils"
)

type UserRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.Role == "" {
		u.Role = domain.RoleViewer
	}
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now

	m := userFromDomain(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDupKey(err) {
			return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, u.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns (nil, nil) when no user matches.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail returns (nil, nil) when no user matches.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

func (r *UserRepo) first(ctx context.Context, where string, arg any) (*domain.User, error) {
	var m UserModel
	err := r.db.WithContext(ctx).First(&m, where, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return userToDomain(&m), nil
}

// List pages users newest first. q filters by email substring.
func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&UserModel{})
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("email LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var rows []UserModel
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, *userToDomain(&rows[i]))
	}
	return out, total, nil
}

// Update applies the non-nil fields of upd and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	fields := map[string]any{"updated_at": r.now()}
	if upd.Role != nil {
		fields["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}

	var m UserModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		return tx.First(&m, "id = ?", id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return userToDomain(&m), nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
