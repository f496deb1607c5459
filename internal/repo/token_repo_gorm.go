package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/pkg/utils"
)

type TokenRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTokenRepo(db *gorm.DB) *TokenRepo {
	return &TokenRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ domain.TokenRepository = (*TokenRepo)(nil)

func (r *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	now := r.now()
	if !t.ExpiresAt.After(now) {
		return fmt.Errorf("%w: expires_at must be in the future", domain.ErrValidation)
	}
	if len(t.IPAddress) > 255 {
		return fmt.Errorf("%w: ip_address too long", domain.ErrValidation)
	}
	if t.ID == "" {
		t.ID = utils.NewID()
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(tokenFromDomain(t)).Error; err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when no record matches.
func (r *TokenRepo) Get(ctx context.Context, id string) (*domain.Token, error) {
	var m TokenModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return tokenToDomain(&m), nil
}

func (r *TokenRepo) Update(ctx context.Context, id string, upd domain.TokenUpdate) (*domain.Token, error) {
	fields := map[string]any{"updated_at": r.now()}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}

	var m TokenModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TokenModel{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: token %s", domain.ErrNotFound, id)
		}
		return tx.First(&m, "id = ?", id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update token: %w", err)
	}
	return tokenToDomain(&m), nil
}

func (r *TokenRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TokenModel{}).Error; err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (r *TokenRepo) ListByUser(ctx context.Context, userID string) ([]domain.Token, error) {
	var rows []TokenModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	out := make([]domain.Token, 0, len(rows))
	for i := range rows {
		out = append(out, *tokenToDomain(&rows[i]))
	}
	return out, nil
}

// DeactivateByUser flips every active token of the user to inactive.
func (r *TokenRepo) DeactivateByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&TokenModel{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{"is_active": false, "updated_at": r.now()})
	if res.Error != nil {
		return 0, fmt.Errorf("deactivate tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, "expires_at < ?", now.UTC())
}

func (r *TokenRepo) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, "is_active = ? AND updated_at < ?", false, cutoff.UTC())
}

// deleteWhere runs a bulk delete inside its own transaction so a failure
// leaves no partial sweep behind.
func (r *TokenRepo) deleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(where, args...).Delete(&TokenModel{})
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweep tokens: %w", err)
	}
	return n, nil
}
