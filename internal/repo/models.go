package repo

import (
	"time"

	"go-gin-auth-service/internal/domain"
)

type UserModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	Email          string    `gorm:"uniqueIndex;size:255;not null"`
	PasswordDigest string    `gorm:"size:100;not null"`
	Role           string    `gorm:"size:16;not null;default:VIEWER"`
	IsActive       bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

type TokenModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index;not null"`
	User      UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `gorm:"index;not null"`
	IsActive  bool      `gorm:"not null"`
	IPAddress string    `gorm:"size:255;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TokenModel) TableName() string { return "tokens" }

// Models lists every table for AutoMigrate.
func Models() []any { return []any{&UserModel{}, &TokenModel{}} }

func userToDomain(m *UserModel) *domain.User {
	return &domain.User{
		ID:             m.ID,
		Email:          m.Email,
		PasswordDigest: m.PasswordDigest,
		Role:           domain.Role(m.Role),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func userFromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:             u.ID,
		Email:          u.Email,
		PasswordDigest: u.PasswordDigest,
		Role:           string(u.Role),
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func tokenToDomain(m *TokenModel) *domain.Token {
	return &domain.Token{
		ID:        m.ID,
		UserID:    m.UserID,
		ExpiresAt: m.ExpiresAt.UTC(),
		IsActive:  m.IsActive,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func tokenFromDomain(t *domain.Token) *TokenModel {
	return &TokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt.UTC(),
		IsActive:  t.IsActive,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
