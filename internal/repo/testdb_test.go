package repo

import (
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-auth-service/internal/domain"
	"go-gin-auth-service/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordDigest: "x", Role: domain.RoleMember, IsActive: true}
	if err := NewUserRepo(db).Create(t.Context(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedToken inserts a row directly, bypassing the future-expiry check.
func seedToken(t *testing.T, db *gorm.DB, userID string, expiresAt time.Time, active bool, updatedAt time.Time) string {
	t.Helper()
	m := &TokenModel{
		ID:        utils.NewID(),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		IsActive:  active,
		CreatedAt: updatedAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}
	if err := db.Omit("User").Create(m).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}
	// autoUpdateTime overwrites UpdatedAt on create
	if err := db.Model(&TokenModel{}).Where("id = ?", m.ID).UpdateColumn("updated_at", updatedAt.UTC()).Error; err != nil {
		t.Fatalf("backdate token: %v", err)
	}
	return m.ID
}
