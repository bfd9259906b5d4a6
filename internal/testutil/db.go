// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"survey-payout-be/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database migrated from the gorm
// models. A single connection serializes transactions the way row locks do
// on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedSurvey inserts a paid, active survey worth 10.00. Options adjust it
// before insert.
func SeedSurvey(t *testing.T, db *gorm.DB, opts ...func(*model.Survey)) *model.Survey {
	t.Helper()

	s := &model.Survey{
		Id:                 uuid.New(),
		Title:              "Consumer habits",
		IsActive:           true,
		IsPaid:             true,
		Amount:             decimal.RequireFromString("10.00"),
		MinDurationMinutes: 5,
		MaxDurationMinutes: 30,
		CallbackSecret:     "secret-" + uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	return s
}

// SeedPaymentMethod inserts an active method with a 1.00 minimum and no
// maximum.
func SeedPaymentMethod(t *testing.T, db *gorm.DB, opts ...func(*model.PaymentMethod)) *model.PaymentMethod {
	t.Helper()

	m := &model.PaymentMethod{
		Id:             uuid.New(),
		Name:           "PayPal",
		MinWithdrawal:  decimal.RequireFromString("1.00"),
		MaxWithdrawal:  decimal.Zero,
		FeeType:        "none",
		FeeValue:       decimal.Zero,
		RequiredFields: []string{"email"},
		IsActive:       true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed payment method: %v", err)
	}
	return m
}

// SeedBalance gives the user a withdrawable balance equal to their lifetime
// earnings.
func SeedBalance(t *testing.T, db *gorm.DB, userID uuid.UUID, amount string) {
	t.Helper()

	b := &model.UserBalance{
		UserId:              userID,
		WithdrawableBalance: decimal.RequireFromString(amount),
		LifetimeEarnings:    decimal.RequireFromString(amount),
		LifetimePaidOut:     decimal.Zero,
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed balance: %v", err)
	}
}

func SeedProfile(t *testing.T, db *gorm.DB, userID uuid.UUID, email string) {
	t.Helper()

	if err := db.Create(&model.UserProfile{UserId: userID, Email: email, DisplayName: "Test User"}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

// Balance reads the balance row directly, or nil when missing.
func Balance(t *testing.T, db *gorm.DB, userID uuid.UUID) *model.UserBalance {
	t.Helper()

	var b model.UserBalance
	err := db.Where("user_id = ?", userID).Limit(1).Find(&b).Error
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if b.UserId == uuid.Nil {
		return nil
	}
	return &b
}
