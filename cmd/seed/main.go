// Command seed inserts demo payment methods and a demo survey.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"os"

	"survey-payout-be/internal/config"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		color.Red("config: %v", err)
		os.Exit(1)
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		color.Red("database: %v", err)
		os.Exit(1)
	}

	if err := seedPaymentMethods(db); err != nil {
		color.Red("payment methods: %v", err)
		os.Exit(1)
	}
	survey, err := seedSurvey(db)
	if err != nil {
		color.Red("survey: %v", err)
		os.Exit(1)
	}

	color.Green("Seed complete")
	color.Cyan("Demo survey %s (fetch callback URLs from GET /api/admin/surveys/%s/callback-urls)", survey.Id, survey.Id)
}

func seedPaymentMethods(db *gorm.DB) error {
	methods := []model.PaymentMethod{
		{
			Id:             uuid.MustParse("0b7c1f3e-8a5d-4f0e-9b6e-1d2c3a4b5c01"),
			Name:           "PayPal",
			MinWithdrawal:  decimal.RequireFromString("5.00"),
			MaxWithdrawal:  decimal.RequireFromString("500.00"),
			FeeType:        string(entity.FeeTypePercentage),
			FeeValue:       decimal.RequireFromString("2.5"),
			RequiredFields: []string{"email"},
			IsActive:       true,
		},
		{
			Id:             uuid.MustParse("0b7c1f3e-8a5d-4f0e-9b6e-1d2c3a4b5c02"),
			Name:           "Bank Transfer",
			MinWithdrawal:  decimal.RequireFromString("20.00"),
			MaxWithdrawal:  decimal.Zero,
			FeeType:        string(entity.FeeTypeFixed),
			FeeValue:       decimal.RequireFromString("1.00"),
			RequiredFields: []string{"account_name", "account_number", "bank_name"},
			IsActive:       true,
		},
		{
			Id:            uuid.MustParse("0b7c1f3e-8a5d-4f0e-9b6e-1d2c3a4b5c03"),
			Name:          "Gift Card",
			MinWithdrawal: decimal.RequireFromString("10.00"),
			MaxWithdrawal: decimal.RequireFromString("100.00"),
			FeeType:       string(entity.FeeTypeNone),
			FeeValue:      decimal.Zero,
			IsActive:      true,
		},
	}
	for i := range methods {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&methods[i]).Error; err != nil {
			return err
		}
		color.White("  payment method %s", methods[i].Name)
	}
	return nil
}

func seedSurvey(db *gorm.DB) (*model.Survey, error) {
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	survey := &model.Survey{
		Id:                 uuid.MustParse("5e1d0c6a-2b7f-4c3d-8e9a-0f1b2c3d4e01"),
		Title:              "Demo: Consumer habits",
		IsActive:           true,
		IsPaid:             true,
		Amount:             decimal.RequireFromString("10.00"),
		MinDurationMinutes: 5,
		MaxDurationMinutes: 20,
		NotifyOnQuotaFull:  true,
		CallbackSecret:     hex.EncodeToString(secret),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(survey).Error; err != nil {
		return nil, err
	}
	return survey, nil
}
