package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Survey struct {
	Id                       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title                    string          `gorm:"type:varchar(255);not null"`
	IsActive                 bool            `gorm:"not null"`
	IsPaid                   bool            `gorm:"not null"`
	Amount                   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AutoApprove              bool            `gorm:"not null"`
	AllowMultipleSubmissions bool            `gorm:"not null"`
	MinDurationMinutes       int
	MaxDurationMinutes       int
	NotifyOnQuotaFull        bool       `gorm:"not null"`
	ManagerId                *uuid.UUID `gorm:"type:uuid"`
	CallbackSecret           string     `gorm:"type:varchar(128);not null"`
	IsPaused                 bool       `gorm:"not null;index"`
	PausedReason             string     `gorm:"type:varchar(50)"`
	PausedAt                 *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (Survey) TableName() string {
	return "surveys"
}
