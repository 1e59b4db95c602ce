package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a chat subscriber. CRM contacts created with /add carry no ChatID.
type User struct {
	ID              int64     `gorm:"primaryKey"`
	ChatID          *int64    `gorm:"column:chat_id;uniqueIndex"`
	Username        string    `gorm:"size:64"`
	FirstName       string    `gorm:"size:128"`
	LastName        string    `gorm:"size:128"`
	Phone           string    `gorm:"size:32"`
	PhoneNormalized string    `gorm:"column:phone_normalized;size:33;index"`
	Notify          bool      `gorm:"not null;default:false;index"`
	Fio             string    `gorm:"size:100"`
	District        string    `gorm:"size:50"`
	Source          string    `gorm:"size:80"`
	Quantity        *int      `gorm:"column:quantity"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "minicrm.tg_users"
}

// HasChat reports whether the user can receive messages
func (u *User) HasChat() bool {
	return u.ChatID != nil
}

// Lead is an inbound sales inquiry. Leads are never updated.
type Lead struct {
	ID              int64           `gorm:"primaryKey"`
	Fio             string          `gorm:"size:100;not null"`
	Phone           string          `gorm:"size:32;not null"`
	PhoneNormalized string          `gorm:"column:phone_normalized;size:33;not null;uniqueIndex"`
	District        string          `gorm:"size:50;not null"`
	Source          string          `gorm:"size:80;not null"`
	Quantity        int             `gorm:"not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
}

func (Lead) TableName() string {
	return "minicrm.leads"
}
