package models

import "time"

// UsageRecord tracks the cumulative AI token consumption for a user
// within a single calendar month. One record per (user, month); the
// record is created lazily on the first successful model call of the
// month and is only ever incremented afterwards.
type UsageRecord struct {
	ID            uint   `gorm:"primarykey"`
	UserID        string `gorm:"uniqueIndex:idx_usage_user_month;not null"`
	MonthKey      string `gorm:"uniqueIndex:idx_usage_user_month;not null;type:varchar(7)"` // "YYYY-MM"
	InputTokens   int64  `gorm:"not null;default:0"`
	OutputTokens  int64  `gorm:"not null;default:0"`
	RequestCount  int64  `gorm:"not null;default:0"`
	LastRequestAt time.Time
	CreatedAt     time.Time // Automatically managed by GORM
	UpdatedAt     time.Time // Automatically managed by GORM
}

// TableName specifies the table name for the UsageRecord model.
func (UsageRecord) TableName() string {
	return "usage_records"
}

// TotalTokens returns the combined input and output token count, which
// is the value the quota gate compares against the plan budget.
func (u *UsageRecord) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// MonthKey returns the calendar-month key ("YYYY-MM") for t in UTC.
// Both the read and write paths of the usage ledger derive the key
// through this function, so a deployment never mixes timezones.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
