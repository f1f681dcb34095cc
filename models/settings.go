package models

import (
	"time"

	"github.com/KYEONGBINKEUM/todo-sub001/config"
)

// PlanTier defines the subscription tiers known to the gateway.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPremium PlanTier = "premium"
	PlanTeam    PlanTier = "team"
)

// UnlimitedBudget is reported as the monthly limit for callers whose
// budget is not enforced (administrators).
const UnlimitedBudget int64 = -1

// UserSettings holds the entitlement attributes the gateway reads for
// a user. The record is owned by the account/settings surface of the
// application; the gateway treats it as read-only. A missing record
// means plan "free", not an error.
type UserSettings struct {
	UserID    string   `gorm:"primaryKey"`
	Plan      PlanTier `gorm:"type:varchar(20);default:'free';not null"`
	IsAdmin   bool     `gorm:"default:false;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the UserSettings model.
func (UserSettings) TableName() string {
	return "user_settings"
}

// Budget returns the monthly token budget for the settings' plan tier.
// Administrators are handled by the caller (they bypass budgets), not
// here.
func (s *UserSettings) Budget() int64 {
	return PlanBudget(s.Plan)
}

// PlanBudget maps a plan tier to its monthly token budget. Unknown
// tiers get the free budget, which the entitlement gate rejects.
func PlanBudget(plan PlanTier) int64 {
	switch plan {
	case PlanPremium:
		return config.AppConfig.AI.PremiumTokenBudget
	case PlanTeam:
		return config.AppConfig.AI.TeamTokenBudget
	default:
		return config.AppConfig.AI.FreeTokenBudget
	}
}
