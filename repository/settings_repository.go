package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/KYEONGBINKEUM/todo-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository defines the interface for reading user
// entitlements (plan tier and admin flag).
type SettingsRepository interface {
	// GetUserSettings returns the user's entitlement record. A missing
	// record is not an error: it yields the fail-safe default of plan
	// "free" and no admin rights.
	GetUserSettings(userID string) (*models.UserSettings, error)

	// SaveUserSettings upserts a user's entitlement record. Used by
	// provisioning and tests; the gateway itself never writes settings.
	SaveUserSettings(settings *models.UserSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetUserSettings retrieves the entitlement record for a user.
// Users without a settings record are treated as free-plan
// non-admins rather than as an error condition.
func (r *settingsRepository) GetUserSettings(userID string) (*models.UserSettings, error) {
	if userID == "" {
		log.Printf("ERROR: [SettingsRepository] GetUserSettings: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}

	var settings models.UserSettings
	err := r.db.First(&settings, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserSettings{UserID: userID, Plan: models.PlanFree, IsAdmin: false}, nil
		}
		log.Printf("ERROR: [SettingsRepository] Failed to fetch settings for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch settings for userID %s: %w", userID, err)
	}
	return &settings, nil
}

// SaveUserSettings creates or updates a user's entitlement record.
func (r *settingsRepository) SaveUserSettings(settings *models.UserSettings) error {
	if settings == nil || settings.UserID == "" {
		log.Printf("ERROR: [SettingsRepository] SaveUserSettings: settings with a userID are required.")
		return errors.New("settings with a user ID are required")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(settings).Error
	if err != nil {
		log.Printf("ERROR: [SettingsRepository] Failed to save settings for userID %s: %v", settings.UserID, err)
		return fmt.Errorf("failed to save settings for userID %s: %w", settings.UserID, err)
	}
	log.Printf("INFO: [SettingsRepository] Saved settings for userID %s (plan=%s, admin=%t).", settings.UserID, settings.Plan, settings.IsAdmin)
	return nil
}
