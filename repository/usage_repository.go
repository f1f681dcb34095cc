package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/KYEONGBINKEUM/todo-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository defines the interface for the per-user monthly token
// ledger.
type UsageRepository interface {
	// GetMonthlyUsage returns the current month's record for the user,
	// or a zero-valued record if the user has not consumed anything
	// this month. It only fails on storage errors.
	GetMonthlyUsage(userID string) (*models.UsageRecord, error)

	// IncrementUsage atomically adds the token counts to the current
	// month's record (creating it if absent) and bumps the request
	// count by one. Concurrent increments for the same user must never
	// lose an update.
	IncrementUsage(userID string, inputTokens, outputTokens int64) error
}

type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new instance of UsageRepository.
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// GetMonthlyUsage retrieves the current month's usage for a user.
// If no record exists yet, it returns a fresh zero-valued record and
// no error: before the first AI call of a month the usage is simply 0.
func (r *usageRepository) GetMonthlyUsage(userID string) (*models.UsageRecord, error) {
	if userID == "" {
		log.Printf("ERROR: [UsageRepository] GetMonthlyUsage: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}

	monthKey := models.MonthKey(time.Now())
	var record models.UsageRecord
	err := r.db.First(&record, "user_id = ? AND month_key = ?", userID, monthKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UsageRecord{UserID: userID, MonthKey: monthKey}, nil
		}
		log.Printf("ERROR: [UsageRepository] Failed to fetch usage for userID %s (month %s): %v", userID, monthKey, err)
		return nil, fmt.Errorf("failed to fetch usage for userID %s: %w", userID, err)
	}
	return &record, nil
}

// IncrementUsage records consumption for the current month as a single
// upsert: INSERT ... ON CONFLICT(user_id, month_key) DO UPDATE with
// additive expressions. The addition happens inside the database, so
// two concurrent calls both land (commutative accumulation) and no
// read-modify-write race can drop tokens.
func (r *usageRepository) IncrementUsage(userID string, inputTokens, outputTokens int64) error {
	if userID == "" {
		log.Printf("ERROR: [UsageRepository] IncrementUsage: userID cannot be empty.")
		return errors.New("user ID cannot be empty")
	}
	if inputTokens < 0 || outputTokens < 0 {
		log.Printf("ERROR: [UsageRepository] IncrementUsage: negative token counts (in=%d, out=%d) for userID %s.", inputTokens, outputTokens, userID)
		return errors.New("token counts cannot be negative")
	}

	now := time.Now()
	record := models.UsageRecord{
		UserID:        userID,
		MonthKey:      models.MonthKey(now),
		InputTokens:   inputTokens,
		OutputTokens:  outputTokens,
		RequestCount:  1,
		LastRequestAt: now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"input_tokens":    gorm.Expr("input_tokens + ?", inputTokens),
			"output_tokens":   gorm.Expr("output_tokens + ?", outputTokens),
			"request_count":   gorm.Expr("request_count + 1"),
			"last_request_at": now,
			"updated_at":      now,
		}),
	}).Create(&record).Error
	if err != nil {
		log.Printf("ERROR: [UsageRepository] Failed to increment usage for userID %s: %v", userID, err)
		return fmt.Errorf("failed to increment usage for userID %s: %w", userID, err)
	}
	log.Printf("INFO: [UsageRepository] Recorded usage for userID %s: +%d input, +%d output tokens.", userID, inputTokens, outputTokens)
	return nil
}
