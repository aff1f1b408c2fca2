package queue

import (
	"fmt"

	"pinghunt/models"

	"gorm.io/gorm"
)

// NextPosition returns the queue position for a newly created ping:
// one past the highest position among unclaimed pings.
func NextPosition(tx *gorm.DB) (int, error) {
	var max int
	err := tx.Model(&models.Ping{}).
		Where("claim_status = ?", models.ClaimStatusUnclaimed).
		Select("COALESCE(MAX(queue_position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("load max queue position: %w", err)
	}
	return max + 1, nil
}

// Resequence rewrites the positions of all unclaimed pings to a
// gap-free 1..N, preserving their current order. Called after every
// deletion and every successful claim. Full rewrite on purpose: the
// public list endpoint trusts position 1 unconditionally.
func Resequence(tx *gorm.DB) error {
	var pings []models.Ping
	err := tx.Where("claim_status = ?", models.ClaimStatusUnclaimed).
		Order("queue_position asc").
		Find(&pings).Error
	if err != nil {
		return fmt.Errorf("load unclaimed pings: %w", err)
	}

	for i := range pings {
		want := i + 1
		if pings[i].QueuePosition == want {
			continue
		}
		err := tx.Model(&models.Ping{}).
			Where("id = ?", pings[i].ID).
			Update("queue_position", want).Error
		if err != nil {
			return fmt.Errorf("rewrite queue position for ping %d: %w", pings[i].ID, err)
		}
	}
	return nil
}
