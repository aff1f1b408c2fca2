package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"pinghunt/database"
	"pinghunt/models"

	"github.com/google/uuid"
)

// StartPendingClaimWatcher flags pings that have sat in pending longer
// than CLAIM_PENDING_ALERT_HOURS (default 48) with an audit row, once
// per ping. Claim status is monotonic so nothing is ever reverted;
// this only surfaces stuck approvals to the admin dashboard.
func StartPendingClaimWatcher() {
	hours := 48
	if raw := os.Getenv("CLAIM_PENDING_ALERT_HOURS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			hours = v
		}
	}

	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		for {
			<-ticker.C
			if err := flagStalePending(time.Duration(hours) * time.Hour); err != nil {
				log.Printf("❌ error flagging stale pending claims: %v", err)
			}
		}
	}()
}

func flagStalePending(ttl time.Duration) error {
	cutoff := time.Now().Add(-ttl)

	var stale []models.Ping
	err := database.DB.
		Where("claim_status = ? AND updated_at < ?", models.ClaimStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return err
	}

	for _, p := range stale {
		var flagged int64
		err := database.DB.Model(&models.AuditLog{}).
			Where("action = ? AND entity_id = ?", models.AuditActionPendingAlert, p.ID).
			Count(&flagged).Error
		if err != nil {
			return err
		}
		if flagged > 0 {
			continue
		}

		err = database.DB.Create(&models.AuditLog{
			Actor:      "system",
			Action:     models.AuditActionPendingAlert,
			EntityType: "ping",
			EntityID:   p.ID,
			Note:       "claim pending since " + p.UpdatedAt.UTC().Format(time.RFC3339),
			RefID:      uuid.New().String(),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
