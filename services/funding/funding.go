package funding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"pinghunt/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TreasurySender executes an on-chain transfer from the treasury's
// signing authority and returns the transaction signature.
type TreasurySender interface {
	SendTreasuryTransfer(ctx context.Context, destination string, lamports int64) (string, error)
}

// Sender is set at startup to the Solana client; tests swap in a fake.
var Sender TreasurySender

var (
	ErrPerPingCap      = errors.New("amount exceeds per-ping funding cap")
	ErrDailyCap        = errors.New("daily funding cap reached")
	ErrAlreadyInFlight = errors.New("funding already in flight for ping")
	ErrNotConfigured   = errors.New("treasury sender not configured")
)

const (
	defaultPerPingCap = 10_000_000_000  // 10 SOL
	defaultDailyCap   = 100_000_000_000 // 100 SOL
)

type Outcome struct {
	Status      string `json:"status"`
	TxSignature string `json:"tx_signature,omitempty"`
}

func envLamports(key string, fallback int64) int64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

// Fund moves the prize amount from the treasury into the ping's prize
// wallet. Exactly-once across concurrent callers and service
// instances: the unique (ping_id, transfer_type) TransferLog row is
// the only idempotency mechanism. No automatic retry on failure; a
// human re-triggers by approving again, which reclaims the failed row.
func Fund(ctx context.Context, db *gorm.DB, ping *models.Ping) (Outcome, error) {
	if ping.PrizeLamports == 0 {
		err := db.Model(&models.Ping{}).Where("id = ?", ping.ID).
			Update("fund_status", models.FundStatusSkipped).Error
		if err != nil {
			return Outcome{}, fmt.Errorf("mark funding skipped: %w", err)
		}
		return Outcome{Status: models.FundStatusSkipped}, nil
	}

	if Sender == nil {
		return Outcome{}, ErrNotConfigured
	}

	if ping.PrizeLamports > envLamports("FUND_PER_PING_CAP", defaultPerPingCap) {
		return Outcome{}, ErrPerPingCap
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	var fundedToday int64
	err := db.Model(&models.TransferLog{}).
		Where("status = ? AND created_at >= ?", models.FundStatusSuccess, dayStart).
		Select("COALESCE(SUM(lamports), 0)").
		Scan(&fundedToday).Error
	if err != nil {
		return Outcome{}, fmt.Errorf("load funded total for today: %w", err)
	}
	if fundedToday+ping.PrizeLamports > envLamports("FUND_DAILY_CAP", defaultDailyCap) {
		return Outcome{}, ErrDailyCap
	}

	transfer := models.TransferLog{
		PingID:       ping.ID,
		TransferType: models.TransferTypeFunding,
		Lamports:     ping.PrizeLamports,
		Status:       models.FundStatusPending,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&transfer)
	if res.Error != nil {
		return Outcome{}, fmt.Errorf("insert transfer log: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// a row already exists for this ping
		var existing models.TransferLog
		err := db.Where("ping_id = ? AND transfer_type = ?", ping.ID, models.TransferTypeFunding).
			First(&existing).Error
		if err != nil {
			return Outcome{}, fmt.Errorf("load existing transfer log: %w", err)
		}

		switch existing.Status {
		case models.FundStatusSuccess:
			// already funded, report the recorded signature
			return Outcome{Status: models.FundStatusSuccess, TxSignature: existing.TxSignature}, nil
		case models.FundStatusFailed:
			// human re-trigger path: atomically reclaim the failed row
			claim := db.Model(&models.TransferLog{}).
				Where("id = ? AND status = ?", existing.ID, models.FundStatusFailed).
				Update("status", models.FundStatusPending)
			if claim.Error != nil {
				return Outcome{}, fmt.Errorf("reclaim failed transfer log: %w", claim.Error)
			}
			if claim.RowsAffected == 0 {
				return Outcome{}, ErrAlreadyInFlight
			}
			transfer = existing
		default:
			return Outcome{}, ErrAlreadyInFlight
		}
	}

	sig, sendErr := Sender.SendTreasuryTransfer(ctx, ping.WalletPublicKey, ping.PrizeLamports)
	if sendErr != nil {
		_ = db.Model(&models.TransferLog{}).Where("id = ?", transfer.ID).
			Updates(map[string]any{
				"status": models.FundStatusFailed,
				"note":   sendErr.Error(),
			}).Error
		_ = db.Model(&models.Ping{}).Where("id = ?", ping.ID).
			Update("fund_status", models.FundStatusFailed).Error
		return Outcome{Status: models.FundStatusFailed}, fmt.Errorf("treasury transfer: %w", sendErr)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TransferLog{}).Where("id = ?", transfer.ID).
			Updates(map[string]any{
				"status":       models.FundStatusSuccess,
				"tx_signature": sig,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Ping{}).Where("id = ?", ping.ID).
			Updates(map[string]any{
				"fund_status": models.FundStatusSuccess,
				"fund_tx_sig": sig,
			}).Error
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("record funded transfer %s: %w", sig, err)
	}

	return Outcome{Status: models.FundStatusSuccess, TxSignature: sig}, nil
}
