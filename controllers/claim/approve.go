package claim

import (
	"errors"
	"fmt"
	"time"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/services/funding"
	"pinghunt/services/queue"
	"pinghunt/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ApproveHandler drives pending -> claimed: funds the prize wallet,
// promotes the queue, and reveals the wallet secret exactly once
// through this path. A hard funding failure leaves the claim pending
// with fund_status failed so an admin can approve again.
func ApproveHandler(c *fiber.Ctx) error {
	adminID, ok := c.Locals("admin_id").(string)
	if !ok || adminID == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "ADMIN_IDENTITY_REQUIRED")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, "INVALID_PING_ID")
	}

	var entry models.Ping
	if err := database.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "PING_NOT_FOUND")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PING")
	}

	if entry.ClaimStatus == models.ClaimStatusClaimed {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "ALREADY_CLAIMED")
	}
	if entry.ClaimStatus != models.ClaimStatusPending {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "CLAIM_NOT_PENDING")
	}

	outcome, err := funding.Fund(c.Context(), database.DB, &entry)
	if err != nil {
		switch {
		case errors.Is(err, funding.ErrPerPingCap), errors.Is(err, funding.ErrDailyCap):
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "FUNDING_CAP_EXCEEDED")
		case errors.Is(err, funding.ErrAlreadyInFlight):
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "FUNDING_IN_FLIGHT")
		case errors.Is(err, funding.ErrNotConfigured):
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "TREASURY_NOT_CONFIGURED")
		default:
			return helpers.JSONErrorStatus(c, fiber.StatusBadGateway, "FUNDING_FAILED")
		}
	}

	secret, err := wallet.Reveal(entry.WalletSecretEnc)
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "WALLET_REVEAL_FAILED")
	}

	// the claimed transition is the winner-takes-all point for
	// concurrent approvals
	now := time.Now()
	res := database.DB.Model(&models.Ping{}).
		Where("id = ? AND claim_status = ?", entry.ID, models.ClaimStatusPending).
		Updates(map[string]any{
			"claim_status": models.ClaimStatusClaimed,
			"claimed_at":   now,
		})
	if res.Error != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_APPROVE_CLAIM")
	}
	if res.RowsAffected == 0 {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "ALREADY_CLAIMED")
	}

	if err := queue.Resequence(database.DB); err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_RESEQUENCE_QUEUE")
	}

	helpers.AuditAction(adminID, models.AuditActionClaimApprove, "ping", entry.ID,
		fmt.Sprintf("fund %s tx=%s claimant=%s", outcome.Status, outcome.TxSignature, entry.ClaimantWallet))

	return helpers.JSONSuccess(c, "Claim approved", fiber.Map{
		"ping_id":           entry.ID,
		"claim_status":      models.ClaimStatusClaimed,
		"fund_status":       outcome.Status,
		"fund_tx_sig":       outcome.TxSignature,
		"wallet_public_key": entry.WalletPublicKey,
		"wallet_secret":     secret,
	})
}
