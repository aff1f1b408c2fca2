package hint

import (
	"errors"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/services/hintverify"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRequest struct {
	PingID         uint   `json:"ping_id"`
	ClaimantWallet string `json:"claimant_wallet"`
	Level          int    `json:"level"`
	TxSignature    string `json:"tx_signature"`
}

// PurchaseHandler unlocks a hint level. Repeat purchases return the
// already-unlocked hint instead of erroring; purchases are permanent.
func PurchaseHandler(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.ClaimantWallet == "" {
		return helpers.JSONError(c, "CLAIMANT_WALLET_REQUIRED")
	}
	if req.Level < 1 || req.Level > 3 {
		return helpers.JSONError(c, "INVALID_HINT_LEVEL")
	}

	var entry models.Ping
	if err := database.DB.First(&entry, req.PingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "PING_NOT_FOUND")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PING")
	}

	text := entry.HintText(req.Level)
	if text == "" {
		return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "HINT_NOT_AVAILABLE")
	}

	var existing models.HintPurchase
	err := database.DB.
		Where("claimant_wallet = ? AND ping_id = ? AND hint_level = ?",
			req.ClaimantWallet, entry.ID, req.Level).
		First(&existing).Error
	if err == nil {
		return helpers.JSONSuccess(c, "Hint already purchased", fiber.Map{
			"level":     req.Level,
			"hint_text": text,
			"purchase":  existing,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PURCHASE")
	}

	// progressive unlock
	if req.Level > 1 {
		var count int64
		err := database.DB.Model(&models.HintPurchase{}).
			Where("claimant_wallet = ? AND ping_id = ? AND hint_level = ?",
				req.ClaimantWallet, entry.ID, req.Level-1).
			Count(&count).Error
		if err != nil {
			return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PURCHASE")
		}
		if count == 0 {
			return helpers.JSONErrorStatus(c, fiber.StatusConflict, "PREVIOUS_HINT_REQUIRED")
		}
	}

	purchase := models.HintPurchase{
		ClaimantWallet: req.ClaimantWallet,
		PingID:         entry.ID,
		HintLevel:      req.Level,
	}

	if entry.HintFree(req.Level) {
		purchase.PaidTokenAmount = decimal.Zero
		purchase.PaidUSD = decimal.Zero
	} else {
		if req.TxSignature == "" {
			return helpers.JSONError(c, "TX_SIGNATURE_REQUIRED")
		}
		priceUSD := entry.HintPriceUSD(req.Level)
		verification, err := hintverify.VerifyPayment(c.Context(), req.TxSignature, priceUSD)
		if err != nil {
			return helpers.JSONErrorData(c, fiber.StatusBadGateway, "PAYMENT_VERIFICATION_FAILED", fiber.Map{
				"reason": err.Error(),
			})
		}
		purchase.PaidTokenAmount = verification.PaidTokenAmount
		purchase.PaidUSD = priceUSD
		purchase.TxSignature = &req.TxSignature
	}

	res := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&purchase)
	if res.Error != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_RECORD_PURCHASE")
	}

	return helpers.JSONSuccess(c, "Hint unlocked", fiber.Map{
		"level":     req.Level,
		"hint_text": text,
		"purchase":  purchase,
	})
}
