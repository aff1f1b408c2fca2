package hint

import (
	"errors"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListHandler returns a claimant's unlocked hints for one ping, with
// the hint texts they have paid for.
func ListHandler(c *fiber.Ctx) error {
	claimantWallet := c.Query("wallet")
	pingID := c.QueryInt("ping_id")
	if claimantWallet == "" || pingID == 0 {
		return helpers.JSONError(c, "WALLET_AND_PING_ID_REQUIRED")
	}

	var entry models.Ping
	if err := database.DB.First(&entry, pingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "PING_NOT_FOUND")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PING")
	}

	var purchases []models.HintPurchase
	err := database.DB.
		Where("claimant_wallet = ? AND ping_id = ?", claimantWallet, entry.ID).
		Order("hint_level asc").
		Find(&purchases).Error
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_PURCHASES")
	}

	unlocked := make([]fiber.Map, 0, len(purchases))
	for _, p := range purchases {
		unlocked = append(unlocked, fiber.Map{
			"level":     p.HintLevel,
			"hint_text": entry.HintText(p.HintLevel),
			"purchase":  p,
		})
	}

	return helpers.JSONSuccess(c, "Purchased hints", unlocked)
}
