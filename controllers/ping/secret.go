package ping

import (
	"errors"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SecretHandler is the authorized admin re-read of a prize wallet
// secret, outside the one-time approval reveal. Every read is audited.
func SecretHandler(c *fiber.Ctx) error {
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

	secret, err := wallet.Reveal(entry.WalletSecretEnc)
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "WALLET_REVEAL_FAILED")
	}

	adminID, _ := c.Locals("admin_id").(string)
	helpers.AuditAction(adminID, models.AuditActionSecretReveal, "ping", entry.ID, "admin secret read")

	return helpers.JSONSuccess(c, "Wallet secret", fiber.Map{
		"ping_id":           entry.ID,
		"wallet_public_key": entry.WalletPublicKey,
		"wallet_secret":     secret,
	})
}
