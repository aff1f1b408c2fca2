package ping

import (
	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"

	"github.com/gofiber/fiber/v2"
)

// ListPublicHandler exposes only the head of the queue: position 1,
// active, not yet claimed. Everything else stays hidden until the
// queue promotes it.
func ListPublicHandler(c *fiber.Ctx) error {
	var pings []models.Ping
	err := database.DB.
		Where("queue_position = 1 AND active = ? AND claim_status <> ?",
			true, models.ClaimStatusClaimed).
		Find(&pings).Error
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_PINGS")
	}

	return helpers.JSONSuccess(c, "Active ping", pings)
}

// ListAdminHandler returns every ping, claimed or not. Wallet secrets
// and hint texts never serialize; the secret has its own endpoint.
func ListAdminHandler(c *fiber.Ctx) error {
	var pings []models.Ping
	if err := database.DB.Order("queue_position asc, id asc").Find(&pings).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_PINGS")
	}

	return helpers.JSONSuccess(c, "All pings", pings)
}
