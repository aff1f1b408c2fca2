package ping

import (
	"errors"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/services/queue"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func DeleteHandler(c *fiber.Ctx) error {
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

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return queue.Resequence(tx)
	})
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_DELETE_PING")
	}

	adminID, _ := c.Locals("admin_id").(string)
	helpers.AuditAction(adminID, models.AuditActionPingDelete, "ping", entry.ID, "deleted")

	return helpers.JSONSuccess(c, "Ping deleted", fiber.Map{"id": entry.ID})
}
