package helpers

import (
	"pinghunt/database"
	"pinghunt/models"

	"github.com/google/uuid"
)

// AuditAction appends an audit row. Audit writes are best-effort and
// never fail the enclosing request.
func AuditAction(actor, action, entityType string, entityID uint, note string) {
	_ = database.DB.Create(&models.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Note:       note,
		RefID:      uuid.New().String(),
	}).Error
}
