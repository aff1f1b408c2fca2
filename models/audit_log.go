package models

import "gorm.io/gorm"

const (
	AuditActionPingCreate   = "ping_create"
	AuditActionPingUpdate   = "ping_update"
	AuditActionPingDelete   = "ping_delete"
	AuditActionClaimSubmit  = "claim_submit"
	AuditActionClaimApprove = "claim_approve"
	AuditActionSecretReveal = "secret_reveal"
	AuditActionPendingAlert = "pending_alert"
)

// AuditLog is append-only; rows are never updated or deleted.
type AuditLog struct {
	gorm.Model

	Actor      string `gorm:"size:64;index" json:"actor"`
	Action     string `gorm:"size:32;index" json:"action"`
	EntityType string `gorm:"size:32" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`
	Note       string `gorm:"size:512" json:"note"`
	RefID      string `gorm:"size:36" json:"ref_id"`
}
