package models

import "gorm.io/gorm"

const TransferTypeFunding = "funding"

// TransferLog records every treasury transfer attempt. The composite
// unique index on (ping_id, transfer_type) is the idempotency guard:
// at most one row, and therefore at most one on-chain transfer, can
// ever exist per ping and transfer type.
type TransferLog struct {
	gorm.Model

	PingID       uint   `gorm:"index:idx_ping_transfer,unique" json:"ping_id"`
	TransferType string `gorm:"size:16;index:idx_ping_transfer,unique" json:"transfer_type"`

	Lamports    int64  `json:"lamports"`
	Status      string `gorm:"size:16;index" json:"status"` // pending, success, failed
	TxSignature string `gorm:"size:88" json:"tx_signature"`
	Note        string `gorm:"size:255" json:"note"`
}
