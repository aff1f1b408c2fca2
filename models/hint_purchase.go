package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HintPurchase is permanent: purchases are never revoked or refunded.
// The unique index makes repeat purchases idempotent.
type HintPurchase struct {
	gorm.Model

	ClaimantWallet string `gorm:"size:44;index:idx_claimant_ping_level,unique" json:"claimant_wallet"`
	PingID         uint   `gorm:"index:idx_claimant_ping_level,unique" json:"ping_id"`
	HintLevel      int    `gorm:"index:idx_claimant_ping_level,unique" json:"hint_level"`

	PaidTokenAmount decimal.Decimal `gorm:"type:numeric(20,9)" json:"paid_token_amount"`
	PaidUSD         decimal.Decimal `gorm:"type:numeric(10,2)" json:"paid_usd"`
	// null for free hints
	TxSignature *string `gorm:"size:88" json:"tx_signature"`
}
