package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ClaimTypeNFC       = "nfc"
	ClaimTypeProximity = "proximity"

	ClaimStatusUnclaimed = "unclaimed"
	ClaimStatusPending   = "pending"
	ClaimStatusClaimed   = "claimed"

	FundStatusPending = "pending"
	FundStatusSuccess = "success"
	FundStatusFailed  = "failed"
	FundStatusSkipped = "skipped"
)

type Ping struct {
	gorm.Model

	Name      string  `gorm:"size:128" json:"name"`
	PlaceName string  `gorm:"size:255" json:"place_name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`

	PrizeLamports int64           `json:"prize_lamports"`
	PrizeDisplay  decimal.Decimal `gorm:"type:numeric(20,9)" json:"prize_display"`

	ClaimType string `gorm:"size:16" json:"claim_type"`
	// meters, only set for proximity claims
	ProximityRadius *float64 `json:"proximity_radius,omitempty"`

	ClaimStatus   string `gorm:"size:16;default:'unclaimed';index" json:"claim_status"`
	QueuePosition int    `gorm:"index" json:"queue_position"`
	Active        bool   `gorm:"default:true" json:"active"`

	WalletPublicKey string `gorm:"size:44" json:"wallet_public_key"`
	WalletSecretEnc string `gorm:"size:512" json:"-"`

	FundStatus string `gorm:"size:16;default:'pending'" json:"fund_status"`
	FundTxSig  string `gorm:"size:88" json:"fund_tx_sig,omitempty"`

	ClaimantWallet string     `gorm:"size:44" json:"claimant_wallet,omitempty"`
	ClaimProof     string     `gorm:"size:512" json:"claim_proof,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`

	Hint1Text     string          `gorm:"size:512" json:"-"`
	Hint1Free     bool            `json:"hint1_free"`
	Hint1PriceUSD decimal.Decimal `gorm:"type:numeric(10,2)" json:"hint1_price_usd"`
	Hint2Text     string          `gorm:"size:512" json:"-"`
	Hint2PriceUSD decimal.Decimal `gorm:"type:numeric(10,2)" json:"hint2_price_usd"`
	Hint3Text     string          `gorm:"size:512" json:"-"`
	Hint3PriceUSD decimal.Decimal `gorm:"type:numeric(10,2)" json:"hint3_price_usd"`
}

// HintText returns the configured text for a hint level, empty if unset.
func (p *Ping) HintText(level int) string {
	switch level {
	case 1:
		return p.Hint1Text
	case 2:
		return p.Hint2Text
	case 3:
		return p.Hint3Text
	}
	return ""
}

func (p *Ping) HintPriceUSD(level int) decimal.Decimal {
	switch level {
	case 1:
		return p.Hint1PriceUSD
	case 2:
		return p.Hint2PriceUSD
	case 3:
		return p.Hint3PriceUSD
	}
	return decimal.Zero
}

// HintFree reports whether a level is claimable without payment. Only
// level 1 can be flagged free.
func (p *Ping) HintFree(level int) bool {
	return level == 1 && p.Hint1Free
}
