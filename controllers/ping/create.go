package ping

import (
	"context"
	"fmt"
	"time"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/providers/geocode"
	"pinghunt/services/queue"
	"pinghunt/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRequest struct {
	Name            string   `json:"name"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	PrizeAmount     string   `json:"prize_amount"` // display units, e.g. "1.5"
	ClaimType       string   `json:"claim_type"`
	ProximityRadius *float64 `json:"proximity_radius"`

	Hint1Text     string `json:"hint1_text"`
	Hint1Free     bool   `json:"hint1_free"`
	Hint1PriceUSD string `json:"hint1_price_usd"`
	Hint2Text     string `json:"hint2_text"`
	Hint2PriceUSD string `json:"hint2_price_usd"`
	Hint3Text     string `json:"hint3_text"`
	Hint3PriceUSD string `json:"hint3_price_usd"`
}

func CreateHandler(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		return helpers.JSONError(c, "INVALID_COORDINATES")
	}

	switch req.ClaimType {
	case models.ClaimTypeNFC:
		if req.ProximityRadius != nil {
			return helpers.JSONError(c, "RADIUS_ONLY_FOR_PROXIMITY")
		}
	case models.ClaimTypeProximity:
		if req.ProximityRadius == nil {
			return helpers.JSONError(c, "PROXIMITY_RADIUS_REQUIRED")
		}
		if *req.ProximityRadius < 1 || *req.ProximityRadius > 20 {
			return helpers.JSONError(c, "PROXIMITY_RADIUS_OUT_OF_BOUNDS")
		}
	default:
		return helpers.JSONError(c, "INVALID_CLAIM_TYPE")
	}

	prize, err := decimal.NewFromString(req.PrizeAmount)
	if err != nil || prize.IsNegative() {
		return helpers.JSONError(c, "INVALID_PRIZE_AMOUNT")
	}
	lamports := prize.Shift(9).IntPart()

	hintPrices := [3]decimal.Decimal{}
	for i, raw := range []string{req.Hint1PriceUSD, req.Hint2PriceUSD, req.Hint3PriceUSD} {
		if raw == "" {
			continue
		}
		p, err := decimal.NewFromString(raw)
		if err != nil || p.IsNegative() {
			return helpers.JSONError(c, "INVALID_HINT_PRICE")
		}
		hintPrices[i] = p
	}
	// levels 2 and 3 are always paid
	if req.Hint2Text != "" && !hintPrices[1].IsPositive() {
		return helpers.JSONError(c, "HINT_PRICE_REQUIRED")
	}
	if req.Hint3Text != "" && !hintPrices[2].IsPositive() {
		return helpers.JSONError(c, "HINT_PRICE_REQUIRED")
	}
	if req.Hint1Text != "" && !req.Hint1Free && !hintPrices[0].IsPositive() {
		return helpers.JSONError(c, "HINT_PRICE_REQUIRED")
	}

	pubkey, secret := wallet.Generate()
	secretEnc, err := wallet.Store(secret)
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "WALLET_ENCRYPTION_FAILED")
	}

	entry := models.Ping{
		Name:            req.Name,
		Lat:             req.Lat,
		Lng:             req.Lng,
		PrizeLamports:   lamports,
		PrizeDisplay:    prize,
		ClaimType:       req.ClaimType,
		ProximityRadius: req.ProximityRadius,
		ClaimStatus:     models.ClaimStatusUnclaimed,
		Active:          true,
		WalletPublicKey: pubkey,
		WalletSecretEnc: secretEnc,
		FundStatus:      models.FundStatusPending,
		Hint1Text:       req.Hint1Text,
		Hint1Free:       req.Hint1Free,
		Hint1PriceUSD:   hintPrices[0],
		Hint2Text:       req.Hint2Text,
		Hint2PriceUSD:   hintPrices[1],
		Hint3Text:       req.Hint3Text,
		Hint3PriceUSD:   hintPrices[2],
	}

	if geocode.Default != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		if name, err := geocode.Default.ResolveName(ctx, req.Lat, req.Lng); err == nil {
			entry.PlaceName = name
		}
		cancel()
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		pos, err := queue.NextPosition(tx)
		if err != nil {
			return err
		}
		entry.QueuePosition = pos
		return tx.Create(&entry).Error
	})
	if err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_CREATE_PING")
	}

	adminID, _ := c.Locals("admin_id").(string)
	helpers.AuditAction(adminID, models.AuditActionPingCreate, "ping", entry.ID,
		fmt.Sprintf("created at position %d, prize %s", entry.QueuePosition, prize))

	return helpers.JSONSuccess(c, "Ping created", entry)
}
