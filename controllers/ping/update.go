package ping

import (
	"errors"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpdateRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`

	// location and prize are only mutable while unclaimed
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	PrizeAmount     *string  `json:"prize_amount"`
	ProximityRadius *float64 `json:"proximity_radius"`

	Hint1Text     *string `json:"hint1_text"`
	Hint1Free     *bool   `json:"hint1_free"`
	Hint1PriceUSD *string `json:"hint1_price_usd"`
	Hint2Text     *string `json:"hint2_text"`
	Hint2PriceUSD *string `json:"hint2_price_usd"`
	Hint3Text     *string `json:"hint3_text"`
	Hint3PriceUSD *string `json:"hint3_price_usd"`
}

func UpdateHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, "INVALID_PING_ID")
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	var entry models.Ping
	if err := database.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "PING_NOT_FOUND")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PING")
	}

	locked := entry.ClaimStatus != models.ClaimStatusUnclaimed
	if locked && (req.Lat != nil || req.Lng != nil || req.PrizeAmount != nil || req.ProximityRadius != nil) {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "PING_NOT_UNCLAIMED")
	}

	if req.Name != nil {
		entry.Name = *req.Name
	}
	if req.Active != nil {
		entry.Active = *req.Active
	}

	if req.Lat != nil || req.Lng != nil {
		lat, lng := entry.Lat, entry.Lng
		if req.Lat != nil {
			lat = *req.Lat
		}
		if req.Lng != nil {
			lng = *req.Lng
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return helpers.JSONError(c, "INVALID_COORDINATES")
		}
		entry.Lat, entry.Lng = lat, lng
	}

	if req.PrizeAmount != nil {
		prize, err := decimal.NewFromString(*req.PrizeAmount)
		if err != nil || prize.IsNegative() {
			return helpers.JSONError(c, "INVALID_PRIZE_AMOUNT")
		}
		entry.PrizeDisplay = prize
		entry.PrizeLamports = prize.Shift(9).IntPart()
	}

	if req.ProximityRadius != nil {
		if entry.ClaimType != models.ClaimTypeProximity {
			return helpers.JSONError(c, "RADIUS_ONLY_FOR_PROXIMITY")
		}
		if *req.ProximityRadius < 1 || *req.ProximityRadius > 20 {
			return helpers.JSONError(c, "PROXIMITY_RADIUS_OUT_OF_BOUNDS")
		}
		entry.ProximityRadius = req.ProximityRadius
	}

	if err := applyHintUpdates(&entry, &req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	if err := database.DB.Save(&entry).Error; err != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_UPDATE_PING")
	}

	adminID, _ := c.Locals("admin_id").(string)
	helpers.AuditAction(adminID, models.AuditActionPingUpdate, "ping", entry.ID, "updated")

	return helpers.JSONSuccess(c, "Ping updated", entry)
}

func applyHintUpdates(entry *models.Ping, req *UpdateRequest) error {
	parsePrice := func(raw string) (decimal.Decimal, error) {
		p, err := decimal.NewFromString(raw)
		if err != nil || p.IsNegative() {
			return decimal.Zero, errors.New("INVALID_HINT_PRICE")
		}
		return p, nil
	}

	if req.Hint1Text != nil {
		entry.Hint1Text = *req.Hint1Text
	}
	if req.Hint1Free != nil {
		entry.Hint1Free = *req.Hint1Free
	}
	if req.Hint1PriceUSD != nil {
		p, err := parsePrice(*req.Hint1PriceUSD)
		if err != nil {
			return err
		}
		entry.Hint1PriceUSD = p
	}
	if req.Hint2Text != nil {
		entry.Hint2Text = *req.Hint2Text
	}
	if req.Hint2PriceUSD != nil {
		p, err := parsePrice(*req.Hint2PriceUSD)
		if err != nil {
			return err
		}
		entry.Hint2PriceUSD = p
	}
	if req.Hint3Text != nil {
		entry.Hint3Text = *req.Hint3Text
	}
	if req.Hint3PriceUSD != nil {
		p, err := parsePrice(*req.Hint3PriceUSD)
		if err != nil {
			return err
		}
		entry.Hint3PriceUSD = p
	}

	if entry.Hint2Text != "" && !entry.Hint2PriceUSD.IsPositive() {
		return errors.New("HINT_PRICE_REQUIRED")
	}
	if entry.Hint3Text != "" && !entry.Hint3PriceUSD.IsPositive() {
		return errors.New("HINT_PRICE_REQUIRED")
	}
	return nil
}
