package claim

import (
	"errors"
	"fmt"

	"pinghunt/database"
	"pinghunt/helpers"
	"pinghunt/models"
	"pinghunt/services/proximity"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	ClaimantWallet string `json:"claimant_wallet"`

	// nfc flow
	ProofURL string `json:"proof_url"`

	// proximity flow
	Lat     *float64           `json:"lat"`
	Lng     *float64           `json:"lng"`
	History []proximity.Sample `json:"history"`
}

// SubmitHandler drives unclaimed -> pending. The guard runs twice: a
// readable rejection up front, then atomically in the UPDATE's WHERE
// clause so concurrent submissions cannot both win.
func SubmitHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return helpers.JSONError(c, "INVALID_PING_ID")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.ClaimantWallet == "" {
		return helpers.JSONError(c, "CLAIMANT_WALLET_REQUIRED")
	}

	var entry models.Ping
	if err := database.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.JSONErrorStatus(c, fiber.StatusNotFound, "PING_NOT_FOUND")
		}
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_LOAD_PING")
	}

	if !entry.Active {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "PING_INACTIVE")
	}
	if entry.ClaimStatus != models.ClaimStatusUnclaimed {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "PING_NOT_UNCLAIMED")
	}

	var proof string
	var distance float64

	switch entry.ClaimType {
	case models.ClaimTypeNFC:
		if req.ProofURL == "" {
			return helpers.JSONError(c, "PROOF_URL_REQUIRED")
		}
		proof = req.ProofURL

	case models.ClaimTypeProximity:
		if req.Lat == nil || req.Lng == nil {
			return helpers.JSONError(c, "COORDINATES_REQUIRED")
		}
		result := proximity.Validate(*req.Lat, *req.Lng, &entry, req.History)
		if !result.OK {
			return helpers.JSONErrorData(c, fiber.StatusBadRequest, result.Reason, fiber.Map{
				"distance_meters": helpers.FormatFloat(result.DistanceMeters, 2),
			})
		}
		distance = result.DistanceMeters
		proof = fmt.Sprintf("lat=%.6f,lng=%.6f,distance=%.2fm", *req.Lat, *req.Lng, distance)

	default:
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "INVALID_CLAIM_TYPE")
	}

	res := database.DB.Model(&models.Ping{}).
		Where("id = ? AND claim_status = ?", entry.ID, models.ClaimStatusUnclaimed).
		Updates(map[string]any{
			"claim_status":    models.ClaimStatusPending,
			"claimant_wallet": req.ClaimantWallet,
			"claim_proof":     proof,
		})
	if res.Error != nil {
		return helpers.JSONErrorStatus(c, fiber.StatusInternalServerError, "FAILED_TO_SUBMIT_CLAIM")
	}
	if res.RowsAffected == 0 {
		return helpers.JSONErrorStatus(c, fiber.StatusConflict, "PING_NOT_UNCLAIMED")
	}

	helpers.AuditAction(req.ClaimantWallet, models.AuditActionClaimSubmit, "ping", entry.ID, proof)

	return helpers.JSONSuccess(c, "Claim submitted", fiber.Map{
		"ping_id":      entry.ID,
		"claim_status": models.ClaimStatusPending,
	})
}
