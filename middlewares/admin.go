package middlewares

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"

	"pinghunt/helpers"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth gates the admin surface. The caller sends its identity in
// X-Admin-Id and an HMAC-SHA256 of that identity under the shared
// secret in X-Admin-Signature. The verified identity ends up in
// c.Locals("admin_id") for audit rows.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("ADMIN_API_SECRET")
		if secret == "" {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "ADMIN_AUTH_NOT_CONFIGURED")
		}

		adminID := c.Get("X-Admin-Id")
		signature := c.Get("X-Admin-Signature")
		if adminID == "" || signature == "" {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "ADMIN_CREDENTIALS_REQUIRED")
		}

		h := hmac.New(sha256.New, []byte(secret))
		h.Write([]byte(adminID))
		expected := hex.EncodeToString(h.Sum(nil))

		if !hmac.Equal([]byte(signature), []byte(expected)) {
			return helpers.JSONErrorStatus(c, fiber.StatusUnauthorized, "INVALID_ADMIN_SIGNATURE")
		}

		c.Locals("admin_id", adminID)
		return c.Next()
	}
}
