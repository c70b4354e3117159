package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"mailprobe/config"
	"mailprobe/models"
	"mailprobe/utils"
)

// Verified keys are remembered briefly so a busy client does not pay the
// bcrypt cost on every request.
const authCacheTTL = 5 * time.Minute

type cachedKey struct {
	id        uint
	expiresAt time.Time
}

var (
	authCacheMu sync.RWMutex
	authCache   = map[string]cachedKey{}
)

// APIKeyAuth authenticates requests via the X-API-Key header or a Bearer
// token. The presented key's prefix narrows the lookup to one row; the
// full key is then checked against the stored bcrypt hash.
func APIKeyAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFromRequest(c)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key required",
			})
		}

		prefix, ok := utils.SplitAPIKey(key)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key format",
			})
		}

		if id, ok := cachedKeyID(key); ok {
			c.Locals("apiKeyID", id)
			c.Locals("apiKeyPrefix", prefix)
			return c.Next()
		}

		var apiKey models.APIKey
		if err := config.DB.Where("prefix = ? AND is_active = ?", prefix, true).First(&apiKey).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		if !utils.CheckAPIKey(apiKey.KeyHash, key) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		rememberKey(key, apiKey.ID)
		touchLastUsed(&apiKey)

		c.Locals("apiKeyID", apiKey.ID)
		c.Locals("apiKeyPrefix", prefix)
		return c.Next()
	}
}

// keyFromRequest reads the credential from X-API-Key first, then from a
// Bearer Authorization header.
func keyFromRequest(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func cachedKeyID(key string) (uint, bool) {
	authCacheMu.RLock()
	entry, ok := authCache[key]
	authCacheMu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, false
	}
	return entry.id, true
}

func rememberKey(key string, id uint) {
	authCacheMu.Lock()
	authCache[key] = cachedKey{id: id, expiresAt: time.Now().Add(authCacheTTL)}
	authCacheMu.Unlock()
}

func touchLastUsed(apiKey *models.APIKey) {
	now := time.Now()
	if err := config.DB.Model(apiKey).Update("last_used", now).Error; err != nil {
		utils.LogError("api_key_touch", err, map[string]interface{}{
			"key_id": apiKey.ID,
		})
	}
}
