package controller

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/likexian/whois"
	"gorm.io/gorm"

	"mailprobe/config"
	"mailprobe/utils"
	"mailprobe/verifier"
)

type VerifyController struct {
	DB     *gorm.DB
	Engine *Engine
	Cache  fiber.Storage
	Logger *log.Logger
}

func NewVerifyController(db *gorm.DB, engine *Engine, cache fiber.Storage, logger *log.Logger) *VerifyController {
	return &VerifyController{
		DB:     db,
		Engine: engine,
		Cache:  cache,
		Logger: logger,
	}
}

type checkEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	// Whois attaches the domain's WHOIS record to the response.
	Whois bool `json:"whois"`
	// Fresh bypasses the verdict cache.
	Fresh bool `json:"fresh"`
}

type checkEmailResponse struct {
	*verifier.Result
	Whois  string `json:"whois,omitempty"`
	Cached bool   `json:"cached"`
}

// CheckEmail handles single email verification
func (vc *VerifyController) CheckEmail(c *fiber.Ctx) error {
	var req checkEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	cacheKey := "verify:" + strings.ToLower(strings.TrimSpace(req.Email))

	if !req.Fresh {
		if cached := vc.cachedResult(cacheKey); cached != nil {
			return c.JSON(vc.buildResponse(cached, req.Whois, true))
		}
	}

	result := vc.Engine.Verifier().Verify(c.Context(), req.Email)

	if result.Verdict == verifier.VerdictUnknown {
		utils.ReportUnknownVerdict(result)
	}
	vc.storeResult(cacheKey, result)

	return c.JSON(vc.buildResponse(result, req.Whois, false))
}

func (vc *VerifyController) buildResponse(result *verifier.Result, withWhois, cached bool) checkEmailResponse {
	resp := checkEmailResponse{Result: result, Cached: cached}
	if withWhois && result.Syntax.Domain != "" {
		// WHOIS is best-effort enrichment; a registry failure never
		// fails the verification itself.
		if info, err := whois.Whois(result.Syntax.Domain); err == nil {
			resp.Whois = info
		}
	}
	return resp
}

func (vc *VerifyController) cachedResult(key string) *verifier.Result {
	if vc.Cache == nil {
		return nil
	}
	raw, err := vc.Cache.Get(key)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var result verifier.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

func (vc *VerifyController) storeResult(key string, result *verifier.Result) {
	if vc.Cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := vc.Cache.Set(key, raw, config.AppConfig.CacheTTL); err != nil {
		vc.Logger.Printf("Failed to cache verdict for %s: %v", result.Input, err)
	}
}
