package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mailprobe/config"
	"mailprobe/models"
	"mailprobe/utils"
)

type ProxyController struct {
	DB     *gorm.DB
	Engine *Engine
	Logger *log.Logger
}

func NewProxyController(db *gorm.DB, engine *Engine, logger *log.Logger) *ProxyController {
	return &ProxyController{
		DB:     db,
		Engine: engine,
		Logger: logger,
	}
}

// ListProxies returns the pool. Passwords never leave the database.
func (pc *ProxyController) ListProxies(c *fiber.Ctx) error {
	var proxies []models.Proxy
	if err := pc.DB.Order("label").Find(&proxies).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load proxies", nil)
	}
	return c.JSON(utils.SuccessResponse(proxies))
}

type createProxyRequest struct {
	Label          string `json:"label" validate:"required"`
	Host           string `json:"host" validate:"required"`
	Port           int    `json:"port" validate:"required,gte=1,lte=65535"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=0"`
	InPool         *bool  `json:"in_pool"`
}

// CreateProxy adds an egress to the pool and rebuilds the engine
func (pc *ProxyController) CreateProxy(c *fiber.Ctx) error {
	var req createProxyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	password, err := utils.Encrypt(req.Password)
	if err != nil {
		pc.Logger.Printf("Failed to encrypt proxy password: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store proxy", nil)
	}

	inPool := true
	if req.InPool != nil {
		inPool = *req.InPool
	}

	proxy := models.Proxy{
		Label:          req.Label,
		Host:           req.Host,
		Port:           req.Port,
		Username:       req.Username,
		Password:       password,
		TimeoutSeconds: req.TimeoutSeconds,
		InPool:         inPool,
		IsActive:       true,
	}
	if err := pc.DB.Create(&proxy).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "A proxy with this label already exists", nil)
		}
		pc.Logger.Printf("Failed to create proxy: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store proxy", nil)
	}

	if err := pc.Engine.Reload(); err != nil {
		utils.LogError("engine_reload", err, map[string]interface{}{"proxy": proxy.Label})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Proxy stored but engine reload failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(proxy))
}

// DeleteProxy removes an egress and rebuilds the engine
func (pc *ProxyController) DeleteProxy(c *fiber.Ctx) error {
	var proxy models.Proxy
	if err := pc.DB.First(&proxy, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Proxy not found", nil)
	}

	if pinnedBy := pinningProvider(proxy.Label); pinnedBy != "" {
		return utils.ErrorResponse(c, fiber.StatusConflict,
			"Proxy is pinned by the "+pinnedBy+" provider strategy", nil)
	}

	// Hard delete: the unique label must be reusable immediately.
	if err := pc.DB.Unscoped().Delete(&proxy).Error; err != nil {
		pc.Logger.Printf("Failed to delete proxy %d: %v", proxy.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete proxy", nil)
	}

	if err := pc.Engine.Reload(); err != nil {
		utils.LogError("engine_reload", err, map[string]interface{}{"proxy": proxy.Label})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Proxy deleted but engine reload failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Proxy deleted",
		"label":   proxy.Label,
	})
}

// pinningProvider reports which provider strategy pins the given label.
func pinningProvider(label string) string {
	for provider, spec := range config.AppConfig.ProviderStrategies {
		if at := strings.Index(spec, "@"); at >= 0 && spec[at+1:] == label {
			return provider
		}
	}
	return ""
}
