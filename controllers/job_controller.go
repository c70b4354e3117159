package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"mailprobe/models"
	"mailprobe/utils"
)

type JobController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewJobController(db *gorm.DB, logger *log.Logger) *JobController {
	return &JobController{
		DB:     db,
		Logger: logger,
	}
}

type createJobRequest struct {
	Name   string   `json:"name"`
	Emails []string `json:"emails" validate:"required,min=1,max=50000,dive,email"`
}

// CreateJob accepts a batch of addresses and queues them for the worker
func (jc *JobController) CreateJob(c *fiber.Ctx) error {
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Name == "" {
		req.Name = "Bulk verification " + time.Now().Format("2006-01-02")
	}

	job := models.VerificationJob{
		Name:       req.Name,
		Status:     models.JobStatusPending,
		TotalCount: len(req.Emails),
	}

	err := jc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&job).Error; err != nil {
			return err
		}

		tasks := make([]models.VerificationTask, 0, len(req.Emails))
		for _, email := range req.Emails {
			tasks = append(tasks, models.VerificationTask{
				JobID: job.ID,
				Email: email,
			})
		}
		return tx.CreateInBatches(tasks, 500).Error
	})
	if err != nil {
		jc.Logger.Printf("Failed to create verification job: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create verification job", nil)
	}

	return c.JSON(fiber.Map{
		"message": "Verification job created",
		"job_id":  job.ID,
	})
}

// GetJob returns a job's status and counters
func (jc *JobController) GetJob(c *fiber.Ctx) error {
	var job models.VerificationJob
	if err := jc.DB.First(&job, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Verification job not found", nil)
	}
	return c.JSON(job)
}

// GetJobResults returns a page of per-address outcomes, optionally
// filtered by verdict
func (jc *JobController) GetJobResults(c *fiber.Ctx) error {
	jobID := utils.ParseUint(c.Params("id"))

	var job models.VerificationJob
	if err := jc.DB.First(&job, jobID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Verification job not found", nil)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	query := jc.DB.Model(&models.VerificationTask{}).Where("job_id = ?", jobID)
	if verdict := c.Query("verdict"); verdict != "" {
		switch verdict {
		case "safe", "risky", "invalid", "unknown":
			query = query.Where("verdict = ?", verdict)
		default:
			return utils.ErrorResponse(c, fiber.StatusBadRequest,
				"verdict must be one of: safe risky invalid unknown", nil)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count results", nil)
	}

	var tasks []models.VerificationTask
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load results", nil)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  tasks,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

type jobProgress struct {
	Status    string `json:"status"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Safe      int    `json:"safe"`
	Risky     int    `json:"risky"`
	Invalid   int    `json:"invalid"`
	Unknown   int    `json:"unknown"`
}

// HandleJobProgressWS streams job counters until the job finishes or the
// client disconnects
func (jc *JobController) HandleJobProgressWS(c *websocket.Conn) {
	defer c.Close()

	jobID := utils.ParseUint(c.Params("id"))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		var job models.VerificationJob
		if err := jc.DB.First(&job, jobID).Error; err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Verification job not found"})
			return
		}

		progress := jobProgress{
			Status:    job.Status,
			Total:     job.TotalCount,
			Processed: job.ProcessedCount,
			Safe:      job.SafeCount,
			Risky:     job.RiskyCount,
			Invalid:   job.InvalidCount,
			Unknown:   job.UnknownCount,
		}
		if err := c.WriteJSON(progress); err != nil {
			log.Printf("Error writing JSON: %v", err)
			return
		}

		if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed {
			return
		}
		<-ticker.C
	}
}
