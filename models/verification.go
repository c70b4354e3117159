package models

import (
	"time"

	"gorm.io/gorm"
)

// Job statuses
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// VerificationJob represents one bulk verification run
type VerificationJob struct {
	gorm.Model

	Name   string `json:"name"`
	Status string `gorm:"default:'pending';index" json:"status"` // pending, processing, completed, failed

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Counters
	TotalCount     int `gorm:"default:0" json:"total_count"`
	ProcessedCount int `gorm:"default:0" json:"processed_count"`
	SafeCount      int `gorm:"default:0" json:"safe_count"`
	RiskyCount     int `gorm:"default:0" json:"risky_count"`
	InvalidCount   int `gorm:"default:0" json:"invalid_count"`
	UnknownCount   int `gorm:"default:0" json:"unknown_count"`

	// Relations
	Tasks []VerificationTask `gorm:"foreignKey:JobID" json:"-"`
}

// VerificationTask stores the outcome for a single address within a job
type VerificationTask struct {
	gorm.Model
	JobID uint   `gorm:"not null;index" json:"job_id"`
	Email string `gorm:"not null" json:"email"`

	// Empty until the worker has verified the address
	Verdict    string `gorm:"index" json:"verdict"` // safe, risky, invalid, unknown
	Reason     string `json:"reason"`
	Provider   string `json:"provider"`
	MXHost     string `json:"mx_host"`
	Connection string `json:"connection"`
	DurationMs int64  `gorm:"default:0" json:"duration_ms"`
}
