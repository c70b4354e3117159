package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"mailprobe/config"
	controller "mailprobe/controllers"
	"mailprobe/models"
	"mailprobe/utils"
	"mailprobe/verifier"
)

type VerifyWorker struct {
	DB     *gorm.DB
	Engine *controller.Engine
	Logger *log.Logger
}

func NewVerifyWorker(db *gorm.DB, engine *controller.Engine, logger *log.Logger) *VerifyWorker {
	return &VerifyWorker{
		DB:     db,
		Engine: engine,
		Logger: logger,
	}
}

func (vw *VerifyWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(5 * time.Second)

	vw.Logger.Println("Verification worker started")

	ticker := time.NewTicker(config.AppConfig.WorkerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			vw.Logger.Println("Verification worker shutting down...")
			return
		case <-ticker.C:
			vw.processPendingJobs(ctx)
		}
	}
}

// processPendingJobs drains the queue: jobs are claimed and run one at a
// time, each with its own bounded pool of verification goroutines.
func (vw *VerifyWorker) processPendingJobs(ctx context.Context) {
	for {
		job, ok := vw.claimJob()
		if !ok {
			return
		}
		vw.runJob(ctx, job)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// claimJob flips the oldest pending job to processing. The guarded
// update keeps two workers from claiming the same job.
func (vw *VerifyWorker) claimJob() (models.VerificationJob, bool) {
	var job models.VerificationJob
	if err := vw.DB.Where("status = ?", models.JobStatusPending).Order("id").First(&job).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			vw.Logger.Printf("Error fetching pending jobs: %v", err)
		}
		return job, false
	}

	now := time.Now()
	claim := vw.DB.Model(&models.VerificationJob{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.JobStatusProcessing,
			"started_at": now,
		})
	if claim.Error != nil {
		vw.Logger.Printf("Error claiming job %d: %v", job.ID, claim.Error)
		return job, false
	}
	if claim.RowsAffected == 0 {
		// Another worker won the race.
		return job, false
	}

	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return job, true
}

type jobCounters struct {
	mu        sync.Mutex
	processed int
	safe      int
	risky     int
	invalid   int
	unknown   int
}

func (c *jobCounters) record(verdict verifier.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	switch verdict {
	case verifier.VerdictSafe:
		c.safe++
	case verifier.VerdictRisky:
		c.risky++
	case verifier.VerdictInvalid:
		c.invalid++
	default:
		c.unknown++
	}
}

func (vw *VerifyWorker) runJob(ctx context.Context, job models.VerificationJob) {
	vw.Logger.Printf("Processing job %d (%s): %d addresses", job.ID, job.Name, job.TotalCount)

	// Unverified tasks only, so an interrupted job resumes where it
	// stopped instead of re-probing finished addresses.
	var tasks []models.VerificationTask
	if err := vw.DB.Where("job_id = ? AND verdict = ''", job.ID).Order("id").Find(&tasks).Error; err != nil {
		vw.Logger.Printf("Error loading tasks for job %d: %v", job.ID, err)
		vw.finishJob(job.ID, models.JobStatusFailed, nil)
		return
	}

	counters, err := vw.countersFromTasks(job.ID)
	if err != nil {
		vw.Logger.Printf("Error counting finished tasks for job %d: %v", job.ID, err)
		vw.finishJob(job.ID, models.JobStatusFailed, nil)
		return
	}

	// A side goroutine flushes the counters while the job runs so the
	// progress stream sees them move.
	flushDone := make(chan struct{})
	go func() {
		flushTicker := time.NewTicker(2 * time.Second)
		defer flushTicker.Stop()
		for {
			select {
			case <-flushDone:
				return
			case <-flushTicker.C:
				vw.flushCounters(job.ID, counters)
			}
		}
	}()

	workerCount := config.AppConfig.WorkerConcurrency
	if workerCount < 1 {
		workerCount = 1
	}
	taskChan := make(chan models.VerificationTask, workerCount)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				vw.verifyTask(ctx, task, counters)
			}
		}()
	}

	// Feed tasks to workers, stopping early on shutdown
feed:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case taskChan <- task:
		}
	}
	close(taskChan)
	wg.Wait()
	close(flushDone)

	if ctx.Err() != nil {
		// Leave the job processing; the saved counters and per-task
		// verdicts let the next run resume it.
		vw.flushCounters(job.ID, counters)
		return
	}
	vw.finishJob(job.ID, models.JobStatusCompleted, counters)
	vw.Logger.Printf("Job %d completed: %d safe, %d risky, %d invalid, %d unknown",
		job.ID, counters.safe, counters.risky, counters.invalid, counters.unknown)
}

// countersFromTasks rebuilds the tallies from the task rows, which are
// the source of truth when a job was interrupted mid-flush.
func (vw *VerifyWorker) countersFromTasks(jobID uint) (*jobCounters, error) {
	var rows []struct {
		Verdict string
		Count   int
	}
	err := vw.DB.Model(&models.VerificationTask{}).
		Select("verdict, count(*) as count").
		Where("job_id = ? AND verdict <> ''", jobID).
		Group("verdict").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counters := &jobCounters{}
	for _, row := range rows {
		counters.processed += row.Count
		switch verifier.Verdict(row.Verdict) {
		case verifier.VerdictSafe:
			counters.safe += row.Count
		case verifier.VerdictRisky:
			counters.risky += row.Count
		case verifier.VerdictInvalid:
			counters.invalid += row.Count
		default:
			counters.unknown += row.Count
		}
	}
	return counters, nil
}

func (vw *VerifyWorker) verifyTask(ctx context.Context, task models.VerificationTask, counters *jobCounters) {
	result := vw.Engine.Verifier().Verify(ctx, task.Email)

	mxHost := ""
	if len(result.MX.Records) > 0 {
		mxHost = result.MX.Records[0]
	}

	update := map[string]interface{}{
		"verdict":     string(result.Verdict),
		"reason":      result.Reason,
		"provider":    result.Debug.Provider,
		"mx_host":     mxHost,
		"connection":  result.Debug.Connection,
		"duration_ms": result.Debug.DurationMs,
	}
	if err := vw.DB.Model(&models.VerificationTask{}).Where("id = ?", task.ID).Updates(update).Error; err != nil {
		vw.Logger.Printf("Error saving task %d: %v", task.ID, err)
	}

	if result.Verdict == verifier.VerdictUnknown {
		utils.ReportUnknownVerdict(result)
	}
	counters.record(result.Verdict)
}

func (vw *VerifyWorker) finishJob(jobID uint, status string, counters *jobCounters) {
	now := time.Now()
	update := map[string]interface{}{
		"status":       status,
		"completed_at": now,
	}
	if counters != nil {
		counters.mu.Lock()
		update["processed_count"] = counters.processed
		update["safe_count"] = counters.safe
		update["risky_count"] = counters.risky
		update["invalid_count"] = counters.invalid
		update["unknown_count"] = counters.unknown
		counters.mu.Unlock()
	}
	if err := vw.DB.Model(&models.VerificationJob{}).Where("id = ?", jobID).Updates(update).Error; err != nil {
		vw.Logger.Printf("Error finishing job %d: %v", jobID, err)
	}
}

func (vw *VerifyWorker) flushCounters(jobID uint, counters *jobCounters) {
	counters.mu.Lock()
	update := map[string]interface{}{
		"processed_count": counters.processed,
		"safe_count":      counters.safe,
		"risky_count":     counters.risky,
		"invalid_count":   counters.invalid,
		"unknown_count":   counters.unknown,
	}
	counters.mu.Unlock()
	if err := vw.DB.Model(&models.VerificationJob{}).Where("id = ?", jobID).Updates(update).Error; err != nil {
		vw.Logger.Printf("Error flushing counters for job %d: %v", jobID, err)
	}
}
