package background

import (
	"context"
	"log"
	"sync"
	"time"

	"gudangmitra/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages periodic background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	alertSvc  *jobs.LowStockAlertService
	jobMap    map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(alertSvc *jobs.LowStockAlertService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alertSvc:  alertSvc,
		jobMap:    make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Low stock alerts - every 30 minutes
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock alerts job: %v", err)
	} else {
		js.jobMap["low-stock-alerts"] = alertsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobMap))
}

// AddJob registers a custom periodic task at runtime.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	js.jobMap[name] = job
	return nil
}

func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobMap[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobMap, name)
		return err
	}
	return nil
}

func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobMap))
	for name := range js.jobMap {
		names = append(names, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobMap),
		"jobs":       names,
	}
}
