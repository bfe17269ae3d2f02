package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/ndlano/taxonomy-typegen/pkg/model"
)

// Generator is the part of GeneratorService the job needs
type Generator interface {
	Generate(ctx context.Context) (*model.RunResult, error)
}

// RegenerationJob runs the generator on a cron schedule
type RegenerationJob struct {
	generator Generator
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	running   bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewRegenerationJob creates a job for a cron expression with a seconds
// field, e.g. "0 */5 * * * *"
func NewRegenerationJob(generator Generator, schedule string) *RegenerationJob {
	return &RegenerationJob{
		generator: generator,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start schedules the job
func (j *RegenerationJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("regeneration job is already running")
	}

	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.RunNow(ctx); err != nil {
			log.Printf("Scheduled regeneration failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule regeneration job: %w", err)
	}

	j.cron.Start()
	j.running = true
	log.Printf("Regeneration job started with schedule: %s", j.schedule)

	go j.monitor(ctx)
	return nil
}

// Stop waits for a running regeneration to finish and stops the scheduler
func (j *RegenerationJob) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return fmt.Errorf("regeneration job is not running")
	}

	<-j.cron.Stop().Done()
	close(j.stopChan)
	<-j.doneChan

	j.running = false
	log.Println("Regeneration job stopped")
	return nil
}

// IsRunning returns whether the job is scheduled
func (j *RegenerationJob) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.running
}

// RunNow triggers an immediate generation run
func (j *RegenerationJob) RunNow(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	result, err := j.generator.Generate(runCtx)
	if err != nil {
		return err
	}
	log.Printf("Scheduled regeneration finished: run %s, changed=%t", result.Run.ID, result.Run.Changed)
	return nil
}

func (j *RegenerationJob) monitor(ctx context.Context) {
	defer close(j.doneChan)

	select {
	case <-ctx.Done():
		log.Println("Regeneration job context canceled")
	case <-j.stopChan:
	}
}
