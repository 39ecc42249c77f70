package scheduler

import (
	"context"
	"log"
	"time"
)

// Job is a named periodic task with its own interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func()
}

// Scheduler dispatches named periodic jobs. Every job runs on its own
// goroutine so a slow job (say, one blocked on a mapping call) never delays
// the others or the interactive request path.
type Scheduler struct {
	jobs []Job
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{}
}

// AddJob registers a periodic job. Must be called before Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, run func()) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start launches one goroutine per job. Each job runs once immediately, then
// on every tick, until ctx is cancelled. A panicking run is logged and does
// not kill the job's loop.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		go s.runLoop(ctx, job)
	}
	log.Printf("⏰ Scheduler started with %d jobs", len(s.jobs))
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	log.Printf("⏰ Job %q scheduled every %s", job.Name, job.Interval)

	s.runOnce(job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("⏰ Job %q stopped", job.Name)
			return
		case <-ticker.C:
			s.runOnce(job)
		}
	}
}

func (s *Scheduler) runOnce(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Job %q panicked: %v", job.Name, r)
		}
	}()

	start := time.Now()
	job.Run()
	log.Printf("⏰ Job %q finished in %s", job.Name, time.Since(start).Round(time.Millisecond))
}
