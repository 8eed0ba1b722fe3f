package backup

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// Schedule runs job every interval on its own goroutine, starting with an
// immediate run. Overlapping runs are skipped.
type Schedule struct {
	scheduler *gocron.Scheduler
}

func StartSchedule(interval time.Duration, job func()) (*Schedule, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("backup interval must be positive, got %s", interval)
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(interval).Do(job); err != nil {
		return nil, fmt.Errorf("schedule backup job: %w", err)
	}
	s.StartAsync()
	return &Schedule{scheduler: s}, nil
}

// Stop halts the scheduler; a run already in progress finishes first.
func (s *Schedule) Stop() {
	s.scheduler.Stop()
}
