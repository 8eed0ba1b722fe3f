package backup

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestStartScheduleRunsJob(t *testing.T) {
	var runs atomic.Int32
	ran := make(chan struct{}, 1)

	s, err := StartSchedule(time.Hour, func() {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("StartSchedule() error = %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("scheduled job never ran")
	}
	if got := runs.Load(); got != 1 {
		t.Fatalf("job ran %d times within the first interval; want 1", got)
	}
}

func TestStartScheduleRejectsNonPositiveInterval(t *testing.T) {
	if _, err := StartSchedule(0, func() {}); err == nil {
		t.Fatalf("StartSchedule(0) = nil error; want failure")
	}
}
