package logging

import (
	"context"
	"log"
	"sync"
	"time"
)

// CleanupScheduler runs a Cleaner once at start and then on every interval.
type CleanupScheduler struct {
	cleaner  *Cleaner
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewCleanupScheduler(cleaner *Cleaner, interval time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		cleaner:  cleaner,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the cleanup loop. It exits when ctx is cancelled or Stop is called.
func (s *CleanupScheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runCleanup()
		for {
			select {
			case <-ticker.C:
				s.runCleanup()
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *CleanupScheduler) runCleanup() {
	deleted, err := s.cleaner.Cleanup()
	if err != nil {
		log.Printf("[Logging] Cleanup error: %v", err)
	} else if deleted > 0 {
		log.Printf("[Logging] Cleaned up %d old log files", deleted)
	}
}

// Stop ends the loop and waits for it to exit. Only valid after Start.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}
