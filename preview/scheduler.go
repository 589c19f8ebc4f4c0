package preview

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vortitron/wxicons"
)

// Scheduler rebuilds the icon table on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	builder   *wxicons.Builder
	store     *Store
	manifest  wxicons.ManifestOptions
	interval  time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(b *wxicons.Builder, store *Store, opts wxicons.ManifestOptions, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		builder:   b,
		store:     store,
		manifest:  opts,
		interval:  interval,
	}
}

// Rebuild builds the table once and publishes it to the store. The previous
// table stays in place when the build fails.
func (s *Scheduler) Rebuild(ctx context.Context) error {
	table, report, err := s.builder.Build(ctx)
	if report != nil {
		for _, sk := range report.Skipped {
			log.Printf("scheduler: skipped %s: %v", sk.Key, sk.Err)
		}
	}
	if err != nil {
		return err
	}
	s.store.Set(table, wxicons.BuildManifest(table, s.manifest))
	log.Printf("scheduler: built %d icons", table.Len())
	return nil
}

// Start schedules the periodic rebuild. A non-positive interval disables it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: rebuild interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		if err := s.Rebuild(ctx); err != nil {
			log.Printf("scheduler: rebuild failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future rebuilds.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
