package country

import (
	"context"
	"sync"
	"time"

	"countryfx/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const defaultRefreshInterval = 24 * time.Hour

// Refresher is what the scheduler triggers; Orchestrator implements it.
type Refresher interface {
	Run(ctx context.Context, batchSize int) (domain.RefreshSummary, error)
}

type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	batchSize int
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		summary, runErr := s.refresher.Run(jobCtx, s.batchSize)
		if runErr != nil {
			logrus.WithError(runErr).Error("Scheduled refresh failed")
			return
		}
		logrus.Infof("Scheduled refresh done: %d processed, %d successful, %d failed, %d skipped",
			summary.Processed, summary.Successful, summary.Failed, summary.Skipped)
	}

	// singleton mode keeps scheduled runs from overlapping
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func NewScheduler(refresher Refresher, interval time.Duration, batchSize int) *Scheduler {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Scheduler{refresher: refresher, interval: interval, batchSize: batchSize}
}
