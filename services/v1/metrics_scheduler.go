package v1

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MetricsScheduler triggers the updater on a cron schedule. A tick that is
// still running when the next one is due makes the next one skip.
type MetricsScheduler struct {
	cron    *cron.Cron
	job     cron.Job
	updater *MetricsUpdater
	log     logrus.FieldLogger

	ctx     context.Context
	cancel  context.CancelFunc
	initial sync.WaitGroup
}

// NewMetricsScheduler accepts any standard cron spec or descriptor, e.g. "@every 1m".
func NewMetricsScheduler(spec string, updater *MetricsUpdater, log logrus.FieldLogger) (*MetricsScheduler, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse update schedule %q: %w", spec, err)
	}

	cronLog := cron.PrintfLogger(log)
	s := &MetricsScheduler{
		cron:    cron.New(cron.WithLogger(cronLog)),
		updater: updater,
		log:     log,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	// The initial run shares the wrapped job, so it cannot overlap the first scheduled tick either.
	s.job = cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)).Then(cron.FuncJob(s.tick))
	s.cron.Schedule(schedule, s.job)
	return s, nil
}

func (s *MetricsScheduler) tick() {
	_ = s.updater.Run(s.ctx)
}

// Start begins scheduling and runs once right away.
func (s *MetricsScheduler) Start() {
	s.log.Info("Starting metrics scheduler")
	s.cron.Start()
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.job.Run()
	}()
}

// Stop cancels in-flight fetches and waits for the running tick to return, or for ctx.
func (s *MetricsScheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.initial.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("Metrics scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
