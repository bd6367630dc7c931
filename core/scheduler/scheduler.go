package scheduler

import (
	"fmt"

	"booking-gateway/core/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic maintenance jobs (auth client refresh, counter janitor).
type Scheduler struct {
	cron *cron.Cron
	jobs int
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
}

// Add registers fn under a standard cron spec or a descriptor such as "@every 45m".
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, func() {
		logger.Debug("Scheduler:Run", "job", name)
		fn()
	}); err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	s.jobs++
	logger.Info("Scheduler:Add", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Len() int { return s.jobs }

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler:Stopped")
}
