package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cron runs countdown ticks on a shared cron scheduler. One instance serves
// every session in the process.
type Cron struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewCron(logger *zap.Logger) *Cron {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cron{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// Start begins dispatching ticks.
func (c *Cron) Start() {
	c.cron.Start()
	c.logger.Info("tick scheduler started")
}

// Stop halts dispatch and waits for running callbacks to return.
func (c *Cron) Stop() {
	<-c.cron.Stop().Done()
	c.logger.Info("tick scheduler stopped")
}

// Every schedules fn at a fixed interval of at least one second.
func (c *Cron) Every(interval time.Duration, fn func()) (func(), error) {
	if interval < time.Second {
		return nil, fmt.Errorf("tick interval %s below one second", interval)
	}
	id := c.cron.Schedule(fixedDelay(interval), cron.FuncJob(fn))
	var once sync.Once
	return func() {
		once.Do(func() { c.cron.Remove(id) })
	}, nil
}

// fixedDelay fires a full interval after each activation, keeping sub-second
// offsets that "@every" would round away.
type fixedDelay time.Duration

func (d fixedDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// Entries returns the number of scheduled tick sources.
func (c *Cron) Entries() int {
	return len(c.cron.Entries())
}
