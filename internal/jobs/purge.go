package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"globetrotter-service/internal/app"
)

// DefaultPurgeInterval is how often expired challenges are removed.
const DefaultPurgeInterval = 10 * time.Minute

// PurgeScheduler periodically deletes expired challenges from stores that do
// not expire them natively.
type PurgeScheduler struct {
	purger   app.ChallengePurger
	interval time.Duration
	sched    gocron.Scheduler
}

func NewPurgeScheduler(purger app.ChallengePurger, interval time.Duration) *PurgeScheduler {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return &PurgeScheduler{purger: purger, interval: interval}
}

// Start registers the purge job and starts the scheduler. Stop must be called
// to release its goroutines.
func (p *PurgeScheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.RunOnce(ctx) }),
		gocron.WithName("purge-expired-challenges"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}
	sched.Start()
	p.sched = sched
	log.Printf("challenge purge scheduled every %s", p.interval)
	return nil
}

// RunOnce purges expired challenges and reports how many were removed.
func (p *PurgeScheduler) RunOnce(ctx context.Context) int {
	n, err := p.purger.PurgeExpired(ctx)
	if err != nil {
		log.Printf("challenge purge failed: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("purged %d expired challenges", n)
	}
	return n
}

func (p *PurgeScheduler) Stop() error {
	if p.sched == nil {
		return nil
	}
	return p.sched.Shutdown()
}
