package game

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// StartSweeper schedules the manager's expiry sweep on a fixed
// interval. The returned scheduler should be shut down on exit.
func StartSweeper(m *Manager, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			m.Sweep()
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.WithField("interval", interval).Info("expiry sweeper started")
	return sched, nil
}
