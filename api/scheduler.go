/*
scheduler.go - Automated reminder scheduler

PURPOSE:
  Periodically publishes reservation.reminder events for confirmed
  reservations that start roughly Lead from now.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each tick covers [previous end, now+Lead+CheckInterval). The first
    window starts at now+Lead. A late tick picks up the gap and an early
    one does not repeat what was covered, so each reservation is reminded
    once
  - Publishing goes through ReservationService, so the configured event
    sink (RabbitMQ or log) receives the reminders

CONFIGURATION:
  - Lead:          How far ahead to remind (default: 24 hours)
  - CheckInterval: How often to check (default: 15 minutes)
  - Enabled:       Whether scheduler is active (default: false)

USAGE:
  scheduler := NewReminderScheduler(handler.Reservations, log)
  scheduler.Enabled = true
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - booking/lifecycle.go: SendReminders
  - events/amqp.go: Broker delivery
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/reservation-engine/booking"
)

// ReminderScheduler sends reminders on a ticker.
type ReminderScheduler struct {
	Reservations  *booking.ReservationService
	Lead          time.Duration
	CheckInterval time.Duration
	Enabled       bool

	log    logrus.FieldLogger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	windowMu sync.Mutex
	covered  time.Time // end of the last window sent
}

func NewReminderScheduler(reservations *booking.ReservationService, log logrus.FieldLogger) *ReminderScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReminderScheduler{
		Reservations:  reservations,
		Lead:          24 * time.Hour,
		CheckInterval: 15 * time.Minute,
		log:           log.WithField("component", "reminders"),
	}
}

// Start begins the scheduler. It is a no-op when disabled or running.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.log.Info("scheduler disabled, not starting")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)
	go rs.run(rs.ticker, rs.stop)

	rs.log.WithFields(logrus.Fields{
		"lead":     rs.Lead.String(),
		"interval": rs.CheckInterval.String(),
	}).Info("scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	rs.log.Info("scheduler stopped")
}

func (rs *ReminderScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow sends the reminders for one window and returns how many went out.
// The window starts where the previous successful run ended.
func (rs *ReminderScheduler) RunNow(ctx context.Context) int {
	rs.windowMu.Lock()
	defer rs.windowMu.Unlock()

	now := rs.Reservations.Now()
	from := now.Add(rs.Lead)
	if !rs.covered.IsZero() {
		from = rs.covered
		if from.Before(now) {
			from = now
		}
	}
	to := now.Add(rs.Lead + rs.CheckInterval)
	if !to.After(from) {
		return 0
	}

	n, err := rs.Reservations.SendReminders(ctx, from, to)
	if err != nil {
		rs.log.WithError(err).Error("sending reminders failed")
		return 0
	}
	rs.covered = to
	if n > 0 {
		rs.log.WithFields(logrus.Fields{
			"count": n,
			"from":  from.Format(time.RFC3339),
			"to":    to.Format(time.RFC3339),
		}).Info("reminders sent")
	}
	return n
}
