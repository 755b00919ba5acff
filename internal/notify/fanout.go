package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
	"github.com/sashasmiles/clinic-backend/internal/observability/metrics"
	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

// Channel is one notification destination for a confirmed booking.
type Channel interface {
	Name() string
	Notify(ctx context.Context, appt *appointments.Appointment) error
}

// Fanout dispatches a persisted appointment to every configured channel.
// Channels run concurrently on their own goroutines with a context detached
// from the request, so the booking response never waits on them and a slow or
// failing channel cannot affect the others. There is no cancellation: once
// dispatched, each channel runs to completion or failure.
type Fanout struct {
	channels []Channel
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewFanout creates a fanout over the given channels. timeout bounds each
// channel's outbound call; zero means 15s.
func NewFanout(channels []Channel, logger *logging.Logger, m *metrics.BookingMetrics, timeout time.Duration) *Fanout {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fanout{
		channels: channels,
		logger:   logger,
		metrics:  m,
		timeout:  timeout,
	}
}

// Dispatch fires all channels for the appointment and returns immediately.
func (f *Fanout) Dispatch(appt *appointments.Appointment) {
	for _, ch := range f.channels {
		f.wg.Add(1)
		go func(ch Channel) {
			defer f.wg.Done()
			f.run(ch, appt)
		}(ch)
	}
}

func (f *Fanout) run(ch Channel, appt *appointments.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := ch.Notify(ctx, appt); err != nil {
		f.metrics.ObserveNotification(ch.Name(), "error")
		f.logger.Error("notification channel failed",
			"channel", ch.Name(),
			"appointment_number", appt.AppointmentNumber,
			"error", err,
		)
		return
	}
	f.metrics.ObserveNotification(ch.Name(), "ok")
	f.logger.Info("notification sent",
		"channel", ch.Name(),
		"appointment_number", appt.AppointmentNumber,
	)
}

// Wait blocks until all dispatched notifications have finished. Only tests
// and graceful shutdown use it; the request path never does.
func (f *Fanout) Wait() {
	f.wg.Wait()
}

var _ appointments.Notifier = (*Fanout)(nil)
