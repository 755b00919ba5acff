package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sashasmiles/clinic-backend/internal/observability/metrics"
	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

var bookingTracer = otel.Tracer("clinic.internal.appointments")

// Notifier fans a persisted appointment out to the notification channels.
// Dispatch must not block the caller; outcomes never reach the booking
// response.
type Notifier interface {
	Dispatch(appt *Appointment)
}

// Service runs the booking intake pipeline: validate, allocate a unique
// appointment number, persist, then hand off to the notification fanout.
type Service struct {
	repo        Repository
	notifier    Notifier
	logger      *logging.Logger
	metrics     *metrics.BookingMetrics
	loc         *time.Location
	maxAttempts int
}

// NewService constructs the intake service. notifier and m may be nil.
func NewService(repo Repository, notifier Notifier, logger *logging.Logger, m *metrics.BookingMetrics, loc *time.Location, maxAttempts int) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		metrics:     m,
		loc:         loc,
		maxAttempts: maxAttempts,
	}
}

// FormatNumber renders a sequence value as the human-readable booking
// identifier, e.g. 7 -> "APT-000007".
func FormatNumber(seq int64) string {
	return fmt.Sprintf("APT-%06d", seq)
}

// Create validates the request, persists the appointment under a freshly
// allocated number and dispatches notifications. The returned error is either
// a *ValidationError, ErrAllocationConflict, or a store failure.
//
// Number allocation derives the sequence from the count of appointments ever
// created (deletes retire rows, they never shrink the count) and is therefore
// racy under concurrent writers; the unique index is the authority and
// collisions are retried with a recomputed count. The attempt index is added
// to the candidate so the loop also makes progress when skipped numbers have
// left the count behind the high-water mark.
func (s *Service) Create(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.create")
	defer span.End()

	appt, verr := ValidateBooking(req, time.Now().In(s.loc))
	if verr != nil {
		s.metrics.ObserveValidationFailure(len(verr.Violations))
		s.logger.Info("booking rejected", "violations", verr.Violations)
		return nil, verr
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		count, err := s.repo.Count(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		number := FormatNumber(count + 1 + int64(attempt))

		created, err := s.repo.Insert(ctx, appt, number)
		if errors.Is(err, ErrDuplicateNumber) {
			s.metrics.ObserveAllocationRetry()
			s.logger.Warn("appointment number collision, retrying",
				"number", number,
				"attempt", attempt+1,
			)
			continue
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		span.SetAttributes(attribute.String("clinic.appointment_number", created.AppointmentNumber))
		s.metrics.ObserveBookingCreated()
		s.logger.Info("booking created",
			"appointment_number", created.AppointmentNumber,
			"service", created.Service,
			"preferred_date", created.PreferredDate.Format(DateLayout),
		)

		if s.notifier != nil {
			s.notifier.Dispatch(created)
		}
		return created, nil
	}

	err := fmt.Errorf("%w after %d attempts", ErrAllocationConflict, s.maxAttempts)
	span.RecordError(err)
	s.logger.Error("appointment number allocation failed", "attempts", s.maxAttempts)
	return nil, err
}

// Get returns a single appointment by store ID.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of appointments newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, int64, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes an appointment.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
