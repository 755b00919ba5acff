package appointments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

type captureNotifier struct {
	mu    sync.Mutex
	appts []*Appointment
}

func (n *captureNotifier) Dispatch(appt *Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.appts = append(n.appts, appt)
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.appts)
}

func newTestService(repo Repository, notifier Notifier, attempts int) *Service {
	return NewService(repo, notifier, logging.Default(), nil, time.UTC, attempts)
}

func futureBookingRequest() *BookingRequest {
	return &BookingRequest{
		FullName:      "Asha Rao",
		Email:         "asha.rao@example.com",
		Phone:         "9876543210",
		PreferredDate: time.Now().UTC().AddDate(0, 0, 7).Format(DateLayout),
		PreferredTime: "10:00",
		Service:       "Teeth Whitening",
	}
}

func TestCreateHappyPath(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &captureNotifier{}
	svc := newTestService(repo, notifier, 5)

	created, err := svc.Create(context.Background(), futureBookingRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.AppointmentNumber != "APT-000001" {
		t.Errorf("expected APT-000001, got %q", created.AppointmentNumber)
	}
	if notifier.count() != 1 {
		t.Errorf("expected 1 dispatch, got %d", notifier.count())
	}
}

func TestCreateValidationFailureSkipsPersistAndNotify(t *testing.T) {
	repo := NewInMemoryRepository()
	notifier := &captureNotifier{}
	svc := newTestService(repo, notifier, 5)

	req := futureBookingRequest()
	req.Email = ""
	req.PreferredTime = "23:00"

	_, err := svc.Create(context.Background(), req)
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Errorf("expected 2 violations, got %v", verr.Violations)
	}

	if n, _ := repo.Count(context.Background()); n != 0 {
		t.Errorf("expected nothing persisted, got %d records", n)
	}
	if notifier.count() != 0 {
		t.Error("expected no notifications on validation failure")
	}
}

// conflictingRepo wraps the in-memory store and forces the first n inserts to
// collide, simulating a concurrent writer that won the same number.
type conflictingRepo struct {
	*InMemoryRepository
	mu        sync.Mutex
	conflicts int
}

func (r *conflictingRepo) Insert(ctx context.Context, appt *Appointment, number string) (*Appointment, error) {
	r.mu.Lock()
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return nil, ErrDuplicateNumber
	}
	r.mu.Unlock()
	return r.InMemoryRepository.Insert(ctx, appt, number)
}

func TestCreateRetriesOnDuplicateNumber(t *testing.T) {
	repo := &conflictingRepo{InMemoryRepository: NewInMemoryRepository(), conflicts: 2}
	svc := newTestService(repo, nil, 5)

	created, err := svc.Create(context.Background(), futureBookingRequest())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	// Two collisions bump the candidate by the attempt index.
	if created.AppointmentNumber != "APT-000003" {
		t.Errorf("expected APT-000003 after two collisions, got %q", created.AppointmentNumber)
	}
}

func TestCreateAllocationExhaustion(t *testing.T) {
	repo := &conflictingRepo{InMemoryRepository: NewInMemoryRepository(), conflicts: 100}
	svc := newTestService(repo, nil, 3)

	_, err := svc.Create(context.Background(), futureBookingRequest())
	if !errors.Is(err, ErrAllocationConflict) {
		t.Fatalf("expected ErrAllocationConflict, got %v", err)
	}
}

func TestCreateAfterDeleteNeverReissuesNumber(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo, nil, 5)
	ctx := context.Background()

	first, err := svc.Create(ctx, futureBookingRequest())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.AppointmentNumber != "APT-000001" {
		t.Fatalf("expected APT-000001, got %q", first.AppointmentNumber)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	second, err := svc.Create(ctx, futureBookingRequest())
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if second.AppointmentNumber == first.AppointmentNumber {
		t.Fatalf("retired number %q was reissued", first.AppointmentNumber)
	}
	if second.AppointmentNumber != "APT-000002" {
		t.Errorf("expected APT-000002 after a delete, got %q", second.AppointmentNumber)
	}
}

func TestConcurrentCreatesMintDistinctNumbers(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := newTestService(repo, nil, 16)

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan *Appointment, writers)
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := futureBookingRequest()
			req.Email = fmt.Sprintf("patient%d@example.com", i)
			created, err := svc.Create(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			results <- created
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	seen := make(map[string]bool)
	for created := range results {
		if seen[created.AppointmentNumber] {
			t.Fatalf("duplicate appointment number %q minted", created.AppointmentNumber)
		}
		seen[created.AppointmentNumber] = true
	}
	if len(seen) != writers {
		t.Fatalf("expected %d distinct numbers, got %d", writers, len(seen))
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(7); got != "APT-000007" {
		t.Errorf("FormatNumber(7) = %q", got)
	}
	if got := FormatNumber(1234567); got != "APT-1234567" {
		t.Errorf("FormatNumber(1234567) = %q", got)
	}
}
