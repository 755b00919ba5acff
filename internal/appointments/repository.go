package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage. Implementations
// must enforce uniqueness of the appointment number: Insert returns
// ErrDuplicateNumber when the chosen number is already taken, which the
// service's allocation loop relies on. Count reports appointments ever
// created, deleted ones included, so the derived sequence never revisits a
// retired number.
type Repository interface {
	Insert(ctx context.Context, appt *Appointment, number string) (*Appointment, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, int64, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps appointments in memory. It backs tests and local
// development without Postgres while enforcing the same number invariant.
type InMemoryRepository struct {
	mu      sync.Mutex
	records map[string]*Appointment
	numbers map[string]struct{}
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Appointment),
		numbers: make(map[string]struct{}),
	}
}

// Insert stores a copy of appt under a fresh UUID with the given number.
func (r *InMemoryRepository) Insert(ctx context.Context, appt *Appointment, number string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.numbers[number]; taken {
		return nil, ErrDuplicateNumber
	}

	stored := *appt
	stored.ID = uuid.NewString()
	stored.AppointmentNumber = number
	stored.CreatedAt = time.Now().UTC()

	r.records[stored.ID] = &stored
	r.numbers[number] = struct{}{}

	out := stored
	return &out, nil
}

// Count returns the number of appointments ever created, retired numbers
// included.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.numbers)), nil
}

// GetByID returns the appointment with the given ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.records[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *appt
	return &out, nil
}

// List returns appointments newest first along with the total count.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*Appointment, 0, len(r.records))
	for _, appt := range r.records {
		out := *appt
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].AppointmentNumber > all[j].AppointmentNumber
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

// Delete removes a record. The number stays reserved so it is never reissued
// to a later booking.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.records, id)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
