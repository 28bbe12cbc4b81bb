// Package memory is an in-process booking store for local runs and tests.
// Transactions are serialized, which gives the same outcome as row locks for a single booking.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"booking/internal/domain"
	"booking/internal/repository"
)

// Store holds committed bookings.
type Store struct {
	txMu sync.Mutex // one transaction at a time

	mu       sync.RWMutex
	bookings map[string]domain.Booking
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{bookings: make(map[string]domain.Booking)}
}

// Repository returns a non-transactional view of the store.
func (s *Store) Repository() repository.BookingRepository {
	return &bookingRepo{store: s}
}

// WithinTx runs fn against a staged view. Writes become visible only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repo repository.BookingRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	repo := &bookingRepo{store: s, staged: make(map[string]domain.Booking)}
	if err := fn(repo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range repo.staged {
		s.bookings[id] = b
	}
	return nil
}

// Get returns a copy of a committed booking for assertions.
func (s *Store) Get(id string) (domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Put stores a booking directly, bypassing version checks.
func (s *Store) Put(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

// bookingRepo reads staged rows first when inside a transaction.
type bookingRepo struct {
	store  *Store
	staged map[string]domain.Booking // nil outside a transaction
}

func (r *bookingRepo) lookup(id string) (domain.Booking, bool) {
	if r.staged != nil {
		if b, ok := r.staged[id]; ok {
			return b, true
		}
	}
	return r.store.Get(id)
}

func (r *bookingRepo) write(b domain.Booking) {
	if r.staged != nil {
		r.staged[b.ID] = b
		return
	}
	r.store.Put(b)
}

func (r *bookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	r.write(*b)
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := r.lookup(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *bookingRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *bookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	if r.staged != nil {
		current, ok := r.lookup(b.ID)
		if err := checkVersion(current, ok, b); err != nil {
			return err
		}
		b.Version++
		r.staged[b.ID] = *b
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.bookings[b.ID]
	if err := checkVersion(current, ok, b); err != nil {
		return err
	}
	b.Version++
	r.store.bookings[b.ID] = *b
	return nil
}

func checkVersion(current domain.Booking, found bool, b *domain.Booking) error {
	if !found {
		return repository.ErrNotFound
	}
	if current.Version != b.Version {
		return repository.ErrConcurrentUpdate
	}
	return nil
}

func (r *bookingRepo) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Booking, error) {
	var active *domain.Booking
	for _, b := range r.snapshot() {
		if b.DriverID != driverID || !b.Status.IsActive() {
			continue
		}
		if active == nil || b.CreatedAt.After(active.CreatedAt) {
			active = b
		}
	}
	return active, nil
}

func (r *bookingRepo) ListAvailable(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.Booking, error) {
	result := []*domain.Booking{}
	for _, b := range r.snapshot() {
		if b.Status != domain.BookingStatusPending || b.HasDriver() {
			continue
		}
		if vehicleType != "" && b.VehicleType != vehicleType {
			continue
		}
		result = append(result, b)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RequestTime.Before(result[j].RequestTime)
	})
	return result, nil
}

func (r *bookingRepo) List(ctx context.Context, f repository.BookingFilter, page repository.PageRequest) ([]*domain.Booking, int64, error) {
	matched := []*domain.Booking{}
	for _, b := range r.snapshot() {
		if matches(b, f) {
			matched = append(matched, b)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := page.Offset()
	if start < 0 || start >= len(matched) {
		return []*domain.Booking{}, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// snapshot merges committed and staged rows into fresh copies.
func (r *bookingRepo) snapshot() []*domain.Booking {
	r.store.mu.RLock()
	merged := make(map[string]domain.Booking, len(r.store.bookings))
	for id, b := range r.store.bookings {
		merged[id] = b
	}
	r.store.mu.RUnlock()
	for id, b := range r.staged {
		merged[id] = b
	}

	out := make([]*domain.Booking, 0, len(merged))
	for _, b := range merged {
		b := b
		out = append(out, &b)
	}
	return out
}

func matches(b *domain.Booking, f repository.BookingFilter) bool {
	if f.RiderID != "" && b.RiderID != f.RiderID {
		return false
	}
	if f.DriverID != "" && b.DriverID != f.DriverID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PickupContains != "" && !containsFold(b.Pickup.Address, f.PickupContains) {
		return false
	}
	if f.DropoffContains != "" && !containsFold(b.Dropoff.Address, f.DropoffContains) {
		return false
	}
	if !f.CreatedFrom.IsZero() && b.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedBefore.IsZero() && !b.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Ensure interfaces are satisfied.
var (
	_ repository.Transactor        = (*Store)(nil)
	_ repository.BookingRepository = (*bookingRepo)(nil)
)
