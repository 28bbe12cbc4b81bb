package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"booking/internal/domain"
	"booking/internal/events"
	"booking/internal/payment"
	"booking/internal/redis"
	"booking/internal/repository/memory"
	"booking/internal/service"
	"booking/internal/userdirectory"
)

// ──────────────────────────────────────────────
// MOCK USER DIRECTORY
// ──────────────────────────────────────────────

// MockDirectory is a mock implementation of userdirectory.Directory.
type MockDirectory struct {
	mu       sync.RWMutex
	profiles map[string]*userdirectory.Profile

	// Counters for verification
	GetUserCallCount int32

	// Error injection
	GetUserError error
}

// NewMockDirectory creates a new mock directory.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		profiles: make(map[string]*userdirectory.Profile),
	}
}

// AddProfile adds a profile to the mock directory.
func (m *MockDirectory) AddProfile(p *userdirectory.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *MockDirectory) GetUser(ctx context.Context, userID string) (*userdirectory.Profile, error) {
	atomic.AddInt32(&m.GetUserCallCount, 1)
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, userdirectory.ErrUserNotFound
	}
	copy := *p
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Types returns the published event types in order.
func (m *MockPublisher) Types() []events.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]events.Type, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

// Last returns the most recent event.
func (m *MockPublisher) Last() (events.BookingEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return events.BookingEvent{}, false
	}
	return m.events[len(m.events)-1], true
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of redis.LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]string // driver ID -> token

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]string),
	}
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[driverID]; held {
		return "", nil
	}
	token := uuid.NewString()
	m.locks[driverID] = token
	return token, nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[driverID] == token {
		delete(m.locks, driverID)
	}
	return nil
}

// Hold takes the driver lock on behalf of another request.
func (m *MockLockStore) Hold(driverID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[driverID] = "held-elsewhere"
}

// IsLocked checks if a driver is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.locks[driverID]
	return held
}

// ──────────────────────────────────────────────
// MOCK PAYMENT PROVIDER
// ──────────────────────────────────────────────

// MockPaymentProvider records intent requests and can be made to fail.
type MockPaymentProvider struct {
	mu       sync.Mutex
	requests []payment.IntentRequest

	// Error injection
	CreateError error
}

// NewMockPaymentProvider creates a new mock payment provider.
func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CreateError != nil {
		return nil, m.CreateError
	}
	return &payment.Intent{
		ID:           "pi_test_" + req.BookingID,
		ClientSecret: "secret_" + req.BookingID,
		AmountMinor:  payment.ToMinorUnits(req.Amount),
		Currency:     req.Currency,
	}, nil
}

// Requests returns the intent requests received so far.
func (m *MockPaymentProvider) Requests() []payment.IntentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payment.IntentRequest(nil), m.requests...)
}

// ──────────────────────────────────────────────
// FIXED DISTANCE
// ──────────────────────────────────────────────

// FixedDistance always returns the same distance.
type FixedDistance struct {
	Km decimal.Decimal
}

func (f FixedDistance) Estimate(_, _ domain.Location) decimal.Decimal { return f.Km }

// ──────────────────────────────────────────────
// HARNESS
// ──────────────────────────────────────────────

var errDirectoryDown = errors.New("user service unavailable")

// Harness wires the services against the in-memory store and the mocks above.
type Harness struct {
	Store     *memory.Store
	Directory *MockDirectory
	Publisher *MockPublisher
	Locks     *MockLockStore
	Provider  *MockPaymentProvider
	LogHook   *test.Hook

	Bookings *service.BookingService
	Queries  *service.QueryService
	Payments *service.PaymentService
	Receipts *service.ReceiptService
}

// NewHarness builds a harness whose estimator always reports distanceKm.
func NewHarness(distanceKm string) *Harness {
	h := &Harness{
		Store:     memory.NewStore(),
		Directory: NewMockDirectory(),
		Publisher: NewMockPublisher(),
		Locks:     NewMockLockStore(),
		Provider:  NewMockPaymentProvider(),
	}

	var log *logrus.Logger
	log, h.LogHook = test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	repo := h.Store.Repository()
	enricher := service.NewEnricher(h.Directory, log)
	notifier := service.NewNotifier(h.Publisher, log, 0)
	estimator := FixedDistance{Km: decimal.RequireFromString(distanceKm)}

	var locks redis.LockStoreInterface = h.Locks
	h.Bookings = service.NewBookingService(h.Store, repo, estimator, locks, time.Second, enricher, notifier, log)
	h.Queries = service.NewQueryService(repo, enricher)
	h.Payments = service.NewPaymentService(h.Store, repo, h.Provider, "inr", notifier, log)
	h.Receipts = service.NewReceiptService(repo)

	return h
}

// Seed stores a booking directly and returns it.
func (h *Harness) Seed(b domain.Booking) domain.Booking {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.VehicleType == "" {
		b.VehicleType = domain.VehicleTypeSedan
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = domain.PaymentStatusPending
	}
	if b.FareAmount.IsZero() {
		b.FareAmount = decimal.RequireFromString("200.00")
		b.TripDistanceKm = decimal.RequireFromString("10.00")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.RequestTime.IsZero() {
		b.RequestTime = b.CreatedAt
	}
	if b.Pickup.Address == "" {
		b.Pickup = domain.Location{Latitude: 12.9716, Longitude: 77.5946, Address: "MG Road, Bengaluru"}
	}
	if b.Dropoff.Address == "" {
		b.Dropoff = domain.Location{Latitude: 12.9352, Longitude: 77.6245, Address: "Koramangala, Bengaluru"}
	}
	h.Store.Put(b)
	return b
}

// Booking returns the committed state of a booking.
func (h *Harness) Booking(id string) domain.Booking {
	b, _ := h.Store.Get(id)
	return b
}

func validCreateRequest(riderID, vehicleType string) service.CreateBookingRequest {
	return service.CreateBookingRequest{
		RiderID:     riderID,
		Pickup:      domain.Location{Latitude: 12.9716, Longitude: 77.5946, Address: "MG Road, Bengaluru"},
		Dropoff:     domain.Location{Latitude: 12.9352, Longitude: 77.6245, Address: "Koramangala, Bengaluru"},
		VehicleType: vehicleType,
	}
}
