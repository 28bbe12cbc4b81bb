package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking/internal/domain"
	"booking/internal/events"
)

// gatedPublisher blocks every Publish until release is closed.
type gatedPublisher struct {
	mu      sync.Mutex
	release chan struct{}
	types   []events.Type
}

func (p *gatedPublisher) Publish(ctx context.Context, event events.BookingEvent) error {
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.Type)
	return nil
}

func (p *gatedPublisher) Close() error { return nil }

func (p *gatedPublisher) published() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Type(nil), p.types...)
}

func TestNotifier_QueuedSendDoesNotBlockCaller(t *testing.T) {
	t.Parallel()

	pub := &gatedPublisher{release: make(chan struct{})}
	log, _ := test.NewNullLogger()
	n := NewNotifier(pub, log, 4)
	booking := &domain.Booking{ID: "b-1", RiderID: "r-1"}

	returned := make(chan struct{})
	go func() {
		n.BookingCreated(context.Background(), booking)
		n.BookingAccepted(context.Background(), booking)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a stalled broker")
	}
	assert.Empty(t, pub.published())

	close(pub.release)
	require.NoError(t, n.Close(context.Background()))
	assert.Equal(t, []events.Type{events.TypeBookingCreated, events.TypeBookingAccepted}, pub.published())
}

func TestNotifier_FullQueueDropsWithWarning(t *testing.T) {
	t.Parallel()

	pub := &gatedPublisher{release: make(chan struct{})}
	log, hook := test.NewNullLogger()
	n := NewNotifier(pub, log, 1)
	booking := &domain.Booking{ID: "b-1", RiderID: "r-1"}

	// At most one event is in flight and one is buffered; the rest are dropped.
	for i := 0; i < 5; i++ {
		n.BookingStarted(context.Background(), booking)
	}

	close(pub.release)
	require.NoError(t, n.Close(context.Background()))

	published := len(pub.published())
	assert.GreaterOrEqual(t, published, 1)
	assert.LessOrEqual(t, published, 2)

	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 5-published, warnings)
}

func TestNotifier_CloseDropsLateEvents(t *testing.T) {
	t.Parallel()

	pub := &gatedPublisher{release: make(chan struct{})}
	close(pub.release)
	log, hook := test.NewNullLogger()
	n := NewNotifier(pub, log, 2)

	require.NoError(t, n.Close(context.Background()))
	require.NoError(t, n.Close(context.Background()))

	n.BookingCancelled(context.Background(), &domain.Booking{ID: "b-1"})
	assert.Empty(t, pub.published())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNotifier_CloseHonoursDeadline(t *testing.T) {
	t.Parallel()

	pub := &gatedPublisher{release: make(chan struct{})}
	defer close(pub.release)
	log, _ := test.NewNullLogger()
	n := NewNotifier(pub, log, 2)
	n.PaymentCompleted(context.Background(), &domain.Booking{ID: "b-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Close(ctx), context.DeadlineExceeded)
}

func TestNotifier_ZeroQueuePublishesInline(t *testing.T) {
	t.Parallel()

	pub := &gatedPublisher{release: make(chan struct{})}
	close(pub.release)
	log, _ := test.NewNullLogger()
	n := NewNotifier(pub, log, 0)

	n.PaymentFailed(context.Background(), &domain.Booking{ID: "b-1"}, "card declined")
	assert.Equal(t, []events.Type{events.TypePaymentFailed}, pub.published())
	assert.NoError(t, n.Close(context.Background()))
}
