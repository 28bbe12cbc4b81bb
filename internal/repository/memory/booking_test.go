package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking/internal/domain"
	"booking/internal/repository"
)

func seed(t *testing.T, s *Store, b domain.Booking) {
	t.Helper()
	require.NoError(t, s.Repository().Create(context.Background(), &b))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	s := NewStore()
	seed(t, s, domain.Booking{ID: "b1", Status: domain.BookingStatusPending})

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(repo repository.BookingRepository) error {
		b, err := repo.GetByIDForUpdate(context.Background(), "b1")
		require.NoError(t, err)
		b.Status = domain.BookingStatusCancelled
		require.NoError(t, repo.Update(context.Background(), b))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, _ := s.Get("b1")
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, 0, b.Version)
}

func TestUpdate_StaleVersionIsConcurrentUpdate(t *testing.T) {
	t.Parallel()

	s := NewStore()
	seed(t, s, domain.Booking{ID: "b1", Status: domain.BookingStatusPending})
	repo := s.Repository()

	first, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	second, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)

	require.NoError(t, repo.Update(context.Background(), first))
	assert.Equal(t, 1, first.Version)

	err = repo.Update(context.Background(), second)
	assert.ErrorIs(t, err, repository.ErrConcurrentUpdate)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	t.Parallel()

	s := NewStore()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, addr := range []string{"MG Road", "Airport T2", "mg road metro", "Station"} {
		seed(t, s, domain.Booking{
			ID:        string(rune('a' + i)),
			RiderID:   "rider-1",
			Status:    domain.BookingStatusPending,
			Pickup:    domain.Location{Address: addr},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	seed(t, s, domain.Booking{ID: "z", RiderID: "rider-2", Pickup: domain.Location{Address: "MG Road"}, CreatedAt: base})

	items, total, err := s.Repository().List(context.Background(),
		repository.BookingFilter{RiderID: "rider-1", PickupContains: "mg road"},
		repository.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].ID, "newest first")

	items, total, err = s.Repository().List(context.Background(),
		repository.BookingFilter{RiderID: "rider-1"},
		repository.PageRequest{Page: 1, Size: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestListAvailable_OldestFirstAndUnassigned(t *testing.T) {
	t.Parallel()

	s := NewStore()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seed(t, s, domain.Booking{ID: "late", Status: domain.BookingStatusPending, VehicleType: domain.VehicleTypeAuto, RequestTime: base.Add(time.Minute)})
	seed(t, s, domain.Booking{ID: "early", Status: domain.BookingStatusPending, VehicleType: domain.VehicleTypeAuto, RequestTime: base})
	seed(t, s, domain.Booking{ID: "suv", Status: domain.BookingStatusPending, VehicleType: domain.VehicleTypeSUV, RequestTime: base})
	seed(t, s, domain.Booking{ID: "taken", Status: domain.BookingStatusAccepted, DriverID: "d1", VehicleType: domain.VehicleTypeAuto, RequestTime: base})

	items, err := s.Repository().ListAvailable(context.Background(), domain.VehicleTypeAuto)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "early", items[0].ID)
	assert.Equal(t, "late", items[1].ID)

	active, err := s.Repository().GetActiveByDriverID(context.Background(), "d1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "taken", active.ID)

	none, err := s.Repository().GetActiveByDriverID(context.Background(), "d2")
	require.NoError(t, err)
	assert.Nil(t, none)
}
