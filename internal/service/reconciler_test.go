package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-notify/internal/extract"
	"salon-notify/internal/model"
)

func manicureRecord() extract.RawBooking {
	return extract.RawBooking{
		Phone:   "89520000000",
		Date:    "10.02.2026",
		Time:    "11:00",
		Service: "Маникюр",
		Staff:   "Анна",
	}
}

func TestReconcileCreatesBooking(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, 100, "+79520000000")

	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Created: 1}, stats)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	b := bookings[0]
	assert.Equal(t, int64(1), b.SequenceID)
	assert.Equal(t, user.ID, b.UserID)
	assert.Equal(t, model.StatusCreated, b.Status)
	assert.Equal(t, "Маникюр", b.Service)
	assert.Equal(t, "10.02.2026", b.Date)
	assert.Equal(t, "11:00", b.Time)
	assert.Equal(t, "Анна", b.Staff)
}

func TestReconcileIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	snapshot := extract.Result{Bookings: []extract.RawBooking{manicureRecord()}}
	_, err := f.reconciler().Reconcile(context.Background(), snapshot)
	require.NoError(t, err)

	stats, err := f.reconciler().Reconcile(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats, "unchanged snapshot must be a no-op")
}

func TestReconcileSkipsRecordsWithoutUser(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	noPhone := manicureRecord()
	noPhone.Phone = "  "
	stranger := manicureRecord()
	stranger.Phone = "+79990000000" // not registered

	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{noPhone, stranger},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestReconcileMatchesDifferentlyFormattedPhone(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "8 952 000-00-00")

	rec := manicureRecord()
	rec.Phone = "+7 (952) 000 00 00"
	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{rec},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Created: 1}, stats)
}

func TestReconcileDetectsStaffChange(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)

	changed := manicureRecord()
	changed.Staff = "Мария"
	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{changed},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Changed: 1}, stats)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1, "in-place edit must not create a second row")
	assert.Equal(t, model.StatusChanged, bookings[0].Status)
	assert.Equal(t, "Мария", bookings[0].Staff)
}

func TestReconcileCancelsByAbsence(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)

	empty := extract.Result{CoveredFrom: "01.02.2026", CoveredTo: "28.02.2026"}
	stats, err := f.reconciler().Reconcile(context.Background(), empty)
	require.NoError(t, err)
	assert.Equal(t, Stats{Canceled: 1}, stats)

	// Re-running cancels nothing further.
	stats, err = f.reconciler().Reconcile(context.Background(), empty)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, model.StatusCanceled, bookings[0].Status)
}

func TestReconcileCoveredRangeGuardsCancellation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)

	// The booking is on 10.02; a scrape that only covered March says
	// nothing about it.
	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		CoveredFrom: "01.03.2026",
		CoveredTo:   "31.03.2026",
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, bookings[0].Status)
}

func TestReconcileUnknownCoverageCancelsAllAbsent(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)

	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Canceled: 1}, stats)
}

func TestReconcileAssignsNextSequenceID(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, 100, "+79520000000")
	f.seedBooking(t, model.Booking{
		SequenceID: 7,
		UserID:     user.ID,
		Service:    "Педикюр",
		Date:       "05.02.2026",
		Time:       "15:00",
		Status:     model.StatusActive,
	})

	rec := manicureRecord()
	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{
			{Phone: rec.Phone, Date: "05.02.2026", Time: "15:00", Service: "Педикюр"},
			rec,
		},
	})
	require.NoError(t, err)

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	var seqs []int64
	for _, b := range bookings {
		seqs = append(seqs, b.SequenceID)
	}
	assert.ElementsMatch(t, []int64{7, 8}, seqs)
}

func TestReconcileDuplicateKeyLastWins(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	first := manicureRecord()
	second := manicureRecord()
	second.Staff = "Мария"

	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{first, second},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Created: 1}, stats, "one logical booking, one row")

	bookings, err := f.bookings.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "Мария", bookings[0].Staff)
	assert.Equal(t, model.StatusCreated, bookings[0].Status)
}

func TestReconcileNormalizesScrapedDate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 100, "+79520000000")

	_, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{manicureRecord()},
	})
	require.NoError(t, err)

	// Same booking, ISO-formatted date: must match the stored key.
	iso := manicureRecord()
	iso.Date = "2026-02-10"
	stats, err := f.reconciler().Reconcile(context.Background(), extract.Result{
		Bookings: []extract.RawBooking{iso},
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
