package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/transit-ticket-booking/internal/client"
)

type fakeTrips struct {
	detail *client.TripDetail
	err    error
}

func (f *fakeTrips) GetTripDetail(_ context.Context, _ uint64) (*client.TripDetail, error) {
	return f.detail, f.err
}

type fakePromos struct {
	detail *client.PromotionDetail
	err    error
	calls  int
}

func (f *fakePromos) GetPromotionDetailByCode(_ context.Context, _ string) (*client.PromotionDetail, error) {
	f.calls++
	return f.detail, f.err
}

func testTrip() *client.TripDetail {
	return &client.TripDetail{
		TripID:        42,
		RouteID:       9,
		BaseFareCents: 10000,
		VehicleFactor: 1.2,
		Floors: []client.Floor{
			{ID: 1, Factor: 1},
			{ID: 2, Factor: 0.9},
		},
		Seats: []client.TripSeat{
			{ID: 1, SeatNo: "A1", FloorID: 1, PriceFactor: 1},
			{ID: 2, SeatNo: "A2", FloorID: 1, PriceFactor: 1.5},
			{ID: 3, SeatNo: "B1", FloorID: 2, PriceFactor: 1},
		},
		SeatLocks: []client.SeatLock{
			{SeatNo: "A2", Status: "FREE"},
			{SeatNo: "B1", Status: "HELD"},
		},
		DepartureAt: time.Date(2026, 3, 7, 8, 30, 0, 0, time.UTC),
	}
}

func TestComputeQuoteMultipliesFactors(t *testing.T) {
	q := NewQuoter(&fakeTrips{detail: testTrip()}, nil)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"a1", " A2 "}, "")
	require.NoError(t, err)

	// A1: 10000 * 1.2 * 1 * 1 = 12000
	// A2: 10000 * 1.2 * 1 * 1.5 = 18000
	require.Len(t, quote.Seats, 2)
	assert.Equal(t, SeatPrice{SeatNo: "A1", PriceCents: 12000}, quote.Seats[0])
	assert.Equal(t, SeatPrice{SeatNo: "A2", PriceCents: 18000}, quote.Seats[1])
	assert.Equal(t, int64(30000), quote.SubtotalCents)
	assert.Equal(t, int64(30000), quote.TotalCents)
	assert.Nil(t, quote.Promotion)
	assert.Equal(t, uint64(9), quote.RouteID)

	// snapshots mirror the per-seat breakdown
	require.Len(t, quote.Snapshots, 2)
	assert.Equal(t, int64(10000), quote.Snapshots[0].BaseFareCents)
	assert.Equal(t, 1.5, quote.Snapshots[1].SeatFactor)
	assert.Equal(t, int64(18000), quote.Snapshots[1].FinalPriceCents)
}

func TestComputeQuoteMissingFactorsDefaultToOne(t *testing.T) {
	trip := testTrip()
	trip.VehicleFactor = 0
	trip.Seats[0].PriceFactor = 0
	q := NewQuoter(&fakeTrips{detail: trip}, nil)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"A1"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.TotalCents)
	assert.Equal(t, 1.0, quote.Snapshots[0].VehicleFactor)
	assert.Equal(t, 1.0, quote.Snapshots[0].SeatFactor)
}

func TestComputeQuoteRoundsHalfUp(t *testing.T) {
	trip := testTrip()
	trip.BaseFareCents = 101
	trip.VehicleFactor = 1
	trip.Seats[0].PriceFactor = 1.5 // 151.5 rounds to 152
	q := NewQuoter(&fakeTrips{detail: trip}, nil)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"A1"}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(152), quote.TotalCents)
}

func TestComputeQuoteEmptySelection(t *testing.T) {
	q := NewQuoter(&fakeTrips{detail: testTrip()}, nil)
	_, err := q.ComputeQuote(context.Background(), 42, nil, "")
	assert.ErrorIs(t, err, ErrEmptySeatSelection)
}

func TestComputeQuoteUnknownSeat(t *testing.T) {
	q := NewQuoter(&fakeTrips{detail: testTrip()}, nil)
	_, err := q.ComputeQuote(context.Background(), 42, []string{"A1", "Z9"}, "")
	assert.ErrorIs(t, err, ErrUnknownSeat)
}

func TestComputeQuoteLockedSeat(t *testing.T) {
	promos := &fakePromos{detail: &client.PromotionDetail{ID: 7, Code: "X"}}
	q := NewQuoter(&fakeTrips{detail: testTrip()}, promos)

	// seat availability is checked before any promotion logic runs
	_, err := q.ComputeQuote(context.Background(), 42, []string{"B1"}, "X")
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.Zero(t, promos.calls)
}

func TestComputeQuoteTripFetchError(t *testing.T) {
	q := NewQuoter(&fakeTrips{err: errors.New("boom")}, nil)
	_, err := q.ComputeQuote(context.Background(), 42, []string{"A1"}, "")
	assert.Error(t, err)
}

func TestComputeQuotePromoFetchFailureIgnored(t *testing.T) {
	promos := &fakePromos{err: errors.New("promotion service down")}
	q := NewQuoter(&fakeTrips{detail: testTrip()}, promos)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"A1"}, "SPRING")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), quote.TotalCents)
	assert.Nil(t, quote.Promotion)
	assert.Equal(t, 1, promos.calls)
}

func TestComputeQuoteAppliesDiscount(t *testing.T) {
	promos := &fakePromos{detail: &client.PromotionDetail{
		ID:   7,
		Code: "SPRING",
		PercentOffPolicies: []client.PercentOffPolicy{
			{Percent: 10},
		},
	}}
	q := NewQuoter(&fakeTrips{detail: testTrip()}, promos)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"A1", "A2"}, "SPRING")
	require.NoError(t, err)
	require.NotNil(t, quote.Promotion)
	assert.Equal(t, int64(30000), quote.SubtotalCents)
	assert.Equal(t, int64(3000), quote.Promotion.DiscountCents)
	assert.Equal(t, int64(27000), quote.TotalCents)
	// discount never makes the total more expensive
	assert.LessOrEqual(t, quote.TotalCents, quote.SubtotalCents)
}

func TestComputeQuoteTotalNeverNegative(t *testing.T) {
	maxOff := int64(1 << 40)
	promos := &fakePromos{detail: &client.PromotionDetail{
		ID:   7,
		Code: "EVERYTHING",
		PercentOffPolicies: []client.PercentOffPolicy{
			{Percent: 150, MaxOffCents: &maxOff},
		},
	}}
	q := NewQuoter(&fakeTrips{detail: testTrip()}, promos)

	quote, err := q.ComputeQuote(context.Background(), 42, []string{"A1"}, "EVERYTHING")
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.TotalCents)
}

func TestNormalizeSeatNo(t *testing.T) {
	assert.Equal(t, "A1", NormalizeSeatNo("  a1 "))
	assert.Equal(t, "B12", NormalizeSeatNo("b12"))
}
