package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/transit-ticket-booking/internal/client"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// fakeInventory implements InventoryAPI for tests.
type fakeInventory struct {
	trip    *client.TripDetail
	tripErr error

	confirmRes   *client.SeatLockResult
	confirmErr   error
	confirmCalls int
	lastConfirm  client.SeatLockRequest

	cancelRes   *client.SeatLockResult
	cancelErr   error
	cancelCalls int
}

func (f *fakeInventory) GetTripDetail(_ context.Context, _ uint64) (*client.TripDetail, error) {
	return f.trip, f.tripErr
}

func (f *fakeInventory) ConfirmSeatLocks(_ context.Context, req client.SeatLockRequest) (*client.SeatLockResult, error) {
	f.confirmCalls++
	f.lastConfirm = req
	return f.confirmRes, f.confirmErr
}

func (f *fakeInventory) CancelSeatLocks(_ context.Context, _ client.SeatLockRequest) (*client.SeatLockResult, error) {
	f.cancelCalls++
	return f.cancelRes, f.cancelErr
}

func TestSplitAmountExactDivision(t *testing.T) {
	assert.Equal(t, []int64{1000, 1000, 1000}, splitAmount(3000, 3))
}

func TestSplitAmountRemainderOnLastTicket(t *testing.T) {
	parts := splitAmount(10000, 3)
	require.Len(t, parts, 3)
	// 10000/3 rounds to 3333 per ticket, the last absorbs the remainder
	assert.Equal(t, []int64{3333, 3333, 3334}, parts)

	sum := int64(0)
	for _, p := range parts {
		sum += p
	}
	assert.Equal(t, int64(10000), sum)
}

func TestSplitAmountRoundHalfUp(t *testing.T) {
	// 101/2 = 50.5 rounds up to 51 for the first ticket
	assert.Equal(t, []int64{51, 50}, splitAmount(101, 2))
}

func TestSplitAmountSingleTicket(t *testing.T) {
	assert.Equal(t, []int64{555}, splitAmount(555, 1))
}

func issuerBooking() *model.Booking {
	return &model.Booking{
		ID:               11,
		Code:             "BK-001",
		Status:           model.BookingConfirmed,
		TripID:           42,
		Quantity:         2,
		TotalAmountCents: 30001,
	}
}

func TestIssueTicketsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inv := &fakeInventory{trip: sagaTrip()}
	issuer := NewTicketIssuer(inv, repository.NewTicketRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(100, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	tickets, err := issuer.IssueTicketsTx(context.Background(), tx, issuerBooking(), []string{" a1 ", "A2"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Len(t, tickets, 2)

	// seat numbers are normalized and resolved against the fresh trip read
	assert.Equal(t, "A1", tickets[0].SeatNo)
	assert.Equal(t, uint64(1), tickets[0].SeatID)
	assert.Equal(t, "A2", tickets[1].SeatNo)
	assert.Equal(t, uint64(2), tickets[1].SeatID)

	// prices split the booking total, remainder on the last ticket
	assert.Equal(t, int64(15001), tickets[0].PriceCents)
	assert.Equal(t, int64(15000), tickets[1].PriceCents)

	for _, tk := range tickets {
		assert.Equal(t, uint64(11), tk.BookingID)
		assert.Equal(t, uint64(42), tk.TripID)
		assert.Equal(t, uint64(9), tk.RouteID)
		assert.True(t, len(tk.Code) > len("TKT-"))
		require.NotNil(t, tk.QRPayload)
		assert.Equal(t, time.Date(2026, 3, 7, 8, 30, 0, 0, time.UTC), tk.ValidFrom)
		assert.Equal(t, time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), tk.ValidTo)
	}
	assert.NotEqual(t, tickets[0].Code, tickets[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueTicketsTxUnresolvableSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inv := &fakeInventory{trip: sagaTrip()}
	issuer := NewTicketIssuer(inv, repository.NewTicketRepo(db))

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = issuer.IssueTicketsTx(context.Background(), tx, issuerBooking(), []string{"A1", "Z9"})
	assert.ErrorIs(t, err, ErrSeatUnresolvable)
}

func TestIssueTicketsTxNoSeats(t *testing.T) {
	inv := &fakeInventory{trip: sagaTrip()}
	issuer := NewTicketIssuer(inv, repository.NewTicketRepo(nil))

	_, err := issuer.IssueTicketsTx(context.Background(), nil, issuerBooking(), nil)
	assert.ErrorIs(t, err, ErrSeatUnresolvable)
}

func TestIssueTicketsTxTripFetchError(t *testing.T) {
	inv := &fakeInventory{tripErr: errors.New("inventory down")}
	issuer := NewTicketIssuer(inv, repository.NewTicketRepo(nil))

	_, err := issuer.IssueTicketsTx(context.Background(), nil, issuerBooking(), []string{"A1"})
	assert.Error(t, err)
}
