package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// PricingRepo provides data access to the pricing_snapshots and
// applied_promotions audit tables.  Both are write-once per booking;
// there are no update methods.
type PricingRepo struct {
	db *sql.DB
}

// NewPricingRepo returns a new PricingRepo bound to the provided database.
func NewPricingRepo(db *sql.DB) *PricingRepo { return &PricingRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning several repositories.
func (r *PricingRepo) DB() *sql.DB { return r.db }

// CreateSnapshotsTx inserts pricing snapshots for a booking within the
// provided transaction.  Passing an empty slice has no effect.
func (r *PricingRepo) CreateSnapshotsTx(ctx context.Context, tx *sql.Tx, snaps []model.PricingSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	query := `INSERT INTO pricing_snapshots (booking_id, seat_no, base_fare_cents, vehicle_factor, floor_factor, seat_factor, final_price_cents) VALUES `
	args := make([]interface{}, 0, len(snaps)*7)
	for i, s := range snaps {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, s.BookingID, s.SeatNo, s.BaseFareCents,
			s.VehicleFactor, s.FloorFactor, s.SeatFactor, s.FinalPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateAppliedPromotionTx inserts the promotion chosen for a booking
// within the provided transaction and fills in the generated ID.
func (r *PricingRepo) CreateAppliedPromotionTx(ctx context.Context, tx *sql.Tx, p *model.AppliedPromotion) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO applied_promotions (booking_id, promotion_id, code, policy_type, percent, max_off_cents, discount_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.PromotionID, p.Code, p.PolicyType, p.Percent, p.MaxOffCents, p.DiscountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}
