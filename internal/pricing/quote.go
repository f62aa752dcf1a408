package pricing

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/iliyamo/transit-ticket-booking/internal/client"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// TripFetcher is the slice of the inventory client the quote engine
// needs.
type TripFetcher interface {
	GetTripDetail(ctx context.Context, tripID uint64) (*client.TripDetail, error)
}

// PromotionFetcher is the slice of the promotion client the quote
// engine needs.
type PromotionFetcher interface {
	GetPromotionDetailByCode(ctx context.Context, code string) (*client.PromotionDetail, error)
}

// SeatPrice is one line of a quote's per-seat breakdown.
type SeatPrice struct {
	SeatNo     string `json:"seat_no"`
	PriceCents int64  `json:"price_cents"`
}

// Quote is the result of pricing a seat selection: the per-seat
// breakdown, the pre-discount subtotal, the payable total and the
// promotion that produced the discount, if any.
type Quote struct {
	TripID        uint64                  `json:"trip_id"`
	RouteID       uint64                  `json:"route_id"`
	Seats         []SeatPrice             `json:"seats"`
	Snapshots     []model.PricingSnapshot `json:"-"`
	SubtotalCents int64                   `json:"subtotal_cents"`
	TotalCents    int64                   `json:"total_cents"`
	Promotion     *model.AppliedPromotion `json:"promotion,omitempty"`
}

// Quoter is the price quote engine.  It fetches trip and promotion
// data through the injected collaborators and computes prices with
// integer-cent arithmetic.
type Quoter struct {
	Inventory  TripFetcher
	Promotions PromotionFetcher
}

// NewQuoter constructs a Quoter.  The promotion fetcher may be nil, in
// which case promo codes are ignored and every quote prices at full
// fare.
func NewQuoter(inventory TripFetcher, promotions PromotionFetcher) *Quoter {
	if inventory == nil {
		panic("nil inventory fetcher passed to NewQuoter")
	}
	return &Quoter{Inventory: inventory, Promotions: promotions}
}

// NormalizeSeatNo canonicalizes a seat number for comparison: seat
// numbers are matched case- and whitespace-insensitively on both the
// held-seats list and the inventory's seat list.
func NormalizeSeatNo(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RoundCents rounds a fractional cent amount half-up to a whole number
// of cents.
func RoundCents(x float64) int64 {
	return int64(math.Round(x))
}

// factorOr returns f, or 1 when the factor is absent (zero).
func factorOr(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// ComputeQuote prices the requested seats on a trip and applies the
// best eligible discount for promoCode, if one is supplied.
//
// A seat selection referencing an unknown seat fails with
// ErrUnknownSeat; a seat with a HELD or COMMITTED lock fails with
// ErrSeatUnavailable before any promotion logic runs.  A promo code
// that cannot be fetched or resolved is silently ignored: pricing still
// succeeds at full price.  The final total is clamped at zero, so a
// discount never produces a negative payable amount.
func (q *Quoter) ComputeQuote(ctx context.Context, tripID uint64, seatNumbers []string, promoCode string) (*Quote, error) {
	if len(seatNumbers) == 0 {
		return nil, ErrEmptySeatSelection
	}

	trip, err := q.Inventory.GetTripDetail(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("fetch trip detail: %w", err)
	}

	// index seats and floors by normalized number / id
	seatIndex := make(map[string]client.TripSeat, len(trip.Seats))
	for _, s := range trip.Seats {
		seatIndex[NormalizeSeatNo(s.SeatNo)] = s
	}
	floorFactors := make(map[uint64]float64, len(trip.Floors))
	for _, f := range trip.Floors {
		floorFactors[f.ID] = f.Factor
	}
	lockIndex := make(map[string]string, len(trip.SeatLocks))
	for _, l := range trip.SeatLocks {
		lockIndex[NormalizeSeatNo(l.SeatNo)] = l.Status
	}

	// resolve every seat before pricing: the whole selection must be
	// known and free
	quote := &Quote{TripID: tripID, RouteID: trip.RouteID}
	perSeat := make([]int64, 0, len(seatNumbers))
	for _, raw := range seatNumbers {
		no := NormalizeSeatNo(raw)
		seat, ok := seatIndex[no]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeat, no)
		}
		switch lockIndex[no] {
		case "HELD", "COMMITTED":
			return nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, no)
		}
		vehicle := factorOr(trip.VehicleFactor)
		floor := factorOr(floorFactors[seat.FloorID])
		perFactor := factorOr(seat.PriceFactor)
		price := RoundCents(float64(trip.BaseFareCents) * vehicle * floor * perFactor)
		perSeat = append(perSeat, price)
		quote.Seats = append(quote.Seats, SeatPrice{SeatNo: no, PriceCents: price})
		quote.Snapshots = append(quote.Snapshots, model.PricingSnapshot{
			SeatNo:          no,
			BaseFareCents:   trip.BaseFareCents,
			VehicleFactor:   vehicle,
			FloorFactor:     floor,
			SeatFactor:      perFactor,
			FinalPriceCents: price,
		})
		quote.SubtotalCents += price
	}
	quote.TotalCents = quote.SubtotalCents

	if promoCode != "" && q.Promotions != nil {
		promo, err := q.Promotions.GetPromotionDetailByCode(ctx, promoCode)
		if err != nil {
			// unknown or unreachable promotion: price at full fare
			log.Printf("pricing: ignoring promo code %q: %v", promoCode, err)
			return quote, nil
		}
		travelDate := trip.DepartureAt
		if applied := EvaluatePromotion(promo, trip.RouteID, travelDate, len(perSeat), perSeat); applied != nil {
			quote.Promotion = applied
			quote.TotalCents -= applied.DiscountCents
			if quote.TotalCents < 0 {
				quote.TotalCents = 0
			}
		}
	}
	return quote, nil
}
