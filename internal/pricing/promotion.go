package pricing

import (
	"sort"
	"time"

	"github.com/iliyamo/transit-ticket-booking/internal/client"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// EvaluatePromotion decides whether a promotion applies to the quote
// context and, if so, computes the best discount among its configured
// policies.  It returns nil when the promotion is not eligible or
// yields no discount.
//
// Eligibility gates short-circuit on the first failure: validity
// window, usage limit, route conditions, date conditions.  When both a
// percent-off and a buy-N-get-M policy are eligible, the larger
// discount wins; ties favor the percent-off result.
func EvaluatePromotion(p *client.PromotionDetail, routeID uint64, travelDate time.Time, seatCount int, perSeatCents []int64) *model.AppliedPromotion {
	if p == nil || !eligible(p, routeID, travelDate) {
		return nil
	}

	total := int64(0)
	for _, c := range perSeatCents {
		total += c
	}

	percentApplied := bestPercentOff(p, total)
	bnmApplied := bestBuyNGetM(p, seatCount, perSeatCents)

	switch {
	case percentApplied == nil:
		return finish(p, bnmApplied)
	case bnmApplied == nil:
		return finish(p, percentApplied)
	case bnmApplied.DiscountCents > percentApplied.DiscountCents:
		return finish(p, bnmApplied)
	default:
		return finish(p, percentApplied)
	}
}

func finish(p *client.PromotionDetail, a *model.AppliedPromotion) *model.AppliedPromotion {
	if a == nil || a.DiscountCents <= 0 {
		return nil
	}
	a.PromotionID = p.ID
	a.Code = p.Code
	return a
}

func eligible(p *client.PromotionDetail, routeID uint64, travelDate time.Time) bool {
	if p.StartDate != nil && travelDate.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && travelDate.After(*p.EndDate) {
		return false
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return false
	}
	if len(p.RouteConditions) > 0 && !routeMatches(p.RouteConditions, routeID) {
		return false
	}
	if len(p.DateConditions) > 0 && !dateMatches(p.DateConditions, travelDate) {
		return false
	}
	return true
}

func routeMatches(conds []client.RouteCondition, routeID uint64) bool {
	for _, c := range conds {
		for _, id := range c.RouteIDs {
			if id == routeID {
				return true
			}
		}
	}
	return false
}

func dateMatches(conds []client.DateCondition, travelDate time.Time) bool {
	day := travelDate.Format("2006-01-02")
	weekday := int(travelDate.Weekday())
	for _, c := range conds {
		for _, d := range c.Dates {
			if d == day {
				return true
			}
		}
		for _, w := range c.Weekdays {
			if w == weekday {
				return true
			}
		}
	}
	return false
}

// bestPercentOff picks the single highest percent tier (ties broken by
// first match) and applies its cap, if set.
func bestPercentOff(p *client.PromotionDetail, totalCents int64) *model.AppliedPromotion {
	var best *client.PercentOffPolicy
	for i := range p.PercentOffPolicies {
		pol := &p.PercentOffPolicies[i]
		if best == nil || pol.Percent > best.Percent {
			best = pol
		}
	}
	if best == nil {
		return nil
	}
	discount := RoundCents(float64(totalCents) * best.Percent / 100)
	if best.MaxOffCents != nil && discount > *best.MaxOffCents {
		discount = *best.MaxOffCents
	}
	return &model.AppliedPromotion{
		PolicyType:    model.PolicyPercentOff,
		Percent:       best.Percent,
		MaxOffCents:   best.MaxOffCents,
		DiscountCents: discount,
	}
}

// bestBuyNGetM picks the tier with the highest M.  The tier applies
// only when seatCount >= N+M; the discount is the sum of the M cheapest
// per-seat prices, favoring the customer.
func bestBuyNGetM(p *client.PromotionDetail, seatCount int, perSeatCents []int64) *model.AppliedPromotion {
	var best *client.BuyNGetMPolicy
	for i := range p.BuyNGetMPolicies {
		pol := &p.BuyNGetMPolicies[i]
		if best == nil || pol.GetM > best.GetM {
			best = pol
		}
	}
	if best == nil || best.GetM <= 0 {
		return nil
	}
	if seatCount < best.BuyN+best.GetM {
		return nil
	}
	sorted := make([]int64, len(perSeatCents))
	copy(sorted, perSeatCents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	discount := int64(0)
	for i := 0; i < best.GetM && i < len(sorted); i++ {
		discount += sorted[i]
	}
	return &model.AppliedPromotion{
		PolicyType:    model.PolicyBuyNGetMFree,
		DiscountCents: discount,
	}
}
