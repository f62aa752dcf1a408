package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// PercentOffPolicy is a single percent-off tier of a promotion.
// MaxOffCents, when set, caps the discount produced by this tier.
type PercentOffPolicy struct {
	Percent     float64 `json:"percent"`
	MaxOffCents *int64  `json:"max_off_cents"`
}

// BuyNGetMPolicy is a single buy-N-get-M-free tier of a promotion.
type BuyNGetMPolicy struct {
	BuyN int `json:"buy_n"`
	GetM int `json:"get_m"`
}

// RouteCondition restricts a promotion to a set of routes.
type RouteCondition struct {
	RouteIDs []uint64 `json:"route_ids"`
}

// DateCondition restricts a promotion to exact travel dates
// (YYYY-MM-DD) and/or weekday numbers (time.Weekday, Sunday = 0).
type DateCondition struct {
	Dates    []string `json:"dates"`
	Weekdays []int    `json:"weekdays"`
}

// PromotionDetail is the promotion service's full view of one
// promotion: validity window, usage counters, discount policies and
// eligibility conditions.
type PromotionDetail struct {
	ID                 uint64             `json:"id"`
	Code               string             `json:"code"`
	StartDate          *time.Time         `json:"start_date"`
	EndDate            *time.Time         `json:"end_date"`
	UsageLimit         *int               `json:"usage_limit"`
	UsedCount          int                `json:"used_count"`
	PercentOffPolicies []PercentOffPolicy `json:"percent_off_policies"`
	BuyNGetMPolicies   []BuyNGetMPolicy   `json:"buy_n_get_m_policies"`
	RouteConditions    []RouteCondition   `json:"route_conditions"`
	DateConditions     []DateCondition    `json:"date_conditions"`
}

// PromotionClient talks to the promotion service.
type PromotionClient struct {
	http *resty.Client
}

// NewPromotionClient builds a client for the promotion service at
// baseURL with the given request timeout.
func NewPromotionClient(baseURL string, timeout time.Duration) *PromotionClient {
	return &PromotionClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
	}
}

// GetPromotionDetailByCode fetches the full detail of a promotion by
// its code.  Any failure (transport, non-2xx, unknown code) is returned
// as an error; the quote engine treats every such error as "no
// promotion" and prices at full fare.
func (c *PromotionClient) GetPromotionDetailByCode(ctx context.Context, code string) (*PromotionDetail, error) {
	var detail PromotionDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&detail).
		Get("/v1/promotions/by-code/" + code)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("promotion: get by code %q: status %d", code, resp.StatusCode())
	}
	if detail.ID == 0 {
		return nil, fmt.Errorf("promotion: get by code %q: empty detail", code)
	}
	return &detail, nil
}
