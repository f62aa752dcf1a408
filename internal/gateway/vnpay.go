package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// VNPay implements the VNPAY wire format: payloads are URL-encoded
// query strings signed with HMAC-SHA512 over the sorted parameters
// (vnp_SecureHash excluded).  The same struct doubles as the redirect
// URL builder for the VNPAY payment method.
type VNPay struct {
	TmnCode    string // merchant terminal code
	HashSecret string // HMAC-SHA512 key shared with the gateway
	PayURL     string // base URL of the VNPAY payment page
}

// Name returns "VNPAY".
func (v *VNPay) Name() string { return "VNPAY" }

// sign computes the HMAC-SHA512 hex digest over the values sorted by
// key and joined as key=value&... pairs.
func (v *VNPay) sign(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(values.Get(k)))
	}
	mac := hmac.New(sha512.New, []byte(v.HashSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify authenticates a VNPAY IPN payload.  The signature travels
// inside the payload as vnp_SecureHash; the signature argument is
// accepted for interface compatibility and used as a fallback when the
// payload carries no hash field.
func (v *VNPay) Verify(raw []byte, signature string) bool {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return false
	}
	got := values.Get("vnp_SecureHash")
	if got == "" {
		got = signature
	}
	if got == "" {
		return false
	}
	values.Del("vnp_SecureHash")
	values.Del("vnp_SecureHashType")
	want := v.sign(values)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// Parse extracts the transaction reference, response code and amount
// from a VNPAY IPN payload.  vnp_Amount is already scaled by 100 on the
// wire, i.e. it is a cent amount.
func (v *VNPay) Parse(raw []byte) (*Notification, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("vnpay: parse payload: %w", err)
	}
	txnRef := values.Get("vnp_TxnRef")
	if txnRef == "" {
		return nil, fmt.Errorf("vnpay: payload missing vnp_TxnRef")
	}
	amount, _ := strconv.ParseInt(values.Get("vnp_Amount"), 10, 64)
	return &Notification{
		TransactionID: txnRef,
		Status:        values.Get("vnp_ResponseCode"),
		AmountCents:   amount,
	}, nil
}

// MapStatus translates VNPAY response codes: "00" is success, the
// documented failure codes map to FAILED, anything else stays
// PROCESSING.
func (v *VNPay) MapStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "00":
		return model.TxnSuccess
	case "07", "09", "10", "11", "12", "13", "24", "51", "65", "75", "79", "99":
		return model.TxnFailed
	}
	return model.TxnProcessing
}

// BuildRedirectURL constructs the signed VNPAY payment page URL for a
// freshly initiated transaction.
func (v *VNPay) BuildRedirectURL(p RedirectParams) string {
	values := url.Values{}
	values.Set("vnp_Version", "2.1.0")
	values.Set("vnp_Command", "pay")
	values.Set("vnp_TmnCode", v.TmnCode)
	values.Set("vnp_Amount", strconv.FormatInt(p.AmountCents, 10))
	values.Set("vnp_CurrCode", "VND")
	values.Set("vnp_TxnRef", p.GatewayRef)
	values.Set("vnp_OrderInfo", "Thanh toan don hang "+p.OrderRef)
	values.Set("vnp_ReturnUrl", p.ReturnURL)
	values.Set("vnp_IpAddr", p.ClientIP)
	values.Set("vnp_CreateDate", time.Now().UTC().Format("20060102150405"))
	values.Set("vnp_SecureHash", v.sign(values))
	return v.PayURL + "?" + values.Encode()
}
