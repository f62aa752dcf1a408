package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// signVNPay reproduces the documented signature scheme independently of
// the implementation under test.
func signVNPay(secret string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(values.Get(k)))
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func vnpayPayload(secret string, overrides map[string]string) string {
	values := url.Values{}
	values.Set("vnp_TxnRef", "PAY-abc123")
	values.Set("vnp_ResponseCode", "00")
	values.Set("vnp_Amount", "150000")
	values.Set("vnp_TmnCode", "DEMO")
	for k, v := range overrides {
		values.Set(k, v)
	}
	values.Set("vnp_SecureHash", signVNPay(secret, values))
	return values.Encode()
}

func TestVNPayVerify(t *testing.T) {
	v := &VNPay{TmnCode: "DEMO", HashSecret: "s3cret"}

	assert.True(t, v.Verify([]byte(vnpayPayload("s3cret", nil)), ""))
	assert.False(t, v.Verify([]byte(vnpayPayload("wrong-secret", nil)), ""))

	// tampering with a signed field breaks the signature
	tampered := strings.Replace(vnpayPayload("s3cret", nil), "vnp_Amount=150000", "vnp_Amount=1", 1)
	assert.False(t, v.Verify([]byte(tampered), ""))

	// no hash in the payload and no header fallback
	values := url.Values{}
	values.Set("vnp_TxnRef", "PAY-abc123")
	assert.False(t, v.Verify([]byte(values.Encode()), ""))
}

func TestVNPayVerifySignatureHeaderFallback(t *testing.T) {
	v := &VNPay{HashSecret: "s3cret"}
	values := url.Values{}
	values.Set("vnp_TxnRef", "PAY-abc123")
	values.Set("vnp_ResponseCode", "24")
	sig := signVNPay("s3cret", values)

	assert.True(t, v.Verify([]byte(values.Encode()), sig))
	// uppercase hex digests from the gateway are accepted
	assert.True(t, v.Verify([]byte(values.Encode()), strings.ToUpper(sig)))
}

func TestVNPayParse(t *testing.T) {
	v := &VNPay{HashSecret: "s3cret"}

	n, err := v.Parse([]byte(vnpayPayload("s3cret", nil)))
	require.NoError(t, err)
	assert.Equal(t, "PAY-abc123", n.TransactionID)
	assert.Equal(t, "00", n.Status)
	assert.Equal(t, int64(150000), n.AmountCents)

	_, err = v.Parse([]byte("vnp_ResponseCode=00"))
	assert.Error(t, err)
}

func TestVNPayMapStatus(t *testing.T) {
	v := &VNPay{}
	assert.Equal(t, model.TxnSuccess, v.MapStatus("00"))
	assert.Equal(t, model.TxnFailed, v.MapStatus("24"))
	assert.Equal(t, model.TxnFailed, v.MapStatus("99"))
	assert.Equal(t, model.TxnProcessing, v.MapStatus("xx"))
	assert.Equal(t, model.TxnProcessing, v.MapStatus(""))
}

func TestVNPayBuildRedirectURL(t *testing.T) {
	v := &VNPay{TmnCode: "DEMO", HashSecret: "s3cret", PayURL: "https://pay.example.com/vpcpay.html"}

	raw := v.BuildRedirectURL(RedirectParams{
		OrderRef:    "BK-20260307-001",
		GatewayRef:  "PAY-abc123",
		AmountCents: 150000,
		ReturnURL:   "https://shop.example.com/return",
		ClientIP:    "203.0.113.7",
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "DEMO", q.Get("vnp_TmnCode"))
	assert.Equal(t, "PAY-abc123", q.Get("vnp_TxnRef"))
	assert.Equal(t, "150000", q.Get("vnp_Amount"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))

	// the embedded hash covers every other parameter
	sig := q.Get("vnp_SecureHash")
	require.NotEmpty(t, sig)
	q.Del("vnp_SecureHash")
	assert.Equal(t, signVNPay("s3cret", q), sig)
}
