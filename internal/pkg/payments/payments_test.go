package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

func init() {
	env.Env = map[string]string{
		"KASPI_MERCHANT_ID":  "kaspi-merchant",
		"KASPI_SECRET":       "kaspi-secret",
		"HALYK_MERCHANT_ID":  "halyk-merchant",
		"HALYK_SECRET":       "halyk-secret",
		"PAYBOX_MERCHANT_ID": "paybox-merchant",
		"PAYBOX_SECRET":      "paybox-secret",
	}
}

func TestKaspiSignExcludesSignatureKey(t *testing.T) {
	params := map[string]string{
		"order_id": "42",
		"amount":   "5000",
	}
	base := KaspiSign(params, "secret")

	params["signature"] = "whatever"
	assert.Equal(t, base, KaspiSign(params, "secret"))

	params["amount"] = "5001"
	assert.NotEqual(t, base, KaspiSign(params, "secret"))
}

func TestKaspiWebhookRoundTrip(t *testing.T) {
	p := NewKaspiProvider()

	values := map[string]string{
		"transaction_id": "ext-123",
		"order_id":       "42",
		"status":         "success",
		"amount":         "5000",
	}
	values["signature"] = KaspiSign(values, "kaspi-secret")

	require.NoError(t, p.VerifyWebhook(values))

	event, err := p.ParseWebhook(values)
	require.NoError(t, err)
	assert.Equal(t, "ext-123", event.ExternalTransactionID)
	assert.Equal(t, uint(42), event.TransactionID)
	assert.True(t, event.Success)
	assert.Equal(t, int64(5000), event.Amount)
}

func TestKaspiWebhookRejectsTamperedPayload(t *testing.T) {
	p := NewKaspiProvider()

	values := map[string]string{
		"transaction_id": "ext-123",
		"order_id":       "42",
		"status":         "failed",
		"amount":         "5000",
	}
	values["signature"] = KaspiSign(values, "kaspi-secret")
	values["status"] = "success"

	assert.ErrorIs(t, p.VerifyWebhook(values), ErrBadSignature)
}

func TestKaspiWebhookRejectsMissingSignature(t *testing.T) {
	p := NewKaspiProvider()

	values := map[string]string{"transaction_id": "ext-123"}
	assert.ErrorIs(t, p.VerifyWebhook(values), ErrBadSignature)
}

func TestPayBoxSignOrdersValuesByKey(t *testing.T) {
	params := map[string]string{
		"pg_order_id": "7",
		"pg_amount":   "1500",
	}
	base := PayBoxSign(params, "secret")

	// pg_sig itself never participates in the signature.
	params["pg_sig"] = "bogus"
	assert.Equal(t, base, PayBoxSign(params, "secret"))

	// Swapping values between keys changes the joined string.
	swapped := map[string]string{
		"pg_order_id": "1500",
		"pg_amount":   "7",
	}
	assert.NotEqual(t, base, PayBoxSign(swapped, "secret"))
}

func TestHalykWebhookRoundTrip(t *testing.T) {
	p := NewHalykProvider()

	values := map[string]string{
		"pg_payment_id": "hk-900",
		"pg_order_id":   "7",
		"pg_result":     "1",
		"pg_amount":     "1500",
	}
	values["pg_sig"] = PayBoxSign(values, "halyk-secret")

	require.NoError(t, p.VerifyWebhook(values))

	event, err := p.ParseWebhook(values)
	require.NoError(t, err)
	assert.Equal(t, "hk-900", event.ExternalTransactionID)
	assert.Equal(t, uint(7), event.TransactionID)
	assert.True(t, event.Success)
	assert.Equal(t, int64(1500), event.Amount)
}

func TestHalykWebhookFailureResult(t *testing.T) {
	p := NewHalykProvider()

	values := map[string]string{
		"pg_payment_id": "hk-901",
		"pg_order_id":   "7",
		"pg_result":     "0",
		"pg_amount":     "1500",
	}
	values["pg_sig"] = PayBoxSign(values, "halyk-secret")

	require.NoError(t, p.VerifyWebhook(values))

	event, err := p.ParseWebhook(values)
	require.NoError(t, err)
	assert.False(t, event.Success)
}

func TestPayBoxWebhookRejectsTamperedPayload(t *testing.T) {
	p := NewPayBoxProvider()

	values := map[string]string{
		"pg_payment_id": "pb-1",
		"pg_order_id":   "3",
		"pg_result":     "0",
		"pg_amount":     "2000",
	}
	values["pg_sig"] = PayBoxSign(values, "paybox-secret")
	values["pg_result"] = "1"

	assert.ErrorIs(t, p.VerifyWebhook(values), ErrBadSignature)
}

func TestParseWebhookMissingReference(t *testing.T) {
	kaspi := NewKaspiProvider()
	_, err := kaspi.ParseWebhook(map[string]string{"status": "success"})
	assert.ErrorIs(t, err, ErrMissingReference)

	paybox := NewPayBoxProvider()
	_, err = paybox.ParseWebhook(map[string]string{"pg_result": "1"})
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestCreatePaymentBuildsSignedURL(t *testing.T) {
	p := NewKaspiProvider()

	resp, err := p.CreatePayment(CreateRequest{
		TransactionID: 42,
		Amount:        5000,
		Currency:      "KZT",
		Description:   "Listing promotion",
		ReturnURL:     "https://example.kz/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "kaspi-42", resp.ExternalID)
	assert.Contains(t, resp.PaymentURL, "order_id=42")
	assert.Contains(t, resp.PaymentURL, "signature=")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"kaspi", "halyk", "paybox"} {
		p, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	_, err := r.Get("stripe")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.False(t, IsValidProviderName("stripe"))
	assert.True(t, IsValidProviderName("kaspi"))
}
