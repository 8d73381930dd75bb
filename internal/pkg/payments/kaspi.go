package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/env"
)

// kaspiProvider signs requests with HMAC-SHA256 over the sorted k=v pairs
// joined with "&", the signature field itself excluded.
type kaspiProvider struct {
	merchantID string
	secret     string
	baseURL    string
}

// NewKaspiProvider builds the Kaspi gateway adapter from the environment.
func NewKaspiProvider() Provider {
	return &kaspiProvider{
		merchantID: env.GetEnv("KASPI_MERCHANT_ID", ""),
		secret:     env.GetEnv("KASPI_SECRET", ""),
		baseURL:    env.GetEnv("KASPI_BASE_URL", "https://pay.kaspi.kz/pay"),
	}
}

func (p *kaspiProvider) Name() string {
	return models.PAYMENT_PROVIDER_KASPI
}

// KaspiSign computes the signature over sorted key=value pairs joined by
// "&", excluding the signature key, HMAC-SHA256 hex.
func KaspiSign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	payload := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *kaspiProvider) CreatePayment(req CreateRequest) (*CreateResponse, error) {
	externalID := fmt.Sprintf("kaspi-%d", req.TransactionID)
	params := map[string]string{
		"merchant_id": p.merchantID,
		"order_id":    strconv.FormatUint(uint64(req.TransactionID), 10),
		"amount":      strconv.FormatInt(req.Amount, 10),
		"currency":    req.Currency,
		"description": req.Description,
		"return_url":  req.ReturnURL,
	}
	params["signature"] = KaspiSign(params, p.secret)

	query := make([]string, 0, len(params))
	for k, v := range params {
		query = append(query, k+"="+v)
	}
	sort.Strings(query)

	return &CreateResponse{
		ExternalID: externalID,
		PaymentURL: p.baseURL + "?" + strings.Join(query, "&"),
	}, nil
}

func (p *kaspiProvider) VerifyWebhook(values map[string]string) error {
	got := values["signature"]
	if got == "" {
		return ErrBadSignature
	}
	want := KaspiSign(values, p.secret)
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return ErrBadSignature
	}
	return nil
}

func (p *kaspiProvider) ParseWebhook(values map[string]string) (*WebhookEvent, error) {
	externalID := values["transaction_id"]
	if externalID == "" {
		return nil, ErrMissingReference
	}
	return &WebhookEvent{
		ExternalTransactionID: externalID,
		TransactionID:         parseTransactionID(values["order_id"]),
		Success:               values["status"] == "success",
		Amount:                parseAmount(values["amount"]),
		Raw:                   values,
	}, nil
}
