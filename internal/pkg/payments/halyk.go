package payments

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/env"
)

// halykProvider uses the PayBox-style MD5 scheme: values sorted by key,
// joined with ";", the secret appended last.
type halykProvider struct {
	merchantID string
	secret     string
	baseURL    string
}

// NewHalykProvider builds the Halyk gateway adapter from the environment.
func NewHalykProvider() Provider {
	return &halykProvider{
		merchantID: env.GetEnv("HALYK_MERCHANT_ID", ""),
		secret:     env.GetEnv("HALYK_SECRET", ""),
		baseURL:    env.GetEnv("HALYK_BASE_URL", "https://epay.homebank.kz/payform"),
	}
}

func (p *halykProvider) Name() string {
	return models.PAYMENT_PROVIDER_HALYK
}

// PayBoxSign computes the MD5 signature over values sorted by key, joined
// with ";", with the secret as the last element. The pg_sig key is excluded.
func PayBoxSign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "pg_sig" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		values = append(values, params[k])
	}
	values = append(values, secret)

	sum := md5.Sum([]byte(strings.Join(values, ";")))
	return hex.EncodeToString(sum[:])
}

func verifyPayBoxSig(values map[string]string, secret string) error {
	got := values["pg_sig"]
	if got == "" {
		return ErrBadSignature
	}
	want := PayBoxSign(values, secret)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(got)), []byte(want)) != 1 {
		return ErrBadSignature
	}
	return nil
}

func parsePayBoxWebhook(values map[string]string) (*WebhookEvent, error) {
	externalID := values["pg_payment_id"]
	if externalID == "" {
		return nil, ErrMissingReference
	}
	return &WebhookEvent{
		ExternalTransactionID: externalID,
		TransactionID:         parseTransactionID(values["pg_order_id"]),
		Success:               values["pg_result"] == "1",
		Amount:                parseAmount(values["pg_amount"]),
		Raw:                   values,
	}, nil
}

func (p *halykProvider) CreatePayment(req CreateRequest) (*CreateResponse, error) {
	externalID := fmt.Sprintf("halyk-%d", req.TransactionID)
	params := map[string]string{
		"pg_merchant_id": p.merchantID,
		"pg_order_id":    strconv.FormatUint(uint64(req.TransactionID), 10),
		"pg_amount":      strconv.FormatInt(req.Amount, 10),
		"pg_currency":    req.Currency,
		"pg_description": req.Description,
		"pg_result_url":  req.ReturnURL,
	}
	params["pg_sig"] = PayBoxSign(params, p.secret)

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

func (p *halykProvider) VerifyWebhook(values map[string]string) error {
	return verifyPayBoxSig(values, p.secret)
}

func (p *halykProvider) ParseWebhook(values map[string]string) (*WebhookEvent, error) {
	return parsePayBoxWebhook(values)
}
