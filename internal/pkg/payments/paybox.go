package payments

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zhandosm/baraholka/app/models"
	"github.com/zhandosm/baraholka/internal/pkg/env"
)

// payBoxProvider shares the signature scheme with Halyk but runs against
// its own merchant credentials and endpoint.
type payBoxProvider struct {
	merchantID string
	secret     string
	baseURL    string
}

// NewPayBoxProvider builds the PayBox gateway adapter from the environment.
func NewPayBoxProvider() Provider {
	return &payBoxProvider{
		merchantID: env.GetEnv("PAYBOX_MERCHANT_ID", ""),
		secret:     env.GetEnv("PAYBOX_SECRET", ""),
		baseURL:    env.GetEnv("PAYBOX_BASE_URL", "https://api.paybox.money/payment.php"),
	}
}

func (p *payBoxProvider) Name() string {
	return models.PAYMENT_PROVIDER_PAYBOX
}

func (p *payBoxProvider) CreatePayment(req CreateRequest) (*CreateResponse, error) {
	externalID := fmt.Sprintf("paybox-%d", req.TransactionID)
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

func (p *payBoxProvider) VerifyWebhook(values map[string]string) error {
	return verifyPayBoxSig(values, p.secret)
}

func (p *payBoxProvider) ParseWebhook(values map[string]string) (*WebhookEvent, error) {
	return parsePayBoxWebhook(values)
}
