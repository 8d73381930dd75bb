package sms

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Send delivers a text message to an E.164 phone number through the
// configured HTTP gateway.
func Send(phone, text string) error {
	gateway := env.GetEnv("SMS_GATEWAY_URL", "")
	if gateway == "" {
		return fmt.Errorf("SMS_GATEWAY_URL is not configured")
	}

	form := url.Values{}
	form.Set("api_key", env.GetEnv("SMS_API_KEY", ""))
	form.Set("sender", env.GetEnv("SMS_SENDER", "baraholka"))
	form.Set("to", phone)
	form.Set("text", text)

	resp, err := httpClient.Post(gateway, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms delivery failed with status %d", resp.StatusCode)
	}
	return nil
}

// SendVerificationCode sends the one-time phone verification code.
func SendVerificationCode(phone, code string) error {
	return Send(phone, fmt.Sprintf("Your verification code: %s", code))
}
