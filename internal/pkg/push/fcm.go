package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zhandosm/baraholka/internal/pkg/env"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Send delivers a push notification to a single device token via FCM.
func Send(token, title, body string, data map[string]interface{}) error {
	serverKey := env.GetEnv("FCM_SERVER_KEY", "")
	if serverKey == "" {
		return fmt.Errorf("FCM_SERVER_KEY is not configured")
	}
	endpoint := env.GetEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send")

	payload := map[string]interface{}{
		"to": token,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	}
	if len(data) > 0 {
		payload["data"] = data
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+serverKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push delivery failed with status %d", resp.StatusCode)
	}
	return nil
}
