package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// FCMClient implements Gateway over the FCM HTTP API. One request carries
// the whole token batch; FCM reports per-token results in request order.
type FCMClient struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

// NewFCMClient creates an FCM gateway client.
func NewFCMClient(endpoint, serverKey string, timeout time.Duration) *FCMClient {
	return &FCMClient{
		endpoint:  endpoint,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// SendMulticast sends msg to every token in one call.
func (c *FCMClient) SendMulticast(ctx context.Context, msg *Message) (*Response, error) {
	payload := fcmRequest{
		RegistrationIDs: msg.Tokens,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fcm request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build fcm request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fcm request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fcm returned status %d: %s", resp.StatusCode, raw)
	}

	var decoded fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode fcm response: %v", err)
	}

	out := &Response{
		SuccessCount: decoded.Success,
		FailureCount: decoded.Failure,
		Results:      make([]TokenResult, 0, len(decoded.Results)),
	}
	for _, r := range decoded.Results {
		out.Results = append(out.Results, TokenResult{
			Success: r.Error == "",
			Error:   r.Error,
		})
	}

	logrus.WithFields(logrus.Fields{
		"tokens":  len(msg.Tokens),
		"success": out.SuccessCount,
		"failure": out.FailureCount,
	}).Debug("FCM multicast sent")

	return out, nil
}
