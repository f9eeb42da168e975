package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteClient calls a running gateway over HTTP.
type RemoteClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemoteClient accepts either a server root ("http://host:8080") or the
// full endpoint URL.
func NewRemoteClient(baseURL string, httpClient *http.Client) *RemoteClient {
	endpoint := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasSuffix(endpoint, "/api/generate") {
		endpoint += "/api/generate"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteClient{endpoint: endpoint, httpClient: httpClient}
}

func (c *RemoteClient) Call(ctx context.Context, action Action, payload any) (string, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(Request{Action: action, Payload: rawPayload})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded Response
	decodeErr := json.Unmarshal(rawBody, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", &StatusError{Status: resp.StatusCode, Err: ErrRateLimited}
		}
		msg := decoded.Error
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return "", &StatusError{Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return decoded.Result, nil
}
