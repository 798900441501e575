// Package subscription is the read-only client for the subscription
// service that owns the contracts scheduled payments hang off.
package subscription

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/clearbill/payments/internal/config"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(cfg config.SubscriptionConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// SubscriptionExists probes the subscription by id. 404 means it does
// not exist; any other non-2xx status is an infrastructure failure.
func (c *HTTPClient) SubscriptionExists(ctx context.Context, subscriptionID string) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/subscriptions/%s", c.baseURL, subscriptionID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("subscription service returned status %d", resp.StatusCode)
	}
}
