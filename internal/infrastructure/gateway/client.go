package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clearbill/payments/internal/application"
	"github.com/clearbill/payments/internal/config"
	"github.com/clearbill/payments/internal/domain"
)

// HTTPGatewayClient talks to one processor's HTTP API. Both card and
// ACH processors speak the same envelope, so a single client serves
// either with its own base URL.
type HTTPGatewayClient struct {
	gateway    domain.GatewayID
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGatewayClient(gateway domain.GatewayID, cfg config.GatewayEndpointConfig) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		gateway: gateway,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (c *HTTPGatewayClient) Authorize(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error) {
	url := fmt.Sprintf("%s/api/v1/authorizations", c.baseURL)
	payload := authorizePayload{
		ReferenceID:     req.PaymentID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Capture:         req.Capture,
		Token:           req.Token,
		HolderName:      req.HolderName,
		LastFour:        req.LastFour,
		ExpirationMonth: req.ExpirationMonth,
		ExpirationYear:  req.ExpirationYear,
		AccountLastFour: req.AccountLastFour,
		RoutingLastFour: req.RoutingLastFour,
	}
	return c.send(ctx, url, &payload, creds)
}

func (c *HTTPGatewayClient) Capture(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error) {
	url := fmt.Sprintf("%s/api/v1/captures", c.baseURL)
	payload := capturePayload{
		ReferenceID:   req.PaymentID,
		Amount:        req.Amount,
		TransactionID: req.GatewayTransactionID,
	}
	return c.send(ctx, url, &payload, creds)
}

func (c *HTTPGatewayClient) Cancel(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
	url := fmt.Sprintf("%s/api/v1/voids", c.baseURL)
	payload := cancelPayload{
		ReferenceID:   req.PaymentID,
		TransactionID: req.GatewayTransactionID,
	}
	return c.send(ctx, url, &payload, creds)
}

func (c *HTTPGatewayClient) Credit(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error) {
	url := fmt.Sprintf("%s/api/v1/credits", c.baseURL)
	payload := creditPayload{
		ReferenceID: req.PaymentID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Token:       req.Token,
	}
	return c.send(ctx, url, &payload, creds)
}

func (c *HTTPGatewayClient) send(ctx context.Context, url string, reqBody any, creds application.Credentials) (*application.GatewayResult, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Merchant-ID", creds.MerchantID)
	httpReq.SetBasicAuth(creds.APIKey, creds.APISecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, &application.GatewayError{
				Gateway:    c.gateway,
				Code:       "unexpected_response",
				Message:    fmt.Sprintf("gateway returned status %d: %s", resp.StatusCode, string(body)),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &application.GatewayError{
			Gateway:    c.gateway,
			Code:       errResp.Err,
			Message:    errResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var txResp transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&txResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &application.GatewayResult{
		Success:              txResp.Approved,
		GatewayTransactionID: txResp.TransactionID,
		ResponseCode:         txResp.ResponseCode,
		Message:              txResp.Message,
	}, nil
}
