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

// TokenProxyGateway fronts a processor reached through a tokenization
// proxy: stored vault tokens are exchanged for single-use processor
// tokens before the call is delegated to the inner adapter. Requests
// without a token (capture, cancel by transaction id) pass through
// untouched.
type TokenProxyGateway struct {
	inner      application.GatewayAdapter
	baseURL    string
	httpClient *http.Client
}

func NewTokenProxyGateway(inner application.GatewayAdapter, cfg config.GatewayEndpointConfig) *TokenProxyGateway {
	return &TokenProxyGateway{
		inner:   inner,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

func (g *TokenProxyGateway) Authorize(ctx context.Context, req application.AuthorizationRequest, creds application.Credentials) (*application.GatewayResult, error) {
	if req.Token != "" {
		exchanged, err := g.exchange(ctx, req.Token, creds)
		if err != nil {
			return nil, err
		}
		req.Token = exchanged
	}
	return g.inner.Authorize(ctx, req, creds)
}

func (g *TokenProxyGateway) Capture(ctx context.Context, req application.CaptureRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return g.inner.Capture(ctx, req, creds)
}

func (g *TokenProxyGateway) Cancel(ctx context.Context, req application.CancelRequest, creds application.Credentials) (*application.GatewayResult, error) {
	return g.inner.Cancel(ctx, req, creds)
}

func (g *TokenProxyGateway) Credit(ctx context.Context, req application.CreditRequest, creds application.Credentials) (*application.GatewayResult, error) {
	if req.Token != "" {
		exchanged, err := g.exchange(ctx, req.Token, creds)
		if err != nil {
			return nil, err
		}
		req.Token = exchanged
	}
	return g.inner.Credit(ctx, req, creds)
}

type tokenExchangeRequest struct {
	Token string `json:"token"`
}

type tokenExchangeResponse struct {
	ProxyToken string `json:"proxy_token"`
}

func (g *TokenProxyGateway) exchange(ctx context.Context, token string, creds application.Credentials) (string, error) {
	jsonData, err := json.Marshal(tokenExchangeRequest{Token: token})
	if err != nil {
		return "", fmt.Errorf("error marshalling json: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/tokens/exchange", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(creds.APIKey, creds.APISecret)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &application.GatewayError{
			Gateway:    domain.GatewayTokenProxy,
			Code:       "token_exchange_failed",
			Message:    fmt.Sprintf("token exchange returned status %d: %s", resp.StatusCode, string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	var exchangeResp tokenExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&exchangeResp); err != nil {
		return "", fmt.Errorf("error decoding json response: %w", err)
	}
	return exchangeResp.ProxyToken, nil
}
