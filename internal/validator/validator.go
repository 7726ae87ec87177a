// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package validator performs the external key-validation round trip: one
// GET against the provider's credits endpoint to confirm a candidate key
// is active and has positive remaining balance. The key is validated once
// at registration; every later launch is gated only by the local PIN.
package validator // import "github.com/toeirei/pinvault/internal/validator"

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/toeirei/pinvault/internal/model"
)

const (
	// DefaultBaseURL is the OpenRouter-compatible API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultTimeout bounds the whole round trip. There is no mid-call
	// cancellation beyond this; callers surface a progress indicator.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an upstream error body is carried into
	// the surfaced message.
	maxErrorBody = 1024
)

// creditsResponse mirrors the relevant slice of the endpoint's JSON reply.
type creditsResponse struct {
	Data struct {
		TotalCredits *float64 `json:"total_credits"`
		TotalUsage   *float64 `json:"total_usage"`
	} `json:"data"`
}

// Client checks candidate keys against the external balance endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given API root. Empty baseURL and zero
// timeout select the defaults.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient returns a Client using the provided http.Client.
// Intended for tests, allowing injection of an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Check performs the single validation GET. It never returns a Go error;
// every failure mode is folded into the ValidationResult so the auth gate
// can surface it uniformly.
func (c *Client) Check(ctx context.Context, apiKey string) model.ValidationResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/credits", nil)
	if err != nil {
		return failure(model.ErrUnexpected, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeout, DNS failure, connection refused and friends all land here.
		return failure(model.ErrNetwork, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return failure(model.ErrInvalidKey, "")
	case resp.StatusCode == http.StatusTooManyRequests:
		return failure(model.ErrRateLimited, "")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return failure(model.ErrHTTP, msg)
	}

	var parsed creditsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failure(model.ErrUnexpected, err.Error())
	}
	if parsed.Data.TotalCredits == nil || parsed.Data.TotalUsage == nil {
		return failure(model.ErrUnexpected, "response missing total_credits/total_usage")
	}

	balance := *parsed.Data.TotalCredits - *parsed.Data.TotalUsage
	return model.ValidationResult{OK: balance > 0, Balance: balance}
}

func failure(kind model.ErrorKind, msg string) model.ValidationResult {
	return model.ValidationResult{Err: model.NewAuthError(kind, msg)}
}
