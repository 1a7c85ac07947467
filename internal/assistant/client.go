// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant provides the client for the completion service.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the completion service.
const (
	// DefaultBaseURL is the default completion service address.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout is the default timeout for service requests.
	// The core imposes no timeout policy of its own; this is the transport's.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client for all completion service requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common service failures.
var (
	// ErrServiceFailure indicates the service answered but reported
	// success=false for the request.
	ErrServiceFailure = errors.New("completion service reported failure")

	// ErrMalformedResponse indicates the response body was not the expected
	// JSON shape.
	ErrMalformedResponse = errors.New("malformed completion service response")
)

// ServiceError represents a non-2xx response from the completion service.
type ServiceError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("completion service error (HTTP %d): %s", e.Status, e.Body)
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// chatRequest is the payload for POST /chat.
type chatRequest struct {
	Message string `json:"message"`
}

// processRequest is the payload for POST /process.
type processRequest struct {
	ProcessName string `json:"process_name"`
}

// serviceResponse is the common response envelope for both endpoints.
type serviceResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the completion service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new completion service client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	// Don't mutate the shared client; give this instance its own.
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Chat sends a user message and returns the assistant's reply text.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.post(ctx, "/chat", chatRequest{Message: message})
}

// LookupProcess requests the step-by-step guide for a named process.
func (c *Client) LookupProcess(ctx context.Context, processName string) (string, error) {
	return c.post(ctx, "/process", processRequest{ProcessName: processName})
}

// post performs a single JSON request/response round trip.
func (c *Client) post(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	// Diagnostics only: path, status, and duration. Never the body.
	log.Printf("completion %s: %d (%v)", path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{Status: resp.StatusCode, Body: truncateBody(data)}
	}

	var sr serviceResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if !sr.Success {
		return "", ErrServiceFailure
	}

	return sr.Response, nil
}

// truncateBody keeps error messages readable when the service returns a
// large error page.
func truncateBody(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
