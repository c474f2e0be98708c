package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"camlytics/internal/config"
	"camlytics/internal/model"
)

type complianceResponse struct {
	Data struct {
		Plate  string `json:"plate"`
		Status string `json:"status"`
	} `json:"data"`
}

// ComplianceClient asks the external classifier whether a plate belongs to
// an authorized vehicle for the lot.
type ComplianceClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewComplianceClient(cfg *config.Config) *ComplianceClient {
	return &ComplianceClient{
		baseURL:       cfg.ExternalServices.ComplianceServiceURL,
		internalToken: cfg.ExternalServices.ComplianceInternalToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *ComplianceClient) Enabled() bool {
	return c != nil && c.baseURL != ""
}

func (c *ComplianceClient) Classify(ctx context.Context, normalizedPlate string) (model.ComplianceStatus, error) {
	if !c.Enabled() {
		return model.ComplianceUnknown, fmt.Errorf("compliance service URL is not configured")
	}
	if normalizedPlate == "" {
		return model.ComplianceUnknown, fmt.Errorf("invalid plate number")
	}

	u, err := url.Parse(c.baseURL + "/internal/compliance/vehicles")
	if err != nil {
		return model.ComplianceUnknown, fmt.Errorf("invalid compliance service URL: %w", err)
	}

	q := u.Query()
	q.Set("plate", normalizedPlate)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.ComplianceUnknown, fmt.Errorf("failed to create request: %w", err)
	}
	if c.internalToken != "" {
		req.Header.Set("X-Internal-Token", c.internalToken)
	}

	// Retry network failures with a short backoff.
	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return model.ComplianceUnknown, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		req, _ = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}
	}
	if resp == nil {
		return model.ComplianceUnknown, fmt.Errorf("failed to execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ComplianceUnknown, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.ComplianceUnknown, fmt.Errorf("compliance service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response complianceResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.ComplianceUnknown, fmt.Errorf("failed to parse response: %w", err)
	}

	switch model.ComplianceStatus(response.Data.Status) {
	case model.ComplianceCompliant:
		return model.ComplianceCompliant, nil
	case model.ComplianceViolation:
		return model.ComplianceViolation, nil
	default:
		return model.ComplianceUnknown, nil
	}
}
