package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/pricepulse/glitchradar/models"
)

// Client calls the external AI validation service that issues the final
// accept/reject for a detector-flagged anomaly. Validation is the expensive
// step of the pipeline, so requests are rate limited and retried.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates a validator client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2), // 2 requests per second
		baseURL: baseURL,
		logger:  log.With().Str("component", "validator_client").Logger(),
	}
}

// Validate submits a detection summary and returns the validator's verdict.
func (c *Client) Validate(ctx context.Context, req models.ValidationRequest) (*models.ValidationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding validation request: %w", err)
	}

	url := c.baseURL + "/validate"
	c.logger.Debug().Str("url", url).Str("anomaly_type", req.Detection.AnomalyType).Msg("Submitting anomaly for validation")

	var body []byte
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("non-200 status code: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	var result models.ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing validator response")
		return nil, fmt.Errorf("parsing validator response: %w", err)
	}

	c.logger.Debug().Bool("accepted", result.Accepted).Float64("confidence", result.Confidence).Msg("Validation verdict received")
	return &result, nil
}
