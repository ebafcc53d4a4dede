package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"automind-api/internal/model"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no model server URL is set.
var ErrNotConfigured = errors.New("predictor is not configured")

// Predictor estimates the resale value of a car.
type Predictor interface {
	Predict(ctx context.Context, input model.PredictionInput) (float64, error)
}

// Client calls a model server that exposes POST /predict.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	enabled    bool
}

type predictRequest struct {
	Name      string `json:"name"`
	Company   string `json:"company"`
	Year      int    `json:"year"`
	KmsDriven int    `json:"kms_driven"`
	FuelType  string `json:"fuel_type"`
}

type predictResponse struct {
	PredictedValue *float64 `json:"predicted_value"`
	Error          string   `json:"error,omitempty"`
}

// NewClient creates a model server client. An empty baseURL yields a client
// that always reports ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger.Named("predictor"),
		enabled: baseURL != "",
	}
}

// IsEnabled reports whether a model server is configured.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Predict sends input to the model server and returns the raw estimate.
func (c *Client) Predict(ctx context.Context, input model.PredictionInput) (float64, error) {
	if !c.enabled {
		return 0, ErrNotConfigured
	}

	reqBody := predictRequest{
		Name:     input.ModelName,
		Company:  input.Company,
		Year:     input.Year,
		FuelType: input.FuelType,
	}
	if input.DistanceDriven != nil {
		reqBody.KmsDriven = *input.DistanceDriven
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("model server unavailable", zap.Error(err))
		return 0, fmt.Errorf("model server unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("model server returned unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return 0, fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.PredictedValue == nil {
		if out.Error != "" {
			return 0, fmt.Errorf("model server error: %s", out.Error)
		}
		return 0, errors.New("model server returned no prediction")
	}

	return *out.PredictedValue, nil
}

var _ Predictor = (*Client)(nil)
