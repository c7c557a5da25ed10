// Package advisory is the boundary to the remote advisory/prediction
// service. It speaks the service's wire protocol and hands back the raw
// reply payload for classification; it never interprets the shape itself.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/exportmate/exportmate/internal/domain"
)

// Client is the request/response boundary to the advisory service.
type Client interface {
	// Chat sends a free-form advisory message and returns the raw reply
	// payload, which may be a narrative string or a recommendation object.
	Chat(ctx context.Context, message string) (json.RawMessage, error)
	// Predict sends a normalized prediction request and returns the raw
	// reply payload with the predicted price co-located next to the
	// recommendation fields.
	Predict(ctx context.Context, req *domain.PredictionRequest) (json.RawMessage, error)
}

// HTTPClient implements Client over the service's two JSON endpoints.
type HTTPClient struct {
	httpClient  *http.Client
	baseURL     string
	chatPath    string
	predictPath string
}

// Config configures the HTTP client.
type Config struct {
	BaseURL     string
	ChatPath    string
	PredictPath string
	Timeout     time.Duration
}

// NewHTTPClient creates a client for the advisory service.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.ChatPath == "" {
		cfg.ChatPath = "/chat"
	}
	if cfg.PredictPath == "" {
		cfg.PredictPath = "/predict"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		chatPath:    cfg.ChatPath,
		predictPath: cfg.PredictPath,
	}
}

// envelope is the common wrapper of both endpoints.
type envelope struct {
	Response json.RawMessage `json:"response"`
}

// predictionBody is the prediction endpoint's inner payload.
type predictionBody struct {
	PredictedPrice     float64         `json:"predicted_price"`
	RecommendationData json.RawMessage `json:"recommendation_data"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Chat(ctx context.Context, message string) (json.RawMessage, error) {
	var env envelope
	if err := c.postJSON(ctx, c.chatPath, chatRequest{Message: message}, &env); err != nil {
		return nil, err
	}
	if len(env.Response) == 0 {
		return nil, fmt.Errorf("%w: empty reply", domain.ErrMalformedResponse)
	}
	return env.Response, nil
}

func (c *HTTPClient) Predict(ctx context.Context, req *domain.PredictionRequest) (json.RawMessage, error) {
	var env envelope
	if err := c.postJSON(ctx, c.predictPath, req, &env); err != nil {
		return nil, err
	}

	var body predictionBody
	if err := json.Unmarshal(env.Response, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	// Flatten the predicted price into the recommendation object so the
	// classifier sees one payload with the fields side by side.
	flat := map[string]json.RawMessage{}
	if len(body.RecommendationData) > 0 {
		if err := json.Unmarshal(body.RecommendationData, &flat); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
	}
	price, err := json.Marshal(body.PredictedPrice)
	if err != nil {
		return nil, err
	}
	flat["predictedPrice"] = price

	return json.Marshal(flat)
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s returned %d: %s",
			domain.ErrServiceUnavailable, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}
