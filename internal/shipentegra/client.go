package shipentegra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/config"
)

// ActivitiesResponse is the raw tracking-activity payload
type ActivitiesResponse struct {
	Status string       `json:"status"`
	Data   ActivityData `json:"data"`
}

// ActivityData carries the carrier's free-text status fields. DeliveryDate
// may arrive as an ISO-8601 string or an epoch number.
type ActivityData struct {
	Status       string      `json:"status"`
	Summary      string      `json:"summary"`
	DeliveryDate interface{} `json:"deliveryDate"`
	Activities   []Activity  `json:"activities"`
}

// Activity is one tracking event
type Activity struct {
	Event string `json:"event"`
	Date  string `json:"date"`
}

// Client queries ShipEntegra shipment tracking
type Client struct {
	baseURL    string
	tokens     *TokenProvider
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ShipEntegra client
func NewClient(cfg config.ShipEntegraConfig, tokens *TokenProvider, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

// GetShipmentActivities fetches the tracking activity feed for one
// tracking number
func (c *Client) GetShipmentActivities(ctx context.Context, trackingNumber string) (*ActivitiesResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	params := url.Values{}
	params.Set("trackingNumber", trackingNumber)

	reqURL := c.baseURL + "/logistics/shipments/activities?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shipentegra API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var activities ActivitiesResponse
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities response: %w", err)
	}

	return &activities, nil
}
