package etsy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/config"
	apperrors "github.com/atolyeshop/etsysync/pkg/errors"
)

// Client talks to the Etsy v3 application API on behalf of one account
type Client struct {
	baseURL      string
	clientID     string
	sharedSecret string
	accessToken  string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a new Etsy API client for one account's access token
func NewClient(cfg config.EtsyConfig, accessToken string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		sharedSecret: cfg.SharedSecret,
		accessToken:  accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Etsy v3 wants both the user bearer token and the app key
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("x-api-key", fmt.Sprintf("%s:%s", c.clientID, c.sharedSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// GetUserShops returns the shop candidates owned by an Etsy user. The
// endpoint may answer with a bare shop object, a bare list, or a
// results-wrapped list; all three shapes reduce to a uniform slice here.
func (c *Client) GetUserShops(ctx context.Context, userID int64) ([]Shop, error) {
	status, body, err := c.get(ctx, fmt.Sprintf("/users/%d/shops", userID), nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("etsy API error: status %d, body: %s", status, string(body))
	}

	shops, err := parseShopsPayload(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shops response: %w", err)
	}
	return shops, nil
}

func parseShopsPayload(body []byte) ([]Shop, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var shops []Shop
		if err := json.Unmarshal(trimmed, &shops); err != nil {
			return nil, err
		}
		return shops, nil
	}

	var wrapper struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}

	if wrapper.Results != nil {
		var shops []Shop
		if err := json.Unmarshal(wrapper.Results, &shops); err != nil {
			return nil, err
		}
		return shops, nil
	}

	// No results key: the object itself is the single shop
	var shop Shop
	if err := json.Unmarshal(trimmed, &shop); err != nil {
		return nil, err
	}
	return []Shop{shop}, nil
}

// GetShopReceipts fetches one page of the receipts feed, pre-filtered by
// minCreated (epoch seconds). A non-success response is an ErrPageFetch,
// which aborts the remainder of a sync run.
func (c *Client) GetShopReceipts(ctx context.Context, shopID int64, limit, offset int, minCreated int64) (*ReceiptsPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if minCreated > 0 {
		params.Set("min_created", strconv.FormatInt(minCreated, 10))
	}

	status, body, err := c.get(ctx, fmt.Sprintf("/shops/%d/receipts", shopID), params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		c.logger.Error("Receipts page fetch failed",
			zap.Int64("shop_id", shopID),
			zap.Int("offset", offset),
			zap.Int("status", status),
		)
		return nil, &apperrors.ErrPageFetch{StatusCode: status, Body: string(body)}
	}

	var page ReceiptsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipts response: %w", err)
	}

	return &page, nil
}
