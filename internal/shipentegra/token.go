package shipentegra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/config"
)

const (
	// Refresh slightly before the token's stated validity window ends
	tokenTTLBuffer   = 60 * time.Second
	tokenTTLFallback = 30 * time.Minute
	tokenTTLMinimum  = 60 * time.Second
)

// TokenProvider exchanges client credentials for a bearer token and caches
// it until shortly before expiry. Concurrent callers share one token; a
// cached unexpired token is always preferred over refreshing.
type TokenProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenProvider creates a new ShipEntegra token provider
func NewTokenProvider(cfg config.ShipEntegraConfig, logger *zap.Logger) *TokenProvider {
	return &TokenProvider{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

// Token returns the cached bearer token, refreshing it if expired
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiresAt) {
		return p.token, nil
	}

	if p.clientID == "" || p.clientSecret == "" {
		return "", fmt.Errorf("shipentegra credentials are not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"clientId":     p.clientID,
		"clientSecret": p.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/token", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shipentegra token error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		Data struct {
			AccessToken         string      `json:"accessToken"`
			AccessTokenValidity interface{} `json:"accessTokenValidity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	if tokenResp.Data.AccessToken == "" {
		return "", fmt.Errorf("shipentegra token response carried no accessToken")
	}

	ttl := ParseTokenValidity(tokenResp.Data.AccessTokenValidity) - tokenTTLBuffer
	if ttl < tokenTTLMinimum {
		ttl = tokenTTLMinimum
	}

	p.token = tokenResp.Data.AccessToken
	p.expiresAt = time.Now().Add(ttl)
	p.logger.Debug("Refreshed ShipEntegra access token", zap.Duration("ttl", ttl))

	return p.token, nil
}

// ParseTokenValidity parses the accessTokenValidity field, which may arrive
// as a plain number of seconds, a digit string, or a colon-separated
// H:M:S / M:S duration string. Anything else falls back to a fixed TTL.
func ParseTokenValidity(value interface{}) time.Duration {
	switch v := value.(type) {
	case nil:
		return tokenTTLFallback
	case float64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return tokenTTLFallback
		}

		parts := strings.Split(text, ":")
		values := make([]int, 0, len(parts))
		for _, part := range parts {
			n, ok := parseDigits(part)
			if !ok {
				return tokenTTLFallback
			}
			values = append(values, n)
		}

		switch len(values) {
		case 1:
			return time.Duration(values[0]) * time.Second
		case 2:
			return time.Duration(values[0]*60+values[1]) * time.Second
		case 3:
			return time.Duration(values[0]*3600+values[1]*60+values[2]) * time.Second
		}
	}
	return tokenTTLFallback
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
