package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// JupiterSource reads the current token/USD price from the Jupiter
// price API. Implements hintverify.PriceSource.
type JupiterSource struct {
	baseURL    string
	tokenID    string
	httpClient *http.Client
}

func NewJupiterSource() *JupiterSource {
	baseURL := os.Getenv("PRICE_API_URL")
	if baseURL == "" {
		baseURL = "https://lite-api.jup.ag/price/v2"
	}
	return &JupiterSource{
		baseURL: baseURL,
		tokenID: os.Getenv("PRICE_TOKEN_ID"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *JupiterSource) TokenPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	if s.tokenID == "" {
		return decimal.Zero, fmt.Errorf("PRICE_TOKEN_ID is not set")
	}

	reqURL := s.baseURL + "?ids=" + url.QueryEscape(s.tokenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch price: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read price response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return decimal.Zero, fmt.Errorf("price API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Data map[string]struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("decode price response: %w", err)
	}

	entry, ok := parsed.Data[s.tokenID]
	if !ok || entry.Price == "" {
		return decimal.Zero, fmt.Errorf("price API returned no price for %s", s.tokenID)
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", entry.Price, err)
	}
	return price, nil
}
