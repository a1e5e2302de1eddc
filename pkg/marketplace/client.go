// Package marketplace talks to the hotel and deals provider APIs.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrInvalidDate     = errors.New("dates must be in YYYY-MM-DD format")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("provider unavailable")
	ErrMalformed       = errors.New("provider response is malformed")
)

type Config struct {
	HotelsURL     string        `split_words:"true" default:"https://apibook.ghumloo.com/api/mobile/get-hotel"`
	RatePlanURL   string        `split_words:"true" default:"https://partner.ghumloo.com/api/rate-plan-by-hotel"`
	DealsURL      string        `split_words:"true" default:"https://apideals.ghumloo.com/api/categoryWiseDeals"`
	DealDetailURL string        `split_words:"true" default:"https://apideals.ghumloo.com/api/getOffers/"`
	OrderURL      string        `split_words:"true" default:"https://apideals.ghumloo.com/api/orderNow"`
	OrderToken    string        `split_words:"true"`
	Timeout       time.Duration `split_words:"true" default:"10s"`
	OrderTimeout  time.Duration `split_words:"true" default:"15s"`
	PageSize      int           `split_words:"true" default:"20"`
	MaxPages      int           `split_words:"true" default:"50"`
}

type Client struct {
	hotelsURL     string
	ratePlanURL   string
	dealsURL      string
	dealDetailURL string
	orderURL      string
	orderToken    string
	pageSize      int
	maxPages      int

	httpClient  *http.Client
	orderClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	urls := map[string]*string{
		"hotels url":      &cfg.HotelsURL,
		"rate plan url":   &cfg.RatePlanURL,
		"deals url":       &cfg.DealsURL,
		"deal detail url": &cfg.DealDetailURL,
		"order url":       &cfg.OrderURL,
	}
	for name, raw := range urls {
		*raw = strings.TrimSpace(*raw)
		if *raw == "" {
			return nil, fmt.Errorf("marketplace %s is required", name)
		}
		if _, err := url.ParseRequestURI(*raw); err != nil {
			return nil, fmt.Errorf("marketplace %s: %w", name, err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	orderTimeout := cfg.OrderTimeout
	if orderTimeout <= 0 {
		orderTimeout = 15 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}

	return &Client{
		hotelsURL:     cfg.HotelsURL,
		ratePlanURL:   cfg.RatePlanURL,
		dealsURL:      cfg.DealsURL,
		dealDetailURL: cfg.DealDetailURL,
		orderURL:      cfg.OrderURL,
		orderToken:    strings.TrimSpace(cfg.OrderToken),
		pageSize:      pageSize,
		maxPages:      maxPages,
		httpClient:    &http.Client{Timeout: timeout},
		orderClient:   &http.Client{Timeout: orderTimeout},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	return do(c.httpClient, req)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.orderToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.orderToken)
	}
	return do(c.orderClient, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ID accepts either a JSON number or a JSON string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
