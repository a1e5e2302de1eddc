package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Deal struct {
	CategoryName string          `json:"category_name"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	Price        json.RawMessage `json:"price,omitempty"`
	Person       json.RawMessage `json:"person,omitempty"`
	DealID       ID              `json:"deal_id"`
}

type dealsResponse struct {
	Data []Deal `json:"data"`
}

// SearchDeals runs one category-wise deal search. The price window and page
// size match the storefront listing.
func (c *Client) SearchDeals(ctx context.Context, query string) ([]Deal, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("search", query)
	params.Set("min", "0")
	params.Set("max", "2000")
	params.Set("price", "min")
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(100))

	var resp dealsResponse
	if err := c.getJSON(ctx, c.dealsURL, params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DealDetail returns the provider's detail document for a deal as-is.
// Non-2xx answers wrap ErrUnavailable; unparsable bodies wrap ErrMalformed.
func (c *Client) DealDetail(ctx context.Context, dealID string) (json.RawMessage, error) {
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		return nil, fmt.Errorf("%w: deal id is empty", ErrInvalidArgument)
	}

	body, err := c.get(ctx, c.dealDetailURL+url.PathEscape(dealID), nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: deal detail body is not json", ErrMalformed)
	}
	return json.RawMessage(body), nil
}
