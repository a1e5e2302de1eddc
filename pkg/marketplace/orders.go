package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Customer struct {
	Name    string `json:"full_name"`
	Email   string `json:"email"`
	Contact string `json:"mobile"`
}

// Order is the provider's answer to an order request.
type Order struct {
	OfferID  string
	Quantity int
	Amount   float64
	OrderRef string
	Customer Customer
}

type orderLine struct {
	OfferID  string `json:"offer_id"`
	Quantity int    `json:"quantity"`
}

type orderRequest struct {
	OrderDetails []orderLine `json:"order_details"`
}

type orderResponse struct {
	Data *struct {
		Billing *struct {
			Amount   amount `json:"amount"`
			OrderRef string `json:"razorpay_order_id"`
		} `json:"billing_details"`
		User Customer `json:"user_details"`
	} `json:"data"`
}

// amount accepts a JSON number or a numeric string.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*a = amount(f)
	return nil
}

// CreateOrder places a single-line order. A quantity below one is sent as one.
func (c *Client) CreateOrder(ctx context.Context, offerID string, quantity int) (Order, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return Order{}, fmt.Errorf("%w: offer id is empty", ErrInvalidArgument)
	}
	if quantity < 1 {
		quantity = 1
	}

	body, err := c.postJSON(ctx, c.orderURL, orderRequest{
		OrderDetails: []orderLine{{OfferID: offerID, Quantity: quantity}},
	})
	if err != nil {
		return Order{}, err
	}

	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Data == nil || resp.Data.Billing == nil {
		return Order{}, fmt.Errorf("%w: billing_details missing", ErrMalformed)
	}
	ref := strings.TrimSpace(resp.Data.Billing.OrderRef)
	if ref == "" {
		return Order{}, fmt.Errorf("%w: razorpay_order_id missing", ErrMalformed)
	}

	return Order{
		OfferID:  offerID,
		Quantity: quantity,
		Amount:   float64(resp.Data.Billing.Amount),
		OrderRef: ref,
		Customer: resp.Data.User,
	}, nil
}
