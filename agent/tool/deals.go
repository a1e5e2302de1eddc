package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	ledgerx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/ledger"
	marketx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/marketplace"
	paymentx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/payment"
)

const (
	ToolGetDeals          = "get_deals"
	ToolGetMoreAboutDeals = "get_more_about_deals"
	ToolBookDeal          = "book_deal"
)

type DealProvider interface {
	SearchDeals(ctx context.Context, query string) ([]marketx.Deal, error)
	DealDetail(ctx context.Context, dealID string) (json.RawMessage, error)
	CreateOrder(ctx context.Context, offerID string, quantity int) (marketx.Order, error)
}

type DealsTools struct {
	provider DealProvider
	checkout *paymentx.Checkout
	ledger   ledgerx.Recorder
}

func NewDealsTools(provider DealProvider, checkout *paymentx.Checkout, ledger ledgerx.Recorder) *DealsTools {
	if ledger == nil {
		ledger = ledgerx.Noop{}
	}
	return &DealsTools{provider: provider, checkout: checkout, ledger: ledger}
}

func (d *DealsTools) Tools() []einotool.BaseTool {
	return []einotool.BaseTool{
		d.searchTool(),
		d.detailTool(),
		d.bookTool(),
		CalculateTool(),
	}
}

type NumberedDeal struct {
	Option int `json:"option"`
	marketx.Deal
}

type DealSearchResult struct {
	Status     bool           `json:"status"`
	Message    string         `json:"message"`
	TotalDeals int            `json:"total_deals"`
	Deals      []NumberedDeal `json:"deals"`
}

func (d *DealsTools) searchTool() einotool.InvokableTool {
	return NewInvokable(ToolGetDeals,
		"Search deals and offers by city and occasion (club, cafe, restaurant, birthday, gaming, kids zone). Results are numbered by option.",
		map[string]*schema.ParameterInfo{
			"search": {Type: schema.String, Desc: "City and/or category, e.g. club delhi", Required: true},
		},
		func(ctx context.Context, in searchInput) (any, error) {
			sess, err := statex.SessionFromContext(ctx)
			if err != nil {
				return nil, err
			}

			deals, err := d.provider.SearchDeals(ctx, in.Search)
			if err != nil {
				if errors.Is(err, marketx.ErrInvalidArgument) {
					return Failure("Please tell me your city and occasion"), nil
				}
				return Failure("Deal search is unavailable right now"), nil
			}
			if len(deals) == 0 {
				return DealSearchResult{Status: false, Message: "No deals found", Deals: []NumberedDeal{}}, nil
			}

			entities := make([]statex.Entity, 0, len(deals))
			numbered := make([]NumberedDeal, 0, len(deals))
			for i, deal := range deals {
				entities = append(entities, statex.Entity{ID: deal.DealID.String(), Name: deal.Name})
				numbered = append(numbered, NumberedDeal{Option: i + 1, Deal: deal})
			}
			sess.Deals.Memory.Rebuild(entities)
			log.Debug().
				Str("session_id", sess.ID).
				Str("tool", ToolGetDeals).
				Int("deals", len(deals)).
				Msg("deals memory rebuilt")

			return DealSearchResult{
				Status:     true,
				Message:    "Success",
				TotalDeals: len(numbered),
				Deals:      numbered,
			}, nil
		},
	)
}

type dealDetailInput struct {
	DealID marketx.ID `json:"deal_id"`
}

func (d *DealsTools) detailTool() einotool.InvokableTool {
	return NewInvokable(ToolGetMoreAboutDeals,
		"Fetch the offers and packages of one deal, including offer ids used for booking.",
		map[string]*schema.ParameterInfo{
			"deal_id": {Type: schema.String, Desc: "Deal id from the search results or a [deal_id:...] tag", Required: true},
		},
		func(ctx context.Context, in dealDetailInput) (any, error) {
			body, err := d.provider.DealDetail(ctx, in.DealID.String())
			switch {
			case errors.Is(err, marketx.ErrMalformed):
				return Failure("Deal details are currently unavailable"), nil
			case err != nil:
				return Failure("Unable to fetch deal details right now"), nil
			}
			return string(body), nil
		},
	)
}

type bookInput struct {
	OfferID  marketx.ID `json:"offer_id"`
	Quantity int        `json:"quantity"`
}

func (d *DealsTools) bookTool() einotool.InvokableTool {
	return NewInvokable(ToolBookDeal,
		"Place an order for a chosen offer and return the payment widget as HTML. Return the HTML to the user unchanged.",
		map[string]*schema.ParameterInfo{
			"offer_id": {Type: schema.String, Desc: "Offer id chosen by the user", Required: true},
			"quantity": {Type: schema.Integer, Desc: "Number of units, default 1"},
		},
		func(ctx context.Context, in bookInput) (any, error) {
			return d.book(ctx, in), nil
		},
	)
}

// book always yields user-facing text: the checkout widget or a plain
// "Error booking deal" line.
func (d *DealsTools) book(ctx context.Context, in bookInput) string {
	order, err := d.provider.CreateOrder(ctx, in.OfferID.String(), in.Quantity)
	if err != nil {
		return fmt.Sprintf("Error booking deal: %s", err)
	}
	if d.checkout == nil {
		return fmt.Sprintf("Error booking deal: %s", paymentx.ErrNotConfigured)
	}

	html, err := d.checkout.Render(paymentx.Order{
		Amount:   order.Amount,
		OrderRef: order.OrderRef,
		Name:     order.Customer.Name,
		Email:    order.Customer.Email,
		Contact:  order.Customer.Contact,
	})
	if err != nil {
		return fmt.Sprintf("Error booking deal: %s", err)
	}

	rec := ledgerx.OrderRecord{
		OfferID:  order.OfferID,
		Quantity: order.Quantity,
		Amount:   order.Amount,
		OrderRef: order.OrderRef,
	}
	if sess, err := statex.SessionFromContext(ctx); err == nil {
		rec.SessionID = sess.ID
	}
	if err := d.ledger.Record(ctx, rec); err != nil {
		log.Error().Err(err).Str("order_ref", order.OrderRef).Msg("order not recorded in ledger")
	}

	return html
}
