package tool

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	marketx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/marketplace"
)

const (
	ToolGetHotels      = "get_hotels"
	ToolGetRatePlan    = "get_rate_plan"
	ToolGetCurrentDate = "get_current_date"
)

type HotelProvider interface {
	SearchHotels(ctx context.Context, query string) ([]marketx.Hotel, error)
	RatePlan(ctx context.Context, hotelID, checkIn, checkOut string) (json.RawMessage, error)
}

type LodgingTools struct {
	provider HotelProvider
	now      func() time.Time
}

func NewLodgingTools(provider HotelProvider) *LodgingTools {
	return &LodgingTools{provider: provider, now: time.Now}
}

func (l *LodgingTools) Tools() []einotool.BaseTool {
	return []einotool.BaseTool{
		l.searchTool(),
		l.ratePlanTool(),
		l.currentDateTool(),
		CalculateTool(),
	}
}

type searchInput struct {
	Search string `json:"search"`
}

type NumberedHotel struct {
	Option int `json:"option"`
	marketx.Hotel
}

type HotelSearchResult struct {
	Status      bool            `json:"status"`
	Message     string          `json:"message"`
	TotalHotels int             `json:"total_hotels"`
	Hotels      []NumberedHotel `json:"hotels"`
}

func (l *LodgingTools) searchTool() einotool.InvokableTool {
	return NewInvokable(ToolGetHotels,
		"Search hotels by hotel name or by city/state. Results are numbered by option.",
		map[string]*schema.ParameterInfo{
			"search": {Type: schema.String, Desc: "Hotel name or city/state, e.g. noida or blue sapphire", Required: true},
		},
		func(ctx context.Context, in searchInput) (any, error) {
			sess, err := statex.SessionFromContext(ctx)
			if err != nil {
				return nil, err
			}

			hotels, err := l.provider.SearchHotels(ctx, in.Search)
			if err != nil {
				if errors.Is(err, marketx.ErrInvalidArgument) {
					return Failure("Please tell me a hotel name or city to search"), nil
				}
				return Failure("Hotel search is unavailable right now"), nil
			}
			if len(hotels) == 0 {
				return HotelSearchResult{Status: false, Message: "No hotels found", Hotels: []NumberedHotel{}}, nil
			}

			entities := make([]statex.Entity, 0, len(hotels))
			numbered := make([]NumberedHotel, 0, len(hotels))
			for i, h := range hotels {
				entities = append(entities, statex.Entity{ID: h.ID.String(), Name: h.Name})
				numbered = append(numbered, NumberedHotel{Option: i + 1, Hotel: h})
			}
			sess.Lodging.Memory.Rebuild(entities)
			log.Debug().
				Str("session_id", sess.ID).
				Str("tool", ToolGetHotels).
				Int("hotels", len(hotels)).
				Msg("lodging memory rebuilt")

			return HotelSearchResult{
				Status:      true,
				Message:     "Success",
				TotalHotels: len(numbered),
				Hotels:      numbered,
			}, nil
		},
	)
}

type ratePlanInput struct {
	HotelID  marketx.ID `json:"hotel_id"`
	CheckIn  string     `json:"checkIn"`
	CheckOut string     `json:"checkOut"`
}

type dateError struct {
	Error string `json:"error"`
}

func (l *LodgingTools) ratePlanTool() einotool.InvokableTool {
	return NewInvokable(ToolGetRatePlan,
		"Fetch room rates, meal plans, cancellation policy and inventory for a hotel and stay. Dates must be YYYY-MM-DD.",
		map[string]*schema.ParameterInfo{
			"hotel_id": {Type: schema.String, Desc: "Hotel id from the search results or a [hotel_id:...] tag", Required: true},
			"checkIn":  {Type: schema.String, Desc: "Check-in date, YYYY-MM-DD", Required: true},
			"checkOut": {Type: schema.String, Desc: "Check-out date, YYYY-MM-DD", Required: true},
		},
		func(ctx context.Context, in ratePlanInput) (any, error) {
			body, err := l.provider.RatePlan(ctx, in.HotelID.String(), in.CheckIn, in.CheckOut)
			switch {
			case errors.Is(err, marketx.ErrInvalidDate):
				return dateError{Error: "Dates must be in YYYY-MM-DD format"}, nil
			case errors.Is(err, marketx.ErrInvalidArgument):
				return Failure("Which hotel? Please mention name or option number"), nil
			case err != nil:
				return Failure("Rate plans are unavailable right now"), nil
			}
			return string(body), nil
		},
	)
}

func (l *LodgingTools) currentDateTool() einotool.InvokableTool {
	return NewInvokable(ToolGetCurrentDate,
		"Return today's date as YYYY-MM-DD. Use it to fill in a missing year.",
		nil,
		func(context.Context, struct{}) (any, error) {
			return marketx.Today(l.now()), nil
		},
	)
}
