package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	maxAmenities = 10
	maxNearby    = 5
	dateLayout   = "2006-01-02"
)

// Hotel is the trimmed-down record handed to the lodging agent.
type Hotel struct {
	ID              ID                `json:"id"`
	Name            string            `json:"name"`
	Address         string            `json:"address,omitempty"`
	City            string            `json:"city,omitempty"`
	MapLocation     json.RawMessage   `json:"map_location,omitempty"`
	Amenities       []json.RawMessage `json:"amenities,omitempty"`
	NearbyLocations []json.RawMessage `json:"nearby_locations,omitempty"`
}

type rawHotel struct {
	ID              ID                `json:"id"`
	HotalName       string            `json:"hotal_name"`
	HotelName       string            `json:"hotel_name"`
	Address         string            `json:"address_line_1"`
	City            string            `json:"city_name"`
	MapLocation     json.RawMessage   `json:"map_location"`
	Amenities       []json.RawMessage `json:"amenities"`
	NearbyLocations []json.RawMessage `json:"nearby_locations"`
}

func (h rawHotel) sanitize() Hotel {
	name := strings.TrimSpace(h.HotalName)
	if name == "" {
		name = strings.TrimSpace(h.HotelName)
	}
	return Hotel{
		ID:              h.ID,
		Name:            name,
		Address:         h.Address,
		City:            h.City,
		MapLocation:     h.MapLocation,
		Amenities:       capList(h.Amenities, maxAmenities),
		NearbyLocations: capList(h.NearbyLocations, maxNearby),
	}
}

func capList[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}

type hotelPage struct {
	Status bool `json:"status"`
	Data   struct {
		Hotels     []rawHotel `json:"hotels"`
		Pagination struct {
			CurrentPage *int `json:"current_page_number"`
			LastPage    *int `json:"last_page"`
		} `json:"pagination"`
	} `json:"data"`
}

// SearchHotels walks the paginated hotel listing. It stops on a false status,
// an empty page, the last page or the page cap. A failing page ends the walk
// and already collected hotels are kept; the error is returned only when
// nothing was collected.
func (c *Client) SearchHotels(ctx context.Context, query string) ([]Hotel, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidArgument)
	}

	var hotels []Hotel
	for page := 1; page <= c.maxPages; page++ {
		params := url.Values{}
		params.Set("search", query)
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(c.pageSize))

		var resp hotelPage
		if err := c.getJSON(ctx, c.hotelsURL, params, &resp); err != nil {
			if len(hotels) == 0 {
				return nil, err
			}
			log.Warn().Err(err).Str("query", query).Int("page", page).Msg("hotel pagination stopped early")
			break
		}
		if !resp.Status || len(resp.Data.Hotels) == 0 {
			break
		}
		for _, h := range resp.Data.Hotels {
			hotels = append(hotels, h.sanitize())
		}

		current, last := page, 1
		if p := resp.Data.Pagination.CurrentPage; p != nil {
			current = *p
		}
		if p := resp.Data.Pagination.LastPage; p != nil {
			last = *p
		}
		if current >= last {
			break
		}
	}

	log.Debug().Str("query", query).Int("hotels", len(hotels)).Msg("hotel search done")
	return hotels, nil
}

// RatePlan fetches rates for a hotel and stay. Both dates must be
// YYYY-MM-DD; malformed dates fail before any request is made.
func (c *Client) RatePlan(ctx context.Context, hotelID, checkIn, checkOut string) (json.RawMessage, error) {
	if _, err := ParseDate(checkIn); err != nil {
		return nil, err
	}
	if _, err := ParseDate(checkOut); err != nil {
		return nil, err
	}
	hotelID = strings.TrimSpace(hotelID)
	if hotelID == "" {
		return nil, fmt.Errorf("%w: hotel id is empty", ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("hotel_id", hotelID)
	params.Set("checkIn", checkIn)
	params.Set("checkOut", checkOut)

	body, err := c.get(ctx, c.ratePlanURL, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: rate plan body is not json", ErrMalformed)
	}
	return json.RawMessage(body), nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: got %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Today formats now as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(dateLayout)
}
