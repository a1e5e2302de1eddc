package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		HotelsURL:     srv.URL + "/hotels",
		RatePlanURL:   srv.URL + "/rate-plan",
		DealsURL:      srv.URL + "/deals",
		DealDetailURL: srv.URL + "/offers/",
		OrderURL:      srv.URL + "/order",
		OrderToken:    "secret",
		PageSize:      20,
		MaxPages:      50,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func hotelPageJSON(page, last int, names ...string) string {
	hotels := make([]string, 0, len(names))
	for i, n := range names {
		hotels = append(hotels, fmt.Sprintf(`{"id":%d,"hotal_name":%q,"city_name":"Goa","amenities":["a","b","c","d","e","f","g","h","i","j","k","l"],"nearby_locations":[1,2,3,4,5,6,7]}`, page*100+i, n))
	}
	return fmt.Sprintf(`{"status":true,"data":{"hotels":[%s],"pagination":{"current_page_number":%d,"last_page":%d}}}`,
		strings.Join(hotels, ","), page, last)
}

func TestSearchHotelsPaginatesAndSanitizes(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		if q.Get("search") != "goa" || q.Get("per_page") != "20" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		switch q.Get("page") {
		case "1":
			fmt.Fprint(w, hotelPageJSON(1, 2, "Sea View", "Hill Top"))
		case "2":
			fmt.Fprint(w, hotelPageJSON(2, 2, "Palm Court"))
		default:
			t.Errorf("unexpected page %s", q.Get("page"))
		}
	}))
	defer srv.Close()

	hotels, err := newTestClient(t, srv).SearchHotels(context.Background(), "goa")
	if err != nil {
		t.Fatalf("SearchHotels() error = %v", err)
	}
	if len(hotels) != 3 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got %d hotels in %d calls", len(hotels), calls)
	}
	if hotels[0].ID != "100" || hotels[0].Name != "Sea View" || hotels[2].Name != "Palm Court" {
		t.Fatalf("unexpected hotels: %+v", hotels)
	}
	if len(hotels[0].Amenities) != 10 || len(hotels[0].NearbyLocations) != 5 {
		t.Fatalf("caps not applied: amenities=%d nearby=%d", len(hotels[0].Amenities), len(hotels[0].NearbyLocations))
	}
}

func TestSearchHotelsStopsAtPageCap(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, hotelPageJSON(1, 1000, "Endless"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, func(c *Config) { c.MaxPages = 3 })
	hotels, err := client.SearchHotels(context.Background(), "x")
	if err != nil {
		t.Fatalf("SearchHotels() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 || len(hotels) != 3 {
		t.Fatalf("calls=%d hotels=%d, want 3/3", got, len(hotels))
	}
}

func TestSearchHotelsKeepsCollectedPagesOnFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, hotelPageJSON(1, 5, "Sea View"))
			return
		}
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	hotels, err := newTestClient(t, srv).SearchHotels(context.Background(), "goa")
	if err != nil {
		t.Fatalf("SearchHotels() error = %v", err)
	}
	if len(hotels) != 1 {
		t.Fatalf("expected first page kept, got %d hotels", len(hotels))
	}
}

func TestSearchHotelsStatusFalseIsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":false,"data":{}}`)
	}))
	defer srv.Close()

	hotels, err := newTestClient(t, srv).SearchHotels(context.Background(), "nowhere")
	if err != nil || len(hotels) != 0 {
		t.Fatalf("SearchHotels() = %v, %v; want empty", hotels, err)
	}
}

func TestRatePlanRejectsBadDateWithoutNetwork(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).RatePlan(context.Background(), "42", "15-01-2025", "2025-01-16")
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("RatePlan() error = %v, want ErrInvalidDate", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("request must not be sent for a malformed date")
	}
}

func TestRatePlanPassesThroughBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("hotel_id") != "42" || q.Get("checkIn") != "2025-01-15" || q.Get("checkOut") != "2025-01-16" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"room_and_inventory":[{"room":"Deluxe","price":2500}]}`)
	}))
	defer srv.Close()

	body, err := newTestClient(t, srv).RatePlan(context.Background(), "42", "2025-01-15", "2025-01-16")
	if err != nil {
		t.Fatalf("RatePlan() error = %v", err)
	}
	if !strings.Contains(string(body), "Deluxe") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSearchDeals(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "club delhi" || q.Get("limit") != "100" || q.Get("max") != "2000" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"data":[{"category_name":"Club","name":"Club One","city":"Delhi","price":999,"person":2,"deal_id":7},{"name":"Cafe Two","deal_id":"d-8"}]}`)
	}))
	defer srv.Close()

	deals, err := newTestClient(t, srv).SearchDeals(context.Background(), "club delhi")
	if err != nil {
		t.Fatalf("SearchDeals() error = %v", err)
	}
	if len(deals) != 2 || deals[0].DealID != "7" || deals[1].DealID != "d-8" {
		t.Fatalf("unexpected deals: %+v", deals)
	}
	if string(deals[0].Price) != "999" {
		t.Fatalf("price not preserved: %s", deals[0].Price)
	}
}

func TestDealDetailErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/offers/ok":
			fmt.Fprint(w, `{"status":true,"offers":[]}`)
		case "/offers/broken":
			fmt.Fprint(w, "<html>")
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if _, err := client.DealDetail(context.Background(), "ok"); err != nil {
		t.Fatalf("DealDetail(ok) error = %v", err)
	}
	if _, err := client.DealDetail(context.Background(), "broken"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("DealDetail(broken) error = %v, want ErrMalformed", err)
	}
	if _, err := client.DealDetail(context.Background(), "down"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("DealDetail(down) error = %v, want ErrUnavailable", err)
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected request: %s auth=%q", r.Method, r.Header.Get("Authorization"))
		}
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.OrderDetails) != 1 || req.OrderDetails[0].OfferID != "off-1" || req.OrderDetails[0].Quantity != 1 {
			t.Errorf("unexpected order payload: %+v", req)
		}
		fmt.Fprint(w, `{"data":{"billing_details":{"amount":"499.50","razorpay_order_id":"order_X"},"user_details":{"full_name":"Asha","email":"a@example.com","mobile":"999"}}}`)
	}))
	defer srv.Close()

	order, err := newTestClient(t, srv).CreateOrder(context.Background(), "off-1", 0)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.Amount != 499.5 || order.OrderRef != "order_X" || order.Customer.Name != "Asha" || order.Quantity != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderMissingBilling(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateOrder(context.Background(), "off-1", 2)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("CreateOrder() error = %v, want ErrMalformed", err)
	}
}
