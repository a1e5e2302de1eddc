package payment

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderCheckout(t *testing.T) {
	t.Parallel()

	c := NewCheckout(Config{KeyID: "rzp_test_key", Merchant: "Ghumloo Deals", Description: "Deal Booking"})
	html, err := c.Render(Order{
		Amount:   499.5,
		OrderRef: "order_ABC",
		Name:     "Asha [VIP]",
		Email:    "asha@example.com",
		Contact:  "9999999999",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		`id="payNowBtn_order_ABC"`,
		"checkout.razorpay.com/v1/checkout.js",
		"49950",
		`"order_id": "order_ABC"`,
		`"key": "rzp_test_key"`,
		"₹499.5",
		"Asha VIP",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered checkout missing %q:\n%s", want, html)
		}
	}
	if strings.ContainsAny(html, "[]") {
		t.Fatal("checkout fragment must not contain square brackets")
	}
	if !IsFragment(html) {
		t.Fatal("IsFragment() = false for rendered checkout")
	}
}

func TestRenderRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewCheckout(Config{}).Render(Order{Amount: 1, OrderRef: "o"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Render() error = %v, want ErrNotConfigured", err)
	}
}

func TestToPaiseRounds(t *testing.T) {
	t.Parallel()

	tests := map[float64]int64{
		0:       0,
		1:       100,
		19.99:   1999,
		0.5:     50,
		1299.10: 129910,
	}
	for in, want := range tests {
		if got := ToPaise(in); got != want {
			t.Fatalf("ToPaise(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestIsFragmentNeedsAllMarkers(t *testing.T) {
	t.Parallel()

	if IsFragment("<button>Razorpay</button>") {
		t.Fatal("missing button id marker must not count as fragment")
	}
	if IsFragment("plain text about payNowBtn_ and Razorpay") {
		t.Fatal("missing button element must not count as fragment")
	}
}
