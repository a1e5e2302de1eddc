// Package payment renders the inline checkout widget shown after a deal is
// ordered.
package payment

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"
)

var ErrNotConfigured = errors.New("payment checkout is not configured")

type Config struct {
	KeyID       string `split_words:"true"`
	Currency    string `split_words:"true" default:"INR"`
	Merchant    string `split_words:"true" default:"Ghumloo Deals"`
	Description string `split_words:"true" default:"Deal Booking"`
	ThemeColor  string `split_words:"true" default:"#ff6b6b"`
}

// Order carries what the widget needs from a created order.
type Order struct {
	Amount   float64
	OrderRef string
	Name     string
	Email    string
	Contact  string
}

const buttonPrefix = "payNowBtn_"

var checkoutTemplate = template.Must(template.New("checkout").Parse(`<div style="background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:white;padding:20px;border-radius:15px;margin:10px 0;font-family:Roboto,sans-serif">
<h3 style="margin:0 0 15px 0">Booking Confirmed!</h3>
<div style="background:white;color:#333;padding:15px;border-radius:10px;margin-bottom:15px">
<p><strong>Amount:</strong> ₹{{.Display}}</p>
</div>
<button id="{{.ButtonID}}" style="width:100%;background:{{.Theme}};color:white;border:none;padding:15px;border-radius:10px;font-size:16px;font-weight:bold;cursor:pointer">Pay ₹{{.Display}} Now</button>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
<script>
(function(){
  var btn = document.getElementById({{.ButtonID}});
  if (!btn) { return; }
  btn.onclick = function(){
    var rzp = new Razorpay({
      "key": {{.Key}},
      "amount": {{.Paise}},
      "currency": {{.Currency}},
      "name": {{.Merchant}},
      "description": {{.Description}},
      "order_id": {{.OrderRef}},
      "handler": function(response){ alert("Payment Success! Payment ID: " + response.razorpay_payment_id); },
      "prefill": {"name": {{.Name}}, "email": {{.Email}}, "contact": {{.Contact}}},
      "theme": {"color": {{.Theme}}}
    });
    rzp.open();
  };
})();
</script>
<p style="font-size:12px;margin-top:10px;text-align:center;color:#e2e8f0">Secure | Razorpay Verified</p>
</div>`))

type Checkout struct {
	cfg Config
}

func NewCheckout(cfg Config) *Checkout {
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.ThemeColor == "" {
		cfg.ThemeColor = "#ff6b6b"
	}
	return &Checkout{cfg: cfg}
}

type view struct {
	ButtonID    string
	Display     string
	Paise       int64
	Key         string
	Currency    string
	Merchant    string
	Description string
	OrderRef    string
	Name        string
	Email       string
	Contact     string
	Theme       string
}

// Render builds the widget for an order. Square brackets are removed from
// every interpolated value so the fragment survives tag stripping.
func (c *Checkout) Render(o Order) (string, error) {
	if c.cfg.KeyID == "" {
		return "", ErrNotConfigured
	}
	ref := noBrackets(strings.TrimSpace(o.OrderRef))
	if ref == "" {
		return "", errors.New("order reference is empty")
	}

	v := view{
		ButtonID:    buttonPrefix + ref,
		Display:     strconv.FormatFloat(o.Amount, 'f', -1, 64),
		Paise:       ToPaise(o.Amount),
		Key:         noBrackets(c.cfg.KeyID),
		Currency:    noBrackets(c.cfg.Currency),
		Merchant:    noBrackets(c.cfg.Merchant),
		Description: noBrackets(c.cfg.Description),
		OrderRef:    ref,
		Name:        noBrackets(o.Name),
		Email:       noBrackets(o.Email),
		Contact:     noBrackets(o.Contact),
		Theme:       noBrackets(c.cfg.ThemeColor),
	}

	var buf bytes.Buffer
	if err := checkoutTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render checkout: %w", err)
	}
	return buf.String(), nil
}

// ToPaise converts a rupee amount to the smallest currency unit, rounding to
// the nearest paisa.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// IsFragment reports whether text is a rendered checkout widget.
func IsFragment(text string) bool {
	return strings.Contains(text, buttonPrefix) &&
		strings.Contains(text, "Razorpay") &&
		strings.Contains(text, "<button")
}

var bracketReplacer = strings.NewReplacer("[", "", "]", "")

func noBrackets(s string) string {
	return bracketReplacer.Replace(s)
}
