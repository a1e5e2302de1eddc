package tool

import (
	"context"
	"strings"
	"sync"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	paymentx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/payment"
)

const (
	ToolHotel = "hotel_tool"
	ToolDeals = "deals_tool"
)

type delegateInput struct {
	Query string `json:"query"`
}

// DelegateTools forwards supervisor tool calls to the domain specialists for
// the session carried in the context.
func DelegateTools(lodging, deals contractx.Specialist) []einotool.BaseTool {
	return []einotool.BaseTool{
		delegate(ToolHotel, "Answer anything about hotels, rooms, stays, prices and availability.", lodging),
		delegate(ToolDeals, "Answer anything about deals, offers, clubs, cafes, restaurants, birthdays, gaming, kids zones and deal booking.", deals),
	}
}

func delegate(name, desc string, specialist contractx.Specialist) einotool.InvokableTool {
	return NewInvokable(name, desc,
		map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "The user's message, passed on in full", Required: true},
		},
		func(ctx context.Context, in delegateInput) (any, error) {
			sess, err := statex.SessionFromContext(ctx)
			if err != nil {
				return nil, err
			}
			answer := specialist.Ask(ctx, sess, statex.KeepTags(in.Query, specialist.Domain()))
			if paymentx.IsFragment(answer) {
				PassthroughFromContext(ctx).Offer(answer)
			}
			return answer, nil
		},
	)
}

// Passthrough carries a reply that must reach the user byte for byte, such
// as a checkout widget, past a model that might rewrite it.
type Passthrough struct {
	mu   sync.Mutex
	text string
}

func (p *Passthrough) Offer(text string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = text
}

func (p *Passthrough) Take() (string, bool) {
	if p == nil {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	text := p.text
	p.text = ""
	return text, strings.TrimSpace(text) != ""
}

type passthroughKey struct{}

func WithPassthrough(ctx context.Context) (context.Context, *Passthrough) {
	p := &Passthrough{}
	return context.WithValue(ctx, passthroughKey{}, p), p
}

// PassthroughFromContext returns nil when none is installed; a nil
// Passthrough ignores offers.
func PassthroughFromContext(ctx context.Context) *Passthrough {
	p, _ := ctx.Value(passthroughKey{}).(*Passthrough)
	return p
}
