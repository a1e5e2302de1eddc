package contract

import (
	"context"

	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

// Capability turns an ordered list of turns into reply text, invoking tools
// as it sees fit.
type Capability interface {
	Generate(ctx context.Context, turns []statex.Turn) (string, error)
}

// Specialist answers a query against one domain scope of a session. It never
// fails: errors come back as apology text that is also recorded in history.
type Specialist interface {
	Domain() statex.Domain
	Ask(ctx context.Context, sess *statex.Session, query string) string
}

type Registry interface {
	Supervisor() Capability
	Lodging() Specialist
	Deals() Specialist
}
