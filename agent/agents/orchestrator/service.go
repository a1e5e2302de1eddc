package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	nodex "github.com/tanpawarit/Chative-Travel-Concierge/agent/nodes/orchestrator"
	resolverx "github.com/tanpawarit/Chative-Travel-Concierge/agent/resolver"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Orchestrator struct {
	models    contractx.Registry
	sessions  *statex.Registry
	resolvers map[statex.Domain]*resolverx.Resolver
	metrics   *metricsx.Metrics

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	models contractx.Registry,
	sessions *statex.Registry,
	metrics *metricsx.Metrics,
) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}

	o := &Orchestrator{
		models:   models,
		sessions: sessions,
		resolvers: map[statex.Domain]*resolverx.Resolver{
			statex.DomainLodging: resolverx.NewLodging(),
			statex.DomainDeals:   resolverx.NewDeals(),
		},
		metrics: metrics,
		now:     time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one inbound message while holding its session's lock.
// Messages for other sessions proceed in parallel.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (contractx.Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return contractx.Reply{}, ErrInvalidSession
	}
	if strings.TrimSpace(text) == "" {
		return contractx.Reply{}, ErrInvalidMessage
	}

	sess, err := o.sessions.Acquire(sessionID)
	if err != nil {
		return contractx.Reply{}, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Touch(o.now())

	out, err := o.graphRunner.Invoke(statex.WithSession(ctx, sess), nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return contractx.Reply{}, err
	}
	return contractx.Reply{Text: out.Reply, Reset: out.Reset}, nil
}

// ResetSession clears a session from outside the chat flow. Unknown sessions
// are a no-op.
func (o *Orchestrator) ResetSession(sessionID string) bool {
	if !o.sessions.Reset(sessionID) {
		return false
	}
	o.metrics.ObserveReset("endpoint")
	return true
}
