package specialist

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	resolverx "github.com/tanpawarit/Chative-Travel-Concierge/agent/resolver"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	logx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger"
)

// Agent answers queries for one domain: annotate, append, invoke, append,
// strip.
type Agent struct {
	domain     statex.Domain
	agentType  contractx.AgentType
	capability contractx.Capability
	resolver   *resolverx.Resolver
	metrics    *metricsx.Metrics
}

var _ contractx.Specialist = (*Agent)(nil)

func NewAgent(
	domain statex.Domain,
	capability contractx.Capability,
	resolver *resolverx.Resolver,
	metrics *metricsx.Metrics,
) (*Agent, error) {
	var agentType contractx.AgentType
	switch domain {
	case statex.DomainLodging:
		agentType = contractx.AgentTypeLodging
	case statex.DomainDeals:
		agentType = contractx.AgentTypeDeals
	default:
		return nil, fmt.Errorf("%w: %s", statex.ErrUnknownDomain, domain)
	}
	if capability == nil {
		return nil, fmt.Errorf("%w: capability is required for %s", contractx.ErrValidation, domain)
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: resolver is required for %s", contractx.ErrValidation, domain)
	}

	return &Agent{
		domain:     domain,
		agentType:  agentType,
		capability: capability,
		resolver:   resolver,
		metrics:    metrics,
	}, nil
}

func (a *Agent) Domain() statex.Domain {
	return a.domain
}

func (a *Agent) Ask(ctx context.Context, sess *statex.Session, query string) string {
	if sess == nil {
		return contractx.Apology(statex.ErrNoSession)
	}
	scope, err := sess.Scope(a.domain)
	if err != nil {
		return contractx.Apology(err)
	}

	logger := logx.ForSession(sess.ID).With().Str("agent", string(a.agentType)).Logger()

	// Tags forwarded by the supervisor are not user text and never reach the
	// resolver.
	text := statex.StripTags(query)
	if text == "" {
		text = strings.TrimSpace(query)
	}
	turn := statex.UserTurn(text)
	if ref, ok := a.forwardedReference(query); ok {
		turn.References = []statex.Reference{ref}
		logger.Debug().Str("entity_id", ref.EntityID).Msg("reference forwarded")
	} else if res := a.resolver.Annotate(text, scope.Memory); res.Found() {
		turn.References = []statex.Reference{{Domain: a.domain, EntityID: res.EntityID}}
		a.metrics.ObserveResolution(string(a.domain), res.Rule)
		logger.Debug().
			Str("rule", res.Rule).
			Str("entity_id", res.EntityID).
			Msg("reference resolved")
	}
	scope.History.Append(turn)

	answer, err := a.capability.Generate(ctx, scope.History.Turns())
	if err != nil {
		logger.Error().Err(err).Msg("specialist failed")
		a.metrics.ObserveTurn(string(a.agentType), "error")
		apology := contractx.Apology(err)
		scope.History.Append(statex.AssistantTurn(apology))
		return apology
	}

	a.metrics.ObserveTurn(string(a.agentType), "ok")
	scope.History.Append(statex.AssistantTurn(answer))
	return statex.StripTags(answer)
}

// forwardedReference returns the first tag of this agent's domain carried in
// the query.
func (a *Agent) forwardedReference(query string) (statex.Reference, bool) {
	for _, ref := range statex.ParseTags(query) {
		if ref.Domain == a.domain {
			return ref, true
		}
	}
	return statex.Reference{}, false
}
