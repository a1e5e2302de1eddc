package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	resolverx "github.com/tanpawarit/Chative-Travel-Concierge/agent/resolver"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	logx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger"
)

// AnnotateReferences builds the supervisor turn, tagging it with every
// domain entity the utterance points at.
func AnnotateReferences(
	in *GraphState,
	resolvers map[statex.Domain]*resolverx.Resolver,
	metrics *metricsx.Metrics,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	logger := logx.ForSession(in.SessionID)
	var refs []statex.Reference
	for _, scope := range in.Session.Scopes() {
		r, ok := resolvers[scope.Domain]
		if !ok {
			continue
		}
		res := r.Annotate(in.Text, scope.Memory)
		if !res.Found() {
			continue
		}
		refs = append(refs, statex.Reference{Domain: scope.Domain, EntityID: res.EntityID})
		metrics.ObserveResolution(string(scope.Domain), res.Rule)
		logger.Debug().
			Str("agent", string(contractx.AgentTypeSupervisor)).
			Str("rule", res.Rule).
			Str("entity_id", res.EntityID).
			Msg("reference resolved")
	}

	in.Turn = statex.UserTurn(in.Text, refs...)
	return in, nil
}
