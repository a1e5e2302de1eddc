package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	toolx "github.com/tanpawarit/Chative-Travel-Concierge/agent/tool"
	logx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger"
)

// InvokeSupervisor runs the supervisor over its history. A checkout fragment
// produced by a specialist replaces whatever the supervisor said about it.
func InvokeSupervisor(
	ctx context.Context,
	in *GraphState,
	supervisor contractx.Capability,
	metrics *metricsx.Metrics,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if supervisor == nil {
		return nil, fmt.Errorf("%w: supervisor capability is nil", contractx.ErrValidation)
	}

	ctx, pass := toolx.WithPassthrough(ctx)
	answer, err := supervisor.Generate(ctx, in.Session.Supervisor.Turns())
	if err != nil {
		logger := logx.ForSession(in.SessionID)
		logger.Error().Err(err).Str("agent", string(contractx.AgentTypeSupervisor)).Msg("supervisor failed")
		metrics.ObserveTurn(string(contractx.AgentTypeSupervisor), "error")
		in.Answer = contractx.Apology(err)
		in.Failed = true
		return in, nil
	}

	if fragment, ok := pass.Take(); ok {
		in.Answer = fragment
		in.Fragment = true
		metrics.ObserveTurn(string(contractx.AgentTypeSupervisor), "fragment")
		return in, nil
	}

	metrics.ObserveTurn(string(contractx.AgentTypeSupervisor), "ok")
	in.Answer = answer
	return in, nil
}
