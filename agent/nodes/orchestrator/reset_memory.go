package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	logx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/logger"
)

func ResetMemory(in *GraphState, metrics *metricsx.Metrics) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Session.Reset()
	metrics.ObserveReset("keyword")
	logger := logx.ForSession(in.SessionID)
	logger.Info().Msg("conversation reset")

	return GraphOutput{Reply: ResetReply, Reset: true}, nil
}
