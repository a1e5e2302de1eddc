package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

func AppendUserTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Session.Supervisor.Append(in.Turn)
	return in, nil
}

// AppendReply records the raw answer, apology or fragment included.
func AppendReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Session.Supervisor.Append(statex.AssistantTurn(in.Answer))
	return in, nil
}
