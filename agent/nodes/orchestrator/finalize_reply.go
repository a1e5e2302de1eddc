package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	paymentx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/payment"
)

const EmptyReply = "Sorry, I could not come up with an answer. Could you rephrase that?"

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Fragment || in.Failed || paymentx.IsFragment(in.Answer) {
		return GraphOutput{Reply: in.Answer}, nil
	}

	reply := statex.StripTags(in.Answer)
	if reply == "" {
		reply = EmptyReply
	}
	return GraphOutput{Reply: reply}, nil
}
