package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/lodging.txt
	lodgingRaw string

	//go:embed template/deals.txt
	dealsRaw string
)

type PromptSet struct {
	Supervisor string
	Lodging    string
	Deals      string
}

func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor: strings.TrimSpace(supervisorRaw),
		Lodging:    strings.TrimSpace(lodgingRaw),
		Deals:      strings.TrimSpace(dealsRaw),
	}
}

func (p PromptSet) For(agentType contractx.AgentType) (string, error) {
	var out string
	switch agentType {
	case contractx.AgentTypeSupervisor:
		out = p.Supervisor
	case contractx.AgentTypeLodging:
		out = p.Lodging
	case contractx.AgentTypeDeals:
		out = p.Deals
	}
	if out == "" {
		return "", fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agentType)
	}
	return out, nil
}
