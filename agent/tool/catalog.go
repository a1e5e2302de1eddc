package tool

import (
	einotool "github.com/cloudwego/eino/components/tool"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
)

// Catalog groups the tool sets of every agent.
type Catalog struct {
	Lodging *LodgingTools
	Deals   *DealsTools
}

// BuildForAgent returns the domain tools of a specialist. The supervisor's
// tools depend on the specialists and are built with DelegateTools.
func (c Catalog) BuildForAgent(agentType contractx.AgentType) []einotool.BaseTool {
	switch agentType {
	case contractx.AgentTypeLodging:
		if c.Lodging != nil {
			return c.Lodging.Tools()
		}
	case contractx.AgentTypeDeals:
		if c.Deals != nil {
			return c.Deals.Tools()
		}
	}
	return nil
}

// ReturnDirectly lists tools whose output ends the agent's turn unchanged.
func ReturnDirectly(agentType contractx.AgentType) []string {
	if agentType == contractx.AgentTypeDeals {
		return []string{ToolBookDeal}
	}
	return nil
}
