package contract

type AgentType string

const (
	AgentTypeSupervisor AgentType = "supervisor"
	AgentTypeLodging    AgentType = "lodging"
	AgentTypeDeals      AgentType = "deals"
)

// Reply is what a caller gets back for one inbound message.
type Reply struct {
	Text  string `json:"text"`
	Reset bool   `json:"reset,omitempty"`
}
