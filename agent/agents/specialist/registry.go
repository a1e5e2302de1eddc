package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	llmx "github.com/tanpawarit/Chative-Travel-Concierge/agent/llm"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	promptx "github.com/tanpawarit/Chative-Travel-Concierge/agent/prompt"
	resolverx "github.com/tanpawarit/Chative-Travel-Concierge/agent/resolver"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	toolx "github.com/tanpawarit/Chative-Travel-Concierge/agent/tool"
)

type registryImpl struct {
	supervisor contractx.Capability
	lodging    contractx.Specialist
	deals      contractx.Specialist
}

func (r *registryImpl) Supervisor() contractx.Capability {
	return r.supervisor
}

func (r *registryImpl) Lodging() contractx.Specialist {
	return r.lodging
}

func (r *registryImpl) Deals() contractx.Specialist {
	return r.deals
}

// Models holds one chat model per agent.
type Models struct {
	Supervisor einomodel.ToolCallingChatModel
	Lodging    einomodel.ToolCallingChatModel
	Deals      einomodel.ToolCallingChatModel
}

func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	catalog toolx.Catalog,
	metrics *metricsx.Metrics,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var models Models
	for _, m := range []struct {
		agent contractx.AgentType
		dst   *einomodel.ToolCallingChatModel
	}{
		{contractx.AgentTypeSupervisor, &models.Supervisor},
		{contractx.AgentTypeLodging, &models.Lodging},
		{contractx.AgentTypeDeals, &models.Deals},
	} {
		modelCfg := cfg.OpenRouterFor(m.agent)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, m.agent, err)
		}
		*m.dst = chatModel
	}

	return Build(ctx, models, promptx.LoadPromptSet(), catalog, cfg.MaxStep, metrics)
}

// Build wires the specialists first, then the supervisor whose tools
// delegate to them.
func Build(
	ctx context.Context,
	models Models,
	prompts promptx.PromptSet,
	catalog toolx.Catalog,
	maxStep int,
	metrics *metricsx.Metrics,
) (contractx.Registry, error) {
	lodging, err := buildSpecialist(ctx, statex.DomainLodging, contractx.AgentTypeLodging, models.Lodging, prompts, catalog, maxStep, metrics)
	if err != nil {
		return nil, err
	}
	deals, err := buildSpecialist(ctx, statex.DomainDeals, contractx.AgentTypeDeals, models.Deals, prompts, catalog, maxStep, metrics)
	if err != nil {
		return nil, err
	}

	supervisorPrompt, err := prompts.For(contractx.AgentTypeSupervisor)
	if err != nil {
		return nil, err
	}
	supervisor, err := llmx.NewReactCapability(ctx, models.Supervisor, llmx.CapabilityConfig{
		AgentType:    contractx.AgentTypeSupervisor,
		SystemPrompt: supervisorPrompt,
		Tools:        toolx.DelegateTools(lodging, deals),
		MaxStep:      maxStep,
		Metrics:      metrics,
	})
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		supervisor: supervisor,
		lodging:    lodging,
		deals:      deals,
	}, nil
}

func buildSpecialist(
	ctx context.Context,
	domain statex.Domain,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	prompts promptx.PromptSet,
	catalog toolx.Catalog,
	maxStep int,
	metrics *metricsx.Metrics,
) (*Agent, error) {
	systemPrompt, err := prompts.For(agentType)
	if err != nil {
		return nil, err
	}
	capability, err := llmx.NewReactCapability(ctx, chatModel, llmx.CapabilityConfig{
		AgentType:      agentType,
		SystemPrompt:   systemPrompt,
		Tools:          catalog.BuildForAgent(agentType),
		MaxStep:        maxStep,
		ReturnDirectly: toolx.ReturnDirectly(agentType),
		Metrics:        metrics,
	})
	if err != nil {
		return nil, err
	}

	var resolver *resolverx.Resolver
	if domain == statex.DomainLodging {
		resolver = resolverx.NewLodging()
	} else {
		resolver = resolverx.NewDeals()
	}
	return NewAgent(domain, capability, resolver, metrics)
}
