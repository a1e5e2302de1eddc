package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

const defaultMaxStep = 12

type CapabilityConfig struct {
	AgentType    contractx.AgentType
	SystemPrompt string
	Tools        []einotool.BaseTool
	MaxStep      int
	// ReturnDirectly names tools whose result ends the turn as the reply.
	ReturnDirectly []string
	Metrics        *metricsx.Metrics
}

// ReactCapability runs a ReAct loop (model, tools, model, ...) over the
// rendered turns and returns the final text.
type ReactCapability struct {
	agentType contractx.AgentType
	agent     *react.Agent
	metrics   *metricsx.Metrics
	now       func() time.Time
}

var _ contractx.Capability = (*ReactCapability)(nil)

func NewReactCapability(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	cfg CapabilityConfig,
) (*ReactCapability, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required for agent=%s", contractx.ErrValidation, cfg.AgentType)
	}
	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, cfg.AgentType)
	}
	maxStep := cfg.MaxStep
	if maxStep <= 0 {
		maxStep = defaultMaxStep
	}

	var returnDirectly map[string]struct{}
	if len(cfg.ReturnDirectly) > 0 {
		returnDirectly = make(map[string]struct{}, len(cfg.ReturnDirectly))
		for _, name := range cfg.ReturnDirectly {
			returnDirectly[name] = struct{}{}
		}
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: cfg.Tools},
		MessageModifier: func(_ context.Context, input []*schema.Message) []*schema.Message {
			out := make([]*schema.Message, 0, len(input)+1)
			out = append(out, schema.SystemMessage(systemPrompt))
			return append(out, input...)
		},
		MaxStep:            maxStep,
		ToolReturnDirectly: returnDirectly,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build react agent=%s: %v", contractx.ErrModelInvoke, cfg.AgentType, err)
	}

	return &ReactCapability{
		agentType: cfg.AgentType,
		agent:     agent,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}, nil
}

func (c *ReactCapability) Generate(ctx context.Context, turns []statex.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: no turns to send", contractx.ErrValidation)
	}

	start := c.now()
	msg, err := c.agent.Generate(ctx, RenderTurns(turns))
	c.metrics.ObserveCapability(string(c.agentType), err, c.now().Sub(start))
	if err != nil {
		return "", fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, c.agentType, err)
	}

	text := ExtractText(msg)
	log.Debug().
		Str("agent", string(c.agentType)).
		Int("turns", len(turns)).
		Int("reply_len", len(text)).
		Msg("capability reply")
	return text, nil
}

// RenderTurns converts history turns into chat messages. User turns carry
// their reference tags.
func RenderTurns(turns []statex.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case statex.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(t.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(t.WireContent()))
		}
	}
	return msgs
}

// ExtractText prefers the trimmed content, then the text parts of a
// multi-part message joined by spaces, then the raw content.
func ExtractText(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	if text := strings.TrimSpace(msg.Content); text != "" {
		return text
	}

	parts := make([]string, 0, len(msg.MultiContent))
	for _, part := range msg.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText && part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	if joined := strings.TrimSpace(strings.Join(parts, " ")); joined != "" {
		return joined
	}
	return msg.Content
}
