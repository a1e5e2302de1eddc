package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
)

// Func is the typed body of a tool. A string result is handed to the model
// verbatim; anything else is JSON encoded.
type Func[T any] func(ctx context.Context, in T) (any, error)

type invokable[T any] struct {
	info *schema.ToolInfo
	fn   Func[T]
}

var _ einotool.InvokableTool = (*invokable[struct{}])(nil)

func NewInvokable[T any](name, desc string, params map[string]*schema.ParameterInfo, fn Func[T]) einotool.InvokableTool {
	info := &schema.ToolInfo{Name: name, Desc: desc}
	if len(params) > 0 {
		info.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}
	return &invokable[T]{info: info, fn: fn}
}

func (t *invokable[T]) Info(context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

// InvokableRun never returns an error to the agent loop: bad arguments and
// failures come back as a status=false result the model can read.
func (t *invokable[T]) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	var in T
	if raw := strings.TrimSpace(argumentsInJSON); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			err = fmt.Errorf("%w: tool=%s: %v", contractx.ErrToolArguments, t.info.Name, err)
			log.Warn().Err(err).Str("tool", t.info.Name).Msg("tool arguments rejected")
			return encode(Failure(err.Error()))
		}
	}

	out, err := t.fn(ctx, in)
	if err != nil {
		log.Warn().Err(err).Str("tool", t.info.Name).Msg("tool failed")
		return encode(Failure(err.Error()))
	}
	log.Debug().Str("tool", t.info.Name).Msg("tool done")

	if s, ok := out.(string); ok {
		return s, nil
	}
	return encode(out)
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(b), nil
}

// Status is the common envelope of tool results.
type Status struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func Failure(msg string) Status {
	return Status{Status: false, Message: msg}
}
