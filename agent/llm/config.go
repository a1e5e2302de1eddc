package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	MaxStep            int           `envconfig:"MAX_STEP" split_words:"true" default:"12"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	SupervisorModel       string  `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	LodgingModel          string  `envconfig:"LODGING_MODEL" split_words:"true"`
	DealsModel            string  `envconfig:"DEALS_MODEL" split_words:"true"`
	SupervisorTemperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	LodgingTemperature    float32 `envconfig:"LODGING_TEMPERATURE" split_words:"true" default:"-1"`
	DealsTemperature      float32 `envconfig:"DEALS_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model and temperature overrides for one agent.
// A negative override temperature means "use the default".
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(m string, t float32) {
		if v := strings.TrimSpace(m); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agentType {
	case contractx.AgentTypeSupervisor:
		override(c.SupervisorModel, c.SupervisorTemperature)
	case contractx.AgentTypeLodging:
		override(c.LodgingModel, c.LodgingTemperature)
	case contractx.AgentTypeDeals:
		override(c.DealsModel, c.DealsTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
