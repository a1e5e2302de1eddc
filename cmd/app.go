package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Chative-Travel-Concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Travel-Concierge/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	llmx "github.com/tanpawarit/Chative-Travel-Concierge/agent/llm"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	toolx "github.com/tanpawarit/Chative-Travel-Concierge/agent/tool"
	configx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/config"
	ledgerx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/ledger"
	marketx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/marketplace"
	openrouterx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/openrouter"
	paymentx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/payment"
)

type AppConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":5000"`
	HistoryLimit    int           `envconfig:"HISTORY_LIMIT" default:"5"`
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	MaxSessions     int           `envconfig:"MAX_SESSIONS" default:"1024"`
	TranscriptLimit int           `envconfig:"TRANSCRIPT_LIMIT" default:"5"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	DatabaseDSN     string        `envconfig:"DATABASE_DSN"`
	ProbeModels     bool          `envconfig:"PROBE_MODELS" default:"true"`
}

type app struct {
	cfg          AppConfig
	orchestrator *orchestrator.Orchestrator
	transcripts  statex.TranscriptStore
	orders       *ledgerx.Ledger
	gatherer     prometheus.Gatherer
	closers      []func() error
}

func buildApp(ctx context.Context) (*app, error) {
	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, fmt.Errorf("load openrouter config: %w", err)
	}
	marketCfg, err := configx.New[marketx.Config]("MARKETPLACE")
	if err != nil {
		return nil, fmt.Errorf("load marketplace config: %w", err)
	}
	payCfg, err := configx.New[paymentx.Config]("RAZORPAY")
	if err != nil {
		return nil, fmt.Errorf("load razorpay config: %w", err)
	}

	a := &app{cfg: *appCfg, gatherer: prometheus.DefaultGatherer}

	market, err := marketx.NewClient(*marketCfg)
	if err != nil {
		return nil, fmt.Errorf("marketplace client: %w", err)
	}

	var recorder ledgerx.Recorder = ledgerx.Noop{}
	if dsn := strings.TrimSpace(appCfg.DatabaseDSN); dsn != "" {
		ledger, err := ledgerx.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open order ledger: %w", err)
		}
		if err := ledger.Migrate(ctx); err != nil {
			_ = ledger.Close()
			return nil, fmt.Errorf("migrate order ledger: %w", err)
		}
		a.closers = append(a.closers, ledger.Close)
		recorder = ledger
		a.orders = ledger
	}

	if appCfg.ProbeModels {
		probeModels(ctx, *llmCfg)
	}

	metrics := metricsx.Default()
	catalog := toolx.Catalog{
		Lodging: toolx.NewLodgingTools(market),
		Deals:   toolx.NewDealsTools(market, paymentx.NewCheckout(*payCfg), recorder),
	}
	registry, err := specialist.NewRegistry(ctx, *llmCfg, catalog, metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build agents: %w", err)
	}

	sessions := statex.NewRegistry(statex.RegistryConfig{
		MaxSessions:  appCfg.MaxSessions,
		TTL:          appCfg.SessionTTL,
		HistoryLimit: appCfg.HistoryLimit,
	})
	a.orchestrator, err = orchestrator.New(registry, sessions, metrics)
	if err != nil {
		a.Close()
		return nil, err
	}

	if url := strings.TrimSpace(appCfg.RedisURL); url != "" {
		store, err := statex.NewRedisTranscriptStoreFromURL(url, statex.WithLimit(appCfg.TranscriptLimit))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("transcript store: %w", err)
		}
		a.transcripts = store
	} else {
		a.transcripts = statex.NewMemoryTranscriptStore(appCfg.TranscriptLimit)
	}

	log.Info().
		Int("history_limit", appCfg.HistoryLimit).
		Int("max_sessions", appCfg.MaxSessions).
		Bool("redis_transcripts", appCfg.RedisURL != "").
		Bool("order_ledger", appCfg.DatabaseDSN != "").
		Msg("concierge ready")
	return a, nil
}

// probeModels warns about configured models the provider does not list.
func probeModels(ctx context.Context, cfg llmx.Config) {
	seen := map[string]struct{}{}
	for _, agent := range []contractx.AgentType{
		contractx.AgentTypeSupervisor,
		contractx.AgentTypeLodging,
		contractx.AgentTypeDeals,
	} {
		modelCfg := cfg.OpenRouterFor(agent)
		if _, ok := seen[modelCfg.Model]; ok {
			continue
		}
		seen[modelCfg.Model] = struct{}{}

		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := openrouterx.Probe(probeCtx, modelCfg)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, openrouterx.ErrModelNotListed):
			log.Warn().Str("agent", string(agent)).Str("model", modelCfg.Model).Msg("model not listed by provider")
		default:
			log.Warn().Err(err).Str("agent", string(agent)).Msg("model probe failed")
		}
	}
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close resource")
		}
	}
	a.closers = nil
}
