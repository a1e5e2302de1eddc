// Package server exposes the concierge over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	ledgerx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/ledger"
)

const (
	SessionCookie          = "session_id"
	DefaultShutdownTimeout = 10 * time.Second
)

// ChatService handles one message per call and can restart a conversation.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, text string) (contractx.Reply, error)
	ResetSession(sessionID string) bool
}

// OrderLister lists the deal orders placed in a session, newest first.
type OrderLister interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]ledgerx.OrderRecord, error)
}

// Config holds boundary settings. An empty AllowOrigins allows every origin.
type Config struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS"`
}

type Server struct {
	chat        ChatService
	transcripts statex.TranscriptStore
	gatherer    prometheus.Gatherer
	orders      OrderLister
	engine      *gin.Engine
	newID       func() string
	now         func() time.Time
}

type Option func(*Server)

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithOrders serves the order ledger on /orders/:session_id.
func WithOrders(orders OrderLister) Option {
	return func(s *Server) {
		s.orders = orders
	}
}

func New(chat ChatService, transcripts statex.TranscriptStore, cfg Config, opts ...Option) (*Server, error) {
	if chat == nil {
		return nil, errors.New("chat service is required")
	}
	if transcripts == nil {
		transcripts = statex.NewMemoryTranscriptStore(statex.DefaultTranscriptLimit)
	}

	s := &Server{
		chat:        chat,
		transcripts: transcripts,
		gatherer:    prometheus.DefaultGatherer,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	s.engine = engine
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/start_session", s.handleStartSession)
	s.engine.GET("/transcript/:session_id", s.handleTranscript)
	s.engine.GET("/orders/:session_id", s.handleOrders)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
