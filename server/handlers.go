package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	ledgerx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/ledger"
	paymentx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/payment"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type startSessionRequest struct {
	SessionID string `json:"session_id"`
}

// handleIndex issues a session cookie on first visit and keeps it after.
func (s *Server) handleIndex(c *gin.Context) {
	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || strings.TrimSpace(sessionID) == "" {
		sessionID = s.newID()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sessionID, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Str("path", c.FullPath()).Msg("request body not bound")
	}
	message := strings.TrimSpace(req.Message)
	sessionID := strings.TrimSpace(req.SessionID)
	if message == "" || sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message or session ID"})
		return
	}

	ctx := c.Request.Context()
	reply, err := s.chat.HandleMessage(ctx, sessionID, message)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("handle message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if reply.Reset {
		if err := s.transcripts.Clear(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("clear transcript failed")
		}
	} else {
		ex := statex.Exchange{User: message, Bot: reply.Text, At: s.now().UTC()}
		if err := s.transcripts.Append(ctx, sessionID, ex); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("append transcript failed")
		}
	}

	if paymentx.IsFragment(reply.Text) {
		c.JSON(http.StatusOK, gin.H{"type": "html", "response": reply.Text})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply.Text})
}

// handleStartSession restarts the conversation for a browser session. A
// missing id is tolerated.
func (s *Server) handleStartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Str("path", c.FullPath()).Msg("request body not bound")
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			sessionID = strings.TrimSpace(cookie)
		}
	}

	if sessionID != "" {
		s.chat.ResetSession(sessionID)
		if err := s.transcripts.Clear(c.Request.Context(), sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("clear transcript failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTranscript(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("session_id"))
	exchanges, err := s.transcripts.List(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, statex.ErrInvalidSession) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if exchanges == nil {
		exchanges = []statex.Exchange{}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "exchanges": exchanges})
}

const defaultOrderLimit = 10

// handleOrders lists recent deal orders. Without a ledger the list is empty.
func (s *Server) handleOrders(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID"})
		return
	}
	limit := defaultOrderLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	orders := []ledgerx.OrderRecord{}
	if s.orders != nil {
		recent, err := s.orders.Recent(c.Request.Context(), sessionID, limit)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("list orders failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if recent != nil {
			orders = recent
		}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "orders": orders})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
