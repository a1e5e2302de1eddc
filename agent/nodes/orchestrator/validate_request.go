package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
	Reset bool
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.Session
	Turn    statex.Turn

	Answer   string
	Fragment bool
	Failed   bool
}

// ValidateRequest trims the input and binds the session installed in ctx.
func ValidateRequest(ctx context.Context, in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	sess, err := statex.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess.ID != sessionID {
		return nil, fmt.Errorf("%w: session %q bound, got %q", contractx.ErrValidation, sess.ID, sessionID)
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		Session:   sess,
	}, nil
}
