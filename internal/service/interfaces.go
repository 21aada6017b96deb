package service

import (
	"context"

	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
)

// TurnResult is the outcome of one submitted turn.
type TurnResult struct {
	Session domain.SessionState
	Outcome conversation.Outcome

	// ResponderErr is set when the responder failed. The turn was rolled
	// back and an apology appended; the user may resend.
	ResponderErr error
}

// ChatService drives conversation turns against sessions held by a
// SessionStore. Every operation targets a session by id, never "whichever
// session is active".
type ChatService interface {
	Submit(ctx context.Context, sessionID, text string) (*TurnResult, error)
	Bootstrap(ctx context.Context, ventureName string) (*TurnResult, error)
	SwitchMode(ctx context.Context, sessionID string, mode domain.Mode) (domain.SessionState, error)
	TalkMore(ctx context.Context, sessionID string) (domain.SessionState, error)
	EditProfile(ctx context.Context, sessionID string, field domain.ProfileField, value string) (domain.SessionState, error)
	Remember(ctx context.Context, sessionID, fact string) (bool, error)
	InFlight(sessionID string) bool
}
