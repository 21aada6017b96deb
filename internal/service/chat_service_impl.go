package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/ideaforge/internal/conversation"
	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
)

type chatService struct {
	store     *SessionStore
	responder intelligence.Responder
	userName  string
	observer  UseCaseObserver

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewChatService returns a ChatService over store. The responder is called
// without holding any store lock; its reply is applied to the session it
// was requested for, whatever session is active by then.
func NewChatService(store *SessionStore, responder intelligence.Responder, userName string, observers ...UseCaseObserver) ChatService {
	return &chatService{
		store:     store,
		responder: responder,
		userName:  userName,
		observer:  useCaseObserverOrNoop(observers),
		inFlight:  make(map[string]bool),
	}
}

func (s *chatService) Submit(ctx context.Context, sessionID, text string) (result *TurnResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": sessionID}
	defer func() {
		if result != nil {
			fields["command"] = string(result.Outcome.Command)
			fields["summary_assembled"] = result.Outcome.SummaryAssembled
			fields["responder_failed"] = result.ResponderErr != nil
		}
		observe(ctx, s.observer, "submit-turn", startedAt, err, fields)
	}()

	if strings.TrimSpace(text) == "" {
		return nil, conversation.ErrEmptyInput
	}
	if err := s.acquire(sessionID); err != nil {
		return nil, err
	}
	defer s.release(sessionID)

	var (
		pendingID   string
		priorOrigin domain.Origin
	)
	pending, err := s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		next, err := conversation.ApplyUserTurn(cur, text)
		if err != nil {
			return cur, err
		}
		pendingID = next.Messages[len(next.Messages)-1].ID
		priorOrigin = cur.Origin
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	reply, respErr := s.responder.Respond(ctx, conversation.BuildRequest(pending, s.userName))
	if respErr != nil {
		final, err := s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
			return conversation.ApplyResponderFailure(cur, pendingID, priorOrigin), nil
		})
		if err != nil {
			return nil, fmt.Errorf("rolling back turn: %w", err)
		}
		return &TurnResult{Session: final, ResponderErr: respErr}, nil
	}

	var outcome conversation.Outcome
	final, err := s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		next, out := conversation.ApplyResponderReply(cur, reply, conversation.ReplyOptions{UserName: s.userName})
		outcome = out
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("applying reply: %w", err)
	}
	return &TurnResult{Session: final, Outcome: outcome}, nil
}

func (s *chatService) Bootstrap(ctx context.Context, ventureName string) (*TurnResult, error) {
	ventureName = strings.TrimSpace(ventureName)
	if ventureName == "" {
		return nil, conversation.ErrEmptyInput
	}
	sess := s.store.CreateBootstrapped(ctx, ventureName)
	return s.Submit(ctx, sess.ID, intelligence.BootstrapDirective(ventureName))
}

func (s *chatService) SwitchMode(ctx context.Context, sessionID string, mode domain.Mode) (sess domain.SessionState, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "switch-mode", startedAt, err, map[string]any{"session_id": sessionID, "mode": string(mode)})
	}()
	return s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		return conversation.ApplyModeSwitch(cur, mode)
	})
}

func (s *chatService) TalkMore(ctx context.Context, sessionID string) (domain.SessionState, error) {
	if s.InFlight(sessionID) {
		return domain.SessionState{}, ErrTurnInFlight
	}
	return s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		return conversation.ApplyTalkMore(cur)
	})
}

func (s *chatService) EditProfile(ctx context.Context, sessionID string, field domain.ProfileField, value string) (sess domain.SessionState, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		observe(ctx, s.observer, "edit-profile", startedAt, err, map[string]any{"session_id": sessionID, "field": string(field)})
	}()
	return s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		return conversation.ApplyProfileEdit(cur, field, value, s.userName)
	})
}

func (s *chatService) Remember(ctx context.Context, sessionID, fact string) (bool, error) {
	if strings.TrimSpace(fact) == "" {
		return false, conversation.ErrEmptyInput
	}
	var added bool
	_, err := s.store.Update(ctx, sessionID, func(cur domain.SessionState) (domain.SessionState, error) {
		next, ok := conversation.RememberFact(cur, fact)
		added = ok
		return next, nil
	})
	return added, err
}

func (s *chatService) InFlight(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[sessionID]
}

func (s *chatService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return fmt.Errorf("session %s: %w", sessionID, ErrTurnInFlight)
	}
	s.inFlight[sessionID] = true
	return nil
}

func (s *chatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
