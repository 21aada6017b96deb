package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/google/uuid"
)

var testClock atomic.Int64

// nextTestTime returns strictly increasing timestamps so fixtures created in
// sequence have a stable recency order.
func nextTestTime() time.Time {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(testClock.Add(1)) * time.Second)
}

// SessionOption customizes a fixture session.
type SessionOption func(*domain.SessionState)

func WithFavorite() SessionOption {
	return func(s *domain.SessionState) { s.Favorite = true }
}

func WithArchived() SessionOption {
	return func(s *domain.SessionState) { s.Archived = true }
}

func WithMode(m domain.Mode) SessionOption {
	return func(s *domain.SessionState) { s.Mode = m }
}

func WithClarity(score int) SessionOption {
	return func(s *domain.SessionState) { s.ClarityScore = score }
}

func WithFacts(facts ...string) SessionOption {
	return func(s *domain.SessionState) { s.Facts = append([]string(nil), facts...) }
}

func WithProfile(p *domain.VentureProfile) SessionOption {
	return func(s *domain.SessionState) { s.Profile = p }
}

func WithUpdatedAt(t time.Time) SessionOption {
	return func(s *domain.SessionState) { s.UpdatedAt = t }
}

func WithOrigin(o domain.Origin) SessionOption {
	return func(s *domain.SessionState) { s.Origin = o }
}

// WithExchange appends a user message followed by an assistant reply.
func WithExchange(user, assistant string) SessionOption {
	return func(s *domain.SessionState) {
		s.Messages = append(s.Messages,
			NewTestMessage(domain.SenderUser, user),
			NewTestMessage(domain.SenderAssistant, assistant),
		)
		s.TurnCount++
	}
}

// NewTestMessage builds a normal message with a fresh id.
func NewTestMessage(sender domain.Sender, text string) domain.Message {
	return domain.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    sender,
		Kind:      domain.MessageNormal,
		CreatedAt: nextTestTime(),
	}
}

// NewTestSession builds a refinement session named name.
func NewTestSession(name string, opts ...SessionOption) *domain.SessionState {
	now := nextTestTime()
	s := &domain.SessionState{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []domain.Message{
			NewTestMessage(domain.SenderAssistant, fmt.Sprintf("Hi! Tell me about %s.", name)),
		},
		Mode:         domain.ModeRefinement,
		ClarityScore: 5,
		Origin:       domain.OriginNormal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestProfile builds a fully populated profile.
func NewTestProfile(title string) *domain.VentureProfile {
	return &domain.VentureProfile{
		Title:            title,
		Summary:          title + " helps busy people",
		TargetAudience:   domain.StrPtr("Busy urban professionals"),
		Problem:          domain.StrPtr("Not enough time"),
		Solution:         domain.StrPtr("An app that saves time"),
		Uniqueness:       domain.StrPtr("Learns your routine"),
		RevenueModel:     domain.StrPtr("Monthly subscription"),
		RoadmapStep:      domain.StrPtr("Closed beta"),
		SuggestedName:    domain.StrPtr(title),
		SuggestedTagline: domain.StrPtr("Time, returned"),
	}
}
