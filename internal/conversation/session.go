package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/google/uuid"
)

// Clarity anchors.
const (
	GreetingClarity = 5
	ReopenedClarity = 80
	FinalClarity    = 100
)

// now is swapped in tests that need stable timestamps.
var now = func() time.Time { return time.Now().UTC() }

func newMessage(text string, sender domain.Sender, kind domain.MessageKind) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Kind:      kind,
		CreatedAt: now(),
	}
}

// Greeting is the first assistant message of a new session.
func Greeting(userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		return "Hi there! What venture idea is on your mind today? Tell me as much or as little as you like."
	}
	return fmt.Sprintf("Hi %s! What venture idea is on your mind today? Tell me as much or as little as you like.", name)
}

// PlaceholderName is the display name of a session with no content yet.
func PlaceholderName(t time.Time) string {
	return "New idea " + t.Format("Jan 2 15:04")
}

func baseSession() domain.SessionState {
	t := now()
	return domain.SessionState{
		ID:         uuid.NewString(),
		Name:       PlaceholderName(t),
		NameIsAuto: true,
		CreatedAt:  t,
		UpdatedAt:  t,
		Mode:       domain.ModeRefinement,
		Origin:     domain.OriginNormal,
	}
}

// NewSession returns an empty refinement session seeded with a greeting.
func NewSession(userName string) domain.SessionState {
	s := baseSession()
	s.Messages = []domain.Message{newMessage(Greeting(userName), domain.SenderAssistant, domain.MessageNormal)}
	s.ClarityScore = GreetingClarity
	return s
}

// NewBootstrapSession returns an empty session named after ventureName. The
// bootstrap directive is submitted as its first turn.
func NewBootstrapSession(ventureName string) domain.SessionState {
	s := baseSession()
	if name := strings.TrimSpace(ventureName); name != "" {
		s.Name = name
	}
	s.Origin = domain.OriginBootstrapped
	return s
}

// NewContinuedSession returns a session that resumes refinement of an
// existing profile produced elsewhere.
func NewContinuedSession(profile *domain.VentureProfile, founderBackground *string) domain.SessionState {
	s := baseSession()
	s.Origin = domain.OriginContinued
	s.Profile = profile.Clone()
	if founderBackground != nil {
		bg := *founderBackground
		s.FounderBackground = &bg
	}
	if s.Profile != nil && strings.TrimSpace(s.Profile.Title) != "" {
		s.Name = s.Profile.Title
	}
	s.Messages = []domain.Message{newMessage(reopenMessage(s.Profile), domain.SenderAssistant, domain.MessageNormal)}
	s.ClarityScore = ReopenedClarity
	return s
}

func reopenMessage(p *domain.VentureProfile) string {
	if p == nil || strings.TrimSpace(p.Title) == "" {
		return "Let's keep refining your venture. What would you like to sharpen?"
	}
	return fmt.Sprintf("Let's keep refining %q. What would you like to sharpen: the audience, the problem, the revenue model, or something else?", p.Title)
}
