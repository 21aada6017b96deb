package domain

import (
	"strings"
	"time"
)

// Message is one entry of a conversation transcript. Messages are never
// mutated after creation; transcript order is dialogue order.
type Message struct {
	ID        string
	Text      string
	Sender    Sender
	Kind      MessageKind
	CreatedAt time.Time
}

// SessionState is the unit of persistence for one intake conversation.
type SessionState struct {
	ID         string
	Name       string
	NameIsAuto bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Messages  []Message
	TurnCount int
	Facts     []string
	Mode      Mode

	SummaryFinalized bool
	ShowSummary      bool

	Profile           *VentureProfile
	FounderBackground *string

	// ClarityScore is kept while the session is in general mode so that
	// switching back to refinement resumes from it. Read it via Clarity.
	ClarityScore int

	Favorite bool
	Archived bool
	Origin   Origin
}

// Clarity returns the clarity score and whether it is defined, which is
// only the case in refinement mode.
func (s *SessionState) Clarity() (int, bool) {
	if s.Mode != ModeRefinement {
		return 0, false
	}
	return s.ClarityScore, true
}

// VisibleMessages returns the transcript without directive messages.
func (s *SessionState) VisibleMessages() []Message {
	visible := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Kind == MessageDirective {
			continue
		}
		visible = append(visible, m)
	}
	return visible
}

// FirstUserMessage returns the first visible, non-blank user message.
func (s *SessionState) FirstUserMessage() (Message, bool) {
	for _, m := range s.Messages {
		if m.Sender == SenderUser && m.Kind == MessageNormal && strings.TrimSpace(m.Text) != "" {
			return m, true
		}
	}
	return Message{}, false
}

// HasContent reports whether the user has said anything or a profile exists.
func (s *SessionState) HasContent() bool {
	if s.Profile != nil {
		return true
	}
	for _, m := range s.Messages {
		if m.Sender == SenderUser {
			return true
		}
	}
	return false
}

// HasFact reports whether fact is already remembered.
func (s *SessionState) HasFact(fact string) bool {
	for _, f := range s.Facts {
		if f == fact {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so transitions never share slices or pointers.
func (s SessionState) Clone() SessionState {
	c := s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Facts = append([]string(nil), s.Facts...)
	c.Profile = s.Profile.Clone()
	if s.FounderBackground != nil {
		bg := *s.FounderBackground
		c.FounderBackground = &bg
	}
	return c
}
