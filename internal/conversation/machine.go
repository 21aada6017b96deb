package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
)

var (
	// ErrEmptyInput is returned for blank submissions. No state changes.
	ErrEmptyInput = errors.New("message is empty")

	// ErrSummaryLocked is returned when a turn is submitted to a session
	// whose summary is finalized. The user must choose talk more first.
	ErrSummaryLocked = errors.New("summary is finalized; talk more to reopen the conversation")

	// ErrNotFinalized is returned when talk more is chosen for a session
	// that has no finalized summary to reopen.
	ErrNotFinalized = errors.New("no finalized summary to reopen")
)

// assembleProfile is swapped in tests to reach the malformed-summary path.
var assembleProfile = intelligence.AssembleProfile

// Fixed assistant texts.
const (
	ResponderFailureMessage = "Sorry, I couldn't come up with a reply just now. Please send your message again."
	MalformedSummaryMessage = "Sorry, I got tangled up writing your summary. Could you restate the key points of your idea so I can try again?"
	SummaryReadyMessage     = "Here is where your venture profile stands. Edit any field, or choose talk more to keep refining."
	CelebrationMessage      = "Your venture profile is ready! Review it below and edit anything that doesn't sound like you."
	MemoryAckMessage        = "Got it, I'll remember that."
)

// Outcome describes what a responder reply did to the session.
type Outcome struct {
	Command          Command
	FactAdded        bool
	SummaryAssembled bool
	SummaryMalformed bool
	Celebrate        bool
}

// ReplyOptions carries the context a reply transition needs beyond state.
type ReplyOptions struct {
	UserName string
}

// ApplyUserTurn appends the user's text and increments the turn counter.
// A bootstrap directive arriving as the first user content is stored as a
// hidden directive message and marks the session bootstrapped.
func ApplyUserTurn(s domain.SessionState, text string) (domain.SessionState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s, ErrEmptyInput
	}
	if s.SummaryFinalized {
		return s, ErrSummaryLocked
	}

	next := s.Clone()
	kind := domain.MessageNormal
	if _, ok := intelligence.ParseBootstrapDirective(text); ok && !hasUserMessage(s) {
		kind = domain.MessageDirective
		next.Origin = domain.OriginBootstrapped
	}
	next.Messages = append(next.Messages, newMessage(text, domain.SenderUser, kind))
	next.TurnCount++
	next.UpdatedAt = now()
	return next, nil
}

// BuildRequest returns the responder context for a session whose last
// message is the pending user turn.
func BuildRequest(s domain.SessionState, userName string) intelligence.ResponderRequest {
	req := intelligence.ResponderRequest{
		TurnCount: s.TurnCount,
		UserName:  userName,
		Facts:     append([]string(nil), s.Facts...),
		Mode:      s.Mode,
	}
	history := s.Messages
	if n := len(history); n > 0 && history[n-1].Sender == domain.SenderUser {
		req.LatestUserText = history[n-1].Text
		history = history[:n-1]
	}
	req.History = append([]domain.Message(nil), history...)
	return req
}

// ApplyResponderReply interprets a reply. Summary delimiters alone decide
// whether extraction runs; the command guess only picks the closing line.
func ApplyResponderReply(s domain.SessionState, reply *intelligence.ResponderReply, opts ReplyOptions) (domain.SessionState, Outcome) {
	next := s.Clone()
	next.UpdatedAt = now()

	var out Outcome
	if reply.CommandGuess != nil {
		out.Command = ParseCommand(*reply.CommandGuess)
	} else {
		out.Command = CommandNormal
	}

	if target, ok := out.Command.switchTarget(); ok {
		next.Mode = target
	} else if reply.CommandGuess == nil && reply.SuggestedMode != nil && reply.SuggestedMode.Valid() {
		next.Mode = *reply.SuggestedMode
	}

	if out.Command == CommandAcknowledgeMemory {
		fact := domain.StrValue(reply.AcknowledgedFact)
		if strings.TrimSpace(fact) == "" {
			fact = factFromText(lastUserText(s))
		}
		next, out.FactAdded = RememberFact(next, fact)
		next.Messages = append(next.Messages, newMessage(
			domain.CoalesceStr(reply.ReplyText, MemoryAckMessage), domain.SenderAssistant, domain.MessageNormal))
		return next, out
	}

	if next.Mode == domain.ModeRefinement && reply.ClarityEstimate != nil {
		next.ClarityScore = clampClarity(*reply.ClarityEstimate)
	}

	block, found := "", false
	if next.Mode == domain.ModeRefinement {
		block, found = intelligence.ExtractSummaryBlock(reply.ReplyText)
	}
	if !found {
		next.Messages = append(next.Messages, newMessage(reply.ReplyText, domain.SenderAssistant, domain.MessageNormal))
		return next, out
	}

	asm, err := assembleProfile(block, intelligence.AssembleOptions{
		UserName:     opts.UserName,
		Prior:        s.Profile,
		Bootstrapped: s.Origin == domain.OriginBootstrapped,
	})
	if err != nil {
		next.Mode = s.Mode
		next.ClarityScore = s.ClarityScore
		next.SummaryFinalized = false
		next.ShowSummary = false
		next.Messages = append(next.Messages, newMessage(MalformedSummaryMessage, domain.SenderAssistant, domain.MessageNormal))
		out.SummaryMalformed = true
		return next, out
	}

	next.Profile = asm.Profile
	if asm.FounderAngle != nil {
		next.FounderBackground = asm.FounderAngle
	}
	next.SummaryFinalized = true
	next.ShowSummary = true
	next.ClarityScore = FinalClarity
	out.SummaryAssembled = true
	out.Celebrate = out.Command.celebrates()

	closing := SummaryReadyMessage
	if out.Celebrate {
		closing = CelebrationMessage
	}
	text := intelligence.StripSummaryBlock(reply.ReplyText)
	if text != "" {
		text += "\n\n"
	}
	next.Messages = append(next.Messages, newMessage(text+closing, domain.SenderAssistant, domain.MessageNormal))
	return next, out
}

// ApplyResponderFailure rolls the pending user turn back and appends the
// fixed apology. Mode, clarity and summary flags are untouched. Rolling back
// a directive restores priorOrigin, the origin before ApplyUserTurn ran.
func ApplyResponderFailure(s domain.SessionState, pendingID string, priorOrigin domain.Origin) domain.SessionState {
	next := s.Clone()
	for i := len(next.Messages) - 1; i >= 0; i-- {
		if next.Messages[i].ID == pendingID {
			pending := next.Messages[i]
			next.Messages = append(next.Messages[:i], next.Messages[i+1:]...)
			if next.TurnCount > 0 {
				next.TurnCount--
			}
			if pending.Kind == domain.MessageDirective && priorOrigin != "" {
				next.Origin = priorOrigin
			}
			break
		}
	}
	next.Messages = append(next.Messages, newMessage(ResponderFailureMessage, domain.SenderAssistant, domain.MessageError))
	next.UpdatedAt = now()
	return next
}

// ApplyModeSwitch changes mode. The clarity score is kept so switching back
// to refinement resumes from it.
func ApplyModeSwitch(s domain.SessionState, mode domain.Mode) (domain.SessionState, error) {
	if !mode.Valid() {
		return s, fmt.Errorf("unknown mode %q", mode)
	}
	if s.Mode == mode {
		return s, nil
	}
	next := s.Clone()
	next.Mode = mode
	next.UpdatedAt = now()
	return next, nil
}

// ApplyTalkMore reopens a finalized session for further refinement.
// Sessions without a finalized summary are returned unchanged.
func ApplyTalkMore(s domain.SessionState) (domain.SessionState, error) {
	if !s.SummaryFinalized {
		return s, ErrNotFinalized
	}
	next := s.Clone()
	next.SummaryFinalized = false
	next.ShowSummary = false
	next.Mode = domain.ModeRefinement
	next.ClarityScore = ReopenedClarity
	next.Messages = append(next.Messages, newMessage(reopenMessage(next.Profile), domain.SenderAssistant, domain.MessageNormal))
	next.UpdatedAt = now()
	return next, nil
}

// ApplyProfileEdit sets one field of the editable profile. Founder's Angle
// edits the founder background. A session without a profile gets one
// seeded with placeholders for the required fields.
func ApplyProfileEdit(s domain.SessionState, field domain.ProfileField, value, userName string) (domain.SessionState, error) {
	next := s.Clone()
	if field == domain.FieldFounderAngle {
		next.FounderBackground = domain.StrPtr(value)
		next.UpdatedAt = now()
		return next, nil
	}

	if next.Profile == nil {
		next.Profile = &domain.VentureProfile{
			Title:   intelligence.PlaceholderFor(domain.FieldTitle, userName),
			Summary: intelligence.PlaceholderFor(domain.FieldSummary, userName),
		}
	}
	if err := next.Profile.Set(field, value); err != nil {
		return s, err
	}
	if err := next.Profile.Validate(); err != nil {
		return s, fmt.Errorf("edit %s: %w", field, err)
	}
	next.UpdatedAt = now()
	return next, nil
}

// RememberFact adds fact to the remembered set. It reports false when the
// fact is blank or already present.
func RememberFact(s domain.SessionState, fact string) (domain.SessionState, bool) {
	fact = strings.TrimSpace(fact)
	if fact == "" || s.HasFact(fact) {
		return s, false
	}
	next := s.Clone()
	next.Facts = append(next.Facts, fact)
	next.UpdatedAt = now()
	return next, true
}

func clampClarity(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func hasUserMessage(s domain.SessionState) bool {
	for _, m := range s.Messages {
		if m.Sender == domain.SenderUser {
			return true
		}
	}
	return false
}

func lastUserText(s domain.SessionState) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == domain.SenderUser {
			return s.Messages[i].Text
		}
	}
	return ""
}
