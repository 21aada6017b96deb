package intelligence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/domain"
	"github.com/alexanderramin/ideaforge/internal/llm"
)

// ErrResponderMalformed is returned when the responder produced no usable
// reply text.
var ErrResponderMalformed = errors.New("responder reply missing text")

// ResponderRequest is the prompt context for one turn.
type ResponderRequest struct {
	History        []domain.Message // transcript before the latest user text
	LatestUserText string
	TurnCount      int
	UserName       string
	Facts          []string
	Mode           domain.Mode
}

// ResponderReply is what the responder produced. Everything except ReplyText
// is advisory and may be nil.
type ResponderReply struct {
	ReplyText        string
	CommandGuess     *string
	AcknowledgedFact *string
	SuggestedMode    *domain.Mode
	ClarityEstimate  *int
}

// Responder produces the assistant side of a turn.
type Responder interface {
	Respond(ctx context.Context, req ResponderRequest) (*ResponderReply, error)
}

type llmResponder struct {
	client   llm.LLMClient
	observer llm.Observer
}

// NewLLMResponder creates a Responder backed by an LLM client.
func NewLLMResponder(client llm.LLMClient, observer llm.Observer) Responder {
	if observer == nil {
		observer = llm.NoopObserver{}
	}
	return &llmResponder{client: client, observer: observer}
}

// responderEnvelope is the JSON structure the model is asked to produce.
type responderEnvelope struct {
	Reply   string  `json:"reply"`
	Command string  `json:"command"`
	Fact    string  `json:"fact"`
	Mode    string  `json:"mode"`
	Clarity flexInt `json:"clarity"`
}

func (r *llmResponder) Respond(ctx context.Context, req ResponderRequest) (*ResponderReply, error) {
	_, bootstrap := ParseBootstrapDirective(req.LatestUserText)
	task := llm.TaskRefinement
	switch {
	case bootstrap:
		task = llm.TaskBootstrap
	case req.Mode == domain.ModeGeneral:
		task = llm.TaskGeneral
	}

	resp, err := r.client.Generate(ctx, llm.GenerateRequest{
		Task:         task,
		SystemPrompt: buildVentureSystemPrompt(req, bootstrap),
		Messages:     buildChatMessages(req),
		JSONFormat:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm %s reply failed: %w", task, err)
	}

	reply, err := ParseResponderOutput(resp.Text)
	if err != nil {
		r.observer.OnCallComplete(llm.LLMCallEvent{
			Task:      task,
			Model:     resp.Model,
			LatencyMs: resp.LatencyMs,
			Attempts:  1,
			ErrorCode: "INVALID_OUTPUT",
		})
		return nil, err
	}
	return reply, nil
}

// ParseResponderOutput interprets raw model output. A JSON envelope is
// preferred; anything else is taken as a plain reply with no hints.
func ParseResponderOutput(raw string) (*ResponderReply, error) {
	env, err := llm.ExtractJSON[responderEnvelope](raw, nil)
	if err != nil {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, ErrResponderMalformed
		}
		return &ResponderReply{ReplyText: text}, nil
	}

	text := strings.TrimSpace(env.Reply)
	if text == "" {
		return nil, ErrResponderMalformed
	}
	reply := &ResponderReply{
		ReplyText:        text,
		CommandGuess:     domain.StrPtr(env.Command),
		AcknowledgedFact: domain.StrPtr(env.Fact),
		ClarityEstimate:  env.Clarity.v,
	}
	if m := domain.Mode(strings.ToLower(strings.TrimSpace(env.Mode))); m.Valid() {
		reply.SuggestedMode = &m
	}
	return reply, nil
}

func buildChatMessages(req ResponderRequest) []llm.ChatMessage {
	msgs := make([]llm.ChatMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Kind == domain.MessageError {
			continue
		}
		role := llm.RoleUser
		if m.Sender == domain.SenderAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.ChatMessage{Role: role, Content: m.Text})
	}
	if text := strings.TrimSpace(req.LatestUserText); text != "" {
		msgs = append(msgs, llm.ChatMessage{Role: llm.RoleUser, Content: text})
	}
	return msgs
}

// flexInt accepts 42, 42.6, "42" or "42%". Unparseable values are dropped
// because the estimate is advisory.
type flexInt struct {
	v *int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.TrimSuffix(strings.Trim(s, `"`), "%")
	if s == "" || s == "null" {
		return nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	n := int(math.Round(x))
	f.v = &n
	return nil
}
