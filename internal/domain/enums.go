package domain

type Mode string

const (
	ModeRefinement Mode = "refinement"
	ModeGeneral    Mode = "general"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeRefinement || m == ModeGeneral
}

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type MessageKind string

const (
	MessageNormal    MessageKind = "normal"
	MessageDirective MessageKind = "directive"
	MessageError     MessageKind = "error"
)

type Origin string

const (
	OriginNormal       Origin = "normal"
	OriginBootstrapped Origin = "bootstrapped"
	OriginContinued    Origin = "continued"
)
