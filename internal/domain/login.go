package domain

import (
	id "loginguard/pkg/domain"
)

// ChangeEvent is one notification received from the store's change channel.
// Payload is opaque to the bridge; the approval workflow parses it into a
// request id.
type ChangeEvent struct {
	Topic   string
	Payload string
}

// AuthenticationRequest is the durable login attempt a ChangeEvent points at.
// It is written by the game server plugin and is read-only here.
type AuthenticationRequest struct {
	ID             id.RequestID
	SubjectAccount string
	OriginAddress  string
}

// Decision is the outcome of one approval prompt.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionApproved
	DecisionDenied
	DecisionTimedOut
)

func (d Decision) String() string {
	switch d {
	case DecisionApproved:
		return "approved"
	case DecisionDenied:
		return "denied"
	case DecisionTimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// IsFinal reports whether the decision is one of the three terminal values.
func (d Decision) IsFinal() bool {
	return d == DecisionApproved || d == DecisionDenied || d == DecisionTimedOut
}

// ChannelID is a chat channel snowflake, typically a direct-message channel.
type ChannelID string

// MessageRef locates one sent chat message.
type MessageRef struct {
	ChannelID ChannelID
	MessageID string
}

// IsZero reports whether the reference points at nothing.
func (r MessageRef) IsZero() bool { return r.MessageID == "" }

// Tone selects how a message is styled when rendered.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneFailure
)

// Message is a rendered-agnostic chat message: a title, a body and a tone.
type Message struct {
	Title string
	Body  string
	Tone  Tone
}
