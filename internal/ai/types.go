// Package ai provides the model selection, streaming transport, and failover
// engine that drive every chat turn. A turn enters through the Engine, which
// picks one or more candidate models and runs Transport attempts against the
// OpenRouter chat-completions API until one succeeds or the pool is exhausted.
package ai

import (
	"fmt"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation turn. Image, when set, holds an
// inline data URL; messages are immutable once handed to the engine.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// Capability describes what inputs a model can accept.
type Capability string

const (
	CapabilityText   Capability = "text"
	CapabilityVision Capability = "vision"
)

// AgentRole tags a model with its place in the code-generation pipeline.
type AgentRole string

const (
	RoleArchitect AgentRole = "architect"
	RoleFrontend  AgentRole = "frontend"
	RoleBackend   AgentRole = "backend"
)

// ModelDescriptor is static configuration for one candidate model. Never
// mutated at runtime.
type ModelDescriptor struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Provider   string     `json:"provider"`
	Capability Capability `json:"capability"`
	AgentRole  AgentRole  `json:"agent_role,omitempty"`
}

// FailureKind classifies a failed model attempt.
type FailureKind string

const (
	FailRateLimited   FailureKind = "rate_limited"
	FailServiceBusy   FailureKind = "service_busy"
	FailAuthInvalid   FailureKind = "auth_invalid"
	FailNetwork       FailureKind = "network_error"
	FailTimeout       FailureKind = "timeout"
	FailEmptyResponse FailureKind = "empty_response"
	FailUnknown       FailureKind = "unknown"
)

// AttemptError is the failure arm of an attempt outcome. Each model attempt
// produces at most one; a retry is a new attempt with a new outcome.
type AttemptError struct {
	Kind    FailureKind
	Model   string
	Status  int
	Message string
}

func (e *AttemptError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model %s: %s: %s", e.Model, e.Kind, e.Message)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Kind)
}

// Recoverable reports whether failover to another model may help.
func (e *AttemptError) Recoverable() bool {
	return e.Kind != FailAuthInvalid
}

// ConfigError signals a missing or placeholder API credential. It is fatal to
// the whole turn and is detected before any outbound call.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// TurnRequest carries one chat turn into the engine.
type TurnRequest struct {
	Messages     []Message
	Model        string // model id or "auto"
	DeepThinking bool
	VoiceMode    bool
	FocusMode    string
}

// TurnResult is the successful completion of a turn.
type TurnResult struct {
	Content  string
	Model    string
	Duration time.Duration
}

// Sink receives streamed fragments in arrival order, at most once each.
type Sink func(chunk string)
