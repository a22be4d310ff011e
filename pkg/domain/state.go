package domain

import "time"

// AgentID identifies one of the agents that can hold the conversation.
type AgentID string

const (
	AgentSupervisor        AgentID = "Supervisor"
	AgentHotel             AgentID = "Hotel"
	AgentExcursionTransfer AgentID = "ExcursionTransfer"
)

// Agents lists every valid agent in routing order.
var Agents = []AgentID{AgentSupervisor, AgentHotel, AgentExcursionTransfer}

// Valid reports whether the ID names a known agent.
func (a AgentID) Valid() bool {
	switch a {
	case AgentSupervisor, AgentHotel, AgentExcursionTransfer:
		return true
	}
	return false
}

// SessionStatus is the second dimension of the router state.
type SessionStatus string

const (
	StatusIdle             SessionStatus = "idle"              // Ready for a new user message
	StatusAwaitingApproval SessionStatus = "awaiting_approval" // A sensitive call is suspended
)

// Locale carries the per-session presentation preferences.
type Locale struct {
	Language string `json:"language,omitempty" yaml:"language,omitempty" mapstructure:"language"`
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty" mapstructure:"currency"`
}

// Merge returns l with every non-empty field of other applied on top.
func (l Locale) Merge(other Locale) Locale {
	if other.Language != "" {
		l.Language = other.Language
	}
	if other.Currency != "" {
		l.Currency = other.Currency
	}
	return l
}

// DefaultLocale is used when a session starts without explicit preferences.
var DefaultLocale = Locale{Language: "es", Currency: "CLP"}

// PendingAction is the sensitive call currently suspended at the approval gate.
type PendingAction struct {
	// Handle identifies this particular suspension. A resolution must present it.
	Handle string `json:"handle" yaml:"handle"`

	Call  ToolCall `json:"call" yaml:"call"`
	Agent AgentID  `json:"agent" yaml:"agent"`

	// RaisedAt is the history length when the gate was opened.
	RaisedAt int       `json:"raised_at" yaml:"raised_at"`
	OpenedAt time.Time `json:"opened_at" yaml:"opened_at"`
}

// Session represents the durable snapshot of a single conversation thread.
type Session struct {
	// ThreadID is the external address of the conversation.
	ThreadID string `json:"thread_id" yaml:"thread_id"`

	// ActiveAgent is never empty once the session is created.
	ActiveAgent AgentID `json:"active_agent" yaml:"active_agent"`

	Status SessionStatus `json:"status" yaml:"status"`

	// Messages is the append-only history.
	Messages []Message `json:"messages" yaml:"messages"`

	// Pending is set only while Status == StatusAwaitingApproval.
	Pending *PendingAction `json:"pending,omitempty" yaml:"pending,omitempty"`

	// Queue holds sensitive calls from the same plan still waiting for their own gate.
	Queue []ToolCall `json:"queue,omitempty" yaml:"queue,omitempty"`

	// Slots are the values seeded by the last handoff into the active agent.
	Slots map[string]string `json:"slots,omitempty" yaml:"slots,omitempty"`

	Locale Locale `json:"locale" yaml:"locale"`

	// Credential authenticates tool calls against the booking API. Never persisted.
	Credential string `json:"-" yaml:"-"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewSession creates a clean session with the Supervisor in control.
func NewSession(threadID string, locale Locale) *Session {
	now := time.Now().UTC()
	return &Session{
		ThreadID:    threadID,
		ActiveAgent: AgentSupervisor,
		Status:      StatusIdle,
		Messages:    []Message{},
		Slots:       make(map[string]string),
		Locale:      DefaultLocale.Merge(locale),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Append adds messages to the history.
func (s *Session) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.UpdatedAt = time.Now().UTC()
}

// CurrentPendingAction returns the suspended action, or nil when Idle.
func (s *Session) CurrentPendingAction() *PendingAction {
	if s.Status != StatusAwaitingApproval {
		return nil
	}
	return s.Pending
}

// Context returns the request context the tools of this session run with.
func (s *Session) Context() RequestContext {
	return RequestContext{ThreadID: s.ThreadID, Locale: s.Locale, Credential: s.Credential}
}

// Clone returns a deep copy so that a checkpoint cannot be altered through shared slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m.clone()
	}
	if s.Pending != nil {
		p := *s.Pending
		p.Call = s.Pending.Call.clone()
		c.Pending = &p
	}
	if s.Queue != nil {
		c.Queue = make([]ToolCall, len(s.Queue))
		for i, q := range s.Queue {
			c.Queue[i] = q.clone()
		}
	}
	c.Slots = make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	return &c
}

// RequestContext is passed by value into every tool invocation.
type RequestContext struct {
	ThreadID   string
	Locale     Locale
	Credential string
}

// Inbound is one user event delivered to a session.
type Inbound struct {
	Message    string `json:"message"`
	Language   string `json:"language,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Credential string `json:"token,omitempty"`
}

// Locale extracts the locale fields carried by the event.
func (in Inbound) Locale() Locale {
	return Locale{Language: in.Language, Currency: in.Currency}
}
