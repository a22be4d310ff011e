package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/invopop/jsonschema"
)

// ToolFunction defines the signature for a tool implementation.
// It receives the call (name, arguments, ID) with the session's request context and returns a
// result or error. Strings are passed through as is, anything else is encoded as JSON.
type ToolFunction func(ctx context.Context, req domain.ToolRequest) (any, error)

type entry struct {
	desc domain.ToolDescriptor
	fn   ToolFunction
}

// ToolSet is the view of the registry visible to one agent, in registration order.
type ToolSet struct {
	Safe      []domain.ToolDescriptor
	Sensitive []domain.ToolDescriptor
}

// All returns safe tools followed by sensitive ones.
func (s ToolSet) All() []domain.ToolDescriptor {
	all := make([]domain.ToolDescriptor, 0, len(s.Safe)+len(s.Sensitive))
	all = append(all, s.Safe...)
	return append(all, s.Sensitive...)
}

// Registry manages the available tools.
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	tools  map[string]entry
	order  []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]entry),
	}
}

// Register adds a tool to the registry.
// Names are unique across agents; registering after Freeze fails.
func (r *Registry) Register(desc domain.ToolDescriptor, fn ToolFunction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", domain.ErrRegistryFrozen, desc.Name)
	}
	if desc.Name == "" || fn == nil {
		return fmt.Errorf("tool requires a name and a function")
	}
	if domain.IsHandoff(desc.Name) {
		return fmt.Errorf("tool name %q is reserved for a handoff", desc.Name)
	}
	if !desc.Agent.Valid() {
		return fmt.Errorf("%w: %q owns tool %q", domain.ErrUnknownAgent, desc.Agent, desc.Name)
	}
	if desc.Safety != domain.Safe && desc.Safety != domain.Sensitive {
		return fmt.Errorf("tool %q has invalid safety class %q", desc.Name, desc.Safety)
	}
	if _, exists := r.tools[desc.Name]; exists {
		return fmt.Errorf("tool %q already registered", desc.Name)
	}

	r.tools[desc.Name] = entry{desc: desc, fn: fn}
	r.order = append(r.order, desc.Name)
	return nil
}

// MustRegister is like Register but panics on error. Meant for startup wiring.
func (r *Registry) MustRegister(desc domain.ToolDescriptor, fn ToolFunction) {
	if err := r.Register(desc, fn); err != nil {
		panic(err)
	}
}

// Freeze makes the registry immutable.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// ToolsFor returns the tools owned by an agent, partitioned by safety.
func (r *Registry) ToolsFor(agent domain.AgentID) ToolSet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var set ToolSet
	for _, name := range r.order {
		d := r.tools[name].desc
		if d.Agent != agent {
			continue
		}
		if d.Safety == domain.Sensitive {
			set.Sensitive = append(set.Sensitive, d)
		} else {
			set.Safe = append(set.Safe, d)
		}
	}
	return set
}

// Lookup returns the descriptor for a tool name.
func (r *Registry) Lookup(name string) (domain.ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.desc, ok
}

// IsSensitive reports whether a tool mutates external state.
// Unknown names report true so that a lookup mistake can never skip the approval gate.
func (r *Registry) IsSensitive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return !ok || e.desc.Safety == domain.Sensitive
}

// Allowed reports whether agent owns the tool.
func (r *Registry) Allowed(agent domain.AgentID, name string) bool {
	d, ok := r.Lookup(name)
	return ok && d.Agent == agent
}

// Execute looks up a tool by name and executes it.
// Failures, including an unknown name or a panicking tool, are reported in the result.
func (r *Registry) Execute(ctx context.Context, req domain.ToolRequest) (res domain.ToolResult) {
	res.ID = req.Call.ID

	r.mu.RLock()
	e, ok := r.tools[req.Call.Name]
	r.mu.RUnlock()

	if !ok {
		res.IsError = true
		res.Content = fmt.Sprintf("Error: %v: %s", domain.ErrUnknownTool, req.Call.Name)
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			res.IsError = true
			res.Content = fmt.Sprintf("Error: tool %s panicked: %v", req.Call.Name, p)
		}
	}()

	out, err := e.fn(ctx, req)
	if err != nil {
		res.IsError = true
		res.Content = "Error: " + err.Error()
		return res
	}
	res.Content = render(out)
	return res
}

func render(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("%v", out)
	}
	return string(b)
}

// SchemaFor reflects the JSON schema of an argument struct.
func SchemaFor[T any]() *jsonschema.Schema {
	var v T
	return SchemaOf(&v)
}

// SchemaOf reflects the JSON schema of an argument value.
func SchemaOf(v any) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}
