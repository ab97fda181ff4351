// Package ops defines the closed set of mailbox operations the agent can
// invoke, and the static registry that resolves operation names. The set is
// fixed at startup; there is no runtime discovery.
package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Handler executes one operation. The returned payload becomes the success
// body of the tool result; a non-nil error becomes its error body. Handlers
// validate their own arguments beyond basic shape.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Operation is one named capability with a fixed argument schema.
type Operation struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema for the arguments object
	Run         Handler
}

// Registry maps operation names to operations. It is built once at startup
// and read-only afterwards, so no locking is needed.
type Registry struct {
	ops   map[string]*Operation
	order []string
}

// NewRegistry builds a registry from the given operations. Duplicate or
// unnamed operations are programming errors and rejected.
func NewRegistry(operations ...*Operation) (*Registry, error) {
	r := &Registry{ops: make(map[string]*Operation, len(operations))}
	for _, op := range operations {
		if op == nil || op.Name == "" {
			return nil, fmt.Errorf("ops: operation without a name")
		}
		if _, exists := r.ops[op.Name]; exists {
			return nil, fmt.Errorf("ops: operation %s registered twice", op.Name)
		}
		r.ops[op.Name] = op
		r.order = append(r.order, op.Name)
	}
	return r, nil
}

// Resolve looks up an operation by name.
func (r *Registry) Resolve(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns the registered operation names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions renders the operation descriptors handed to the reasoning
// capability.
func (r *Registry) Definitions() []openai.Tool {
	tools := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		op := r.ops[name]
		params := op.Parameters
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        op.Name,
				Description: op.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
