package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/pk049/Email-agent/internal/config"
	"github.com/pk049/Email-agent/internal/llm"
	"github.com/pk049/Email-agent/internal/logger"
	"github.com/pk049/Email-agent/internal/ops"

	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"
)

// ErrToolCycleBudget reports a turn that exhausted its reasoning/execution
// cycle budget without reaching a final reply.
var ErrToolCycleBudget = errors.New("agent: tool cycle budget exhausted for this turn")

// Turn loop states
type turnState stateless.State

var (
	stateReason  turnState = "Reason"
	stateExecute turnState = "ExecuteTools"
	stateDone    turnState = "Done"
	stateFailed  turnState = "Failed"
)

// Turn loop triggers
type turnTrigger stateless.Trigger

var (
	triggerTurnStarted     turnTrigger = "TurnStarted"
	triggerReplied         turnTrigger = "Replied"
	triggerToolsRequested  turnTrigger = "ToolsRequested"
	triggerResultsAppended turnTrigger = "ResultsAppended"
	triggerBudgetExhausted turnTrigger = "BudgetExhausted"
)

// Agent runs one conversational turn at a time: reason, route, execute
// pending tool calls, and repeat until the reasoner replies without calls.
type Agent struct {
	reasoner      *Reasoner
	executor      *Executor
	descriptors   []openai.Tool
	maxToolCycles int
}

// New builds an agent over the reasoning client and the static operation
// registry.
func New(client llm.Client, cfg config.Config, registry *ops.Registry) *Agent {
	maxCycles := cfg.Agent.MaxToolCycles
	if maxCycles <= 0 {
		maxCycles = 5
	}
	return &Agent{
		reasoner:      NewReasoner(client, cfg.LLM.Model, cfg.Agent.SystemPrompt),
		executor:      NewExecutor(registry),
		descriptors:   registry.Definitions(),
		maxToolCycles: maxCycles,
	}
}

// turnContext is the working state of one turn.
type turnContext struct {
	log    []openai.ChatCompletionMessage
	delta  []openai.ChatCompletionMessage
	cycles int
	err    error
}

func (t *turnContext) record(msgs ...openai.ChatCompletionMessage) {
	t.log = Append(t.log, msgs...)
	t.delta = Append(t.delta, msgs...)
}

// RunTurn drives the turn loop over a log whose last entry is the new user
// message. It returns exactly the newly produced messages and the final
// assistant text. The only terminal error is an exhausted cycle budget;
// reasoning failures come back as a diagnostic reply and operation failures
// stay inside the conversation.
func (a *Agent) RunTurn(ctx context.Context, history []openai.ChatCompletionMessage) ([]openai.ChatCompletionMessage, string, error) {
	tc := &turnContext{log: history}

	fsm := stateless.NewStateMachine(stateReason)

	fsm.Configure(stateReason).
		PermitReentry(triggerTurnStarted).
		OnEntry(func(ctx context.Context, args ...any) error {
			if tc.cycles >= a.maxToolCycles {
				logger.L.Warn("turn exceeded tool cycle budget", "max_cycles", a.maxToolCycles)
				tc.err = ErrToolCycleBudget
				return fsm.FireCtx(ctx, triggerBudgetExhausted)
			}
			tc.cycles++

			msg := a.reasoner.Step(ctx, tc.log, a.descriptors)
			tc.record(msg)

			if Route(msg) == Continue {
				return fsm.FireCtx(ctx, triggerToolsRequested)
			}
			return fsm.FireCtx(ctx, triggerReplied)
		}).
		Permit(triggerToolsRequested, stateExecute).
		Permit(triggerReplied, stateDone).
		Permit(triggerBudgetExhausted, stateFailed)

	fsm.Configure(stateExecute).
		OnEntry(func(ctx context.Context, args ...any) error {
			last := tc.log[len(tc.log)-1]
			results := a.executor.Run(ctx, last.ToolCalls)
			tc.record(results...)
			return fsm.FireCtx(ctx, triggerResultsAppended)
		}).
		Permit(triggerResultsAppended, stateReason)

	fsm.Configure(stateDone)
	fsm.Configure(stateFailed)

	// The initial reentry fire invokes stateReason's OnEntry and from there
	// the loop drives itself synchronously to a terminal state.
	if err := fsm.FireCtx(ctx, triggerTurnStarted); err != nil {
		return tc.delta, "", fmt.Errorf("turn loop: %w", err)
	}

	state, err := fsm.State(ctx)
	if err != nil {
		return tc.delta, "", fmt.Errorf("turn loop state: %w", err)
	}

	switch state {
	case stateDone:
		return tc.delta, FinalText(tc.delta), nil
	case stateFailed:
		if tc.err == nil {
			tc.err = ErrToolCycleBudget
		}
		return tc.delta, "", tc.err
	default:
		return tc.delta, "", fmt.Errorf("turn loop ended in unexpected state %v", state)
	}
}
