package pipeline

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with Stage constants in stage.go.
const (
	StatePending = "pending"
	StateIntro   = "intro"
	StateContext = "context"
	StateIssues  = "issues"
	StateRender  = "render"
	StateSave    = "save"
	StateDone    = "done"
	StateFailed  = "failed"
)

// init validates at startup that FSM state constants match Stage values.
// This ensures the FSM and value object stay in sync.
func init() {
	stateMap := map[string]Stage{
		StatePending: StagePending,
		StateIntro:   StageIntro,
		StateContext: StageContext,
		StateIssues:  StageIssues,
		StateRender:  StageRender,
		StateSave:    StageSave,
		StateDone:    StageDone,
		StateFailed:  StageFailed,
	}

	for fsmState, stage := range stateMap {
		if fsmState != string(stage) {
			panic(fmt.Sprintf("FSM state %q does not match Stage %q - constants are out of sync", fsmState, stage))
		}
	}
}

// PostContext carries state data.
type PostContext struct {
	Slug  string
	Guard func(slug string, event string) bool
}

// PostStateMachine drives a single post through the generation pipeline.
type PostStateMachine struct {
	interpreter *statekit.Interpreter[PostContext]
}

func NewPostStateMachine(initialStage string, slug string, guard func(string, string) bool) (*PostStateMachine, error) {
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	// Define the machine
	builder := statekit.NewMachine[PostContext]("post-pipeline").
		WithInitial(statekit.StateID(initialStage)).
		WithContext(PostContext{
			Slug:  slug,
			Guard: guard,
		}).
		WithGuard("providerGuard", func(ctx PostContext, e statekit.Event) bool {
			return ctx.Guard(ctx.Slug, string(e.Type))
		})

	// Pending State: generation may only start once a provider is available.
	builder.State(StatePending).
		On(EventAdvance).Target(StateIntro).Guard("providerGuard").
		On(EventFail).Target(StateFailed).
		Done()

	// Section stages advance in order; any of them may fail the run.
	builder.State(StateIntro).
		On(EventAdvance).Target(StateContext).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateContext).
		On(EventAdvance).Target(StateIssues).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateIssues).
		On(EventAdvance).Target(StateRender).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateRender).
		On(EventAdvance).Target(StateSave).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateSave).
		On(EventAdvance).Target(StateDone).
		On(EventFail).Target(StateFailed).
		Done()

	// Final States: a reset re-queues the post, used by watch mode.
	builder.State(StateDone).
		On(EventReset).Target(StatePending).
		Done()

	builder.State(StateFailed).
		On(EventReset).Target(StatePending).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &PostStateMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the post to the next stage.
func (sm *PostStateMachine) Transition(event string) error {
	before := sm.Current()
	// Send event
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	// If no transition matches or a guard rejects the event, the state
	// stays the same.
	return fmt.Errorf("the action '%s' is not allowed while the post is in the '%s' stage", event, before)
}

func (sm *PostStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStage returns the current state as a Stage value object.
func (sm *PostStateMachine) CurrentStage() Stage {
	return Stage(sm.Current())
}

// CanTransition checks if the given event is valid for the current stage.
// This delegates to the Stage value object for consistency.
func (sm *PostStateMachine) CanTransition(event string) bool {
	return sm.CurrentStage().CanTransitionWith(event)
}

// ValidEvents returns the valid events for the current stage.
// This delegates to the Stage value object for consistency.
func (sm *PostStateMachine) ValidEvents() []string {
	return sm.CurrentStage().ValidEvents()
}

// IsFinal returns true if the current stage is a final stage.
func (sm *PostStateMachine) IsFinal() bool {
	return sm.CurrentStage().IsFinal()
}

// IsComplete returns true if the post was generated and saved.
func (sm *PostStateMachine) IsComplete() bool {
	return sm.CurrentStage().IsComplete()
}
