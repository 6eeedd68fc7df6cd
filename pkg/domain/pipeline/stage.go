package pipeline

import "fmt"

// Stage identifies a step of the blog post generation pipeline.
type Stage string

const (
	StagePending Stage = "pending"
	StageIntro   Stage = "intro"
	StageContext Stage = "context"
	StageIssues  Stage = "issues"
	StageRender  Stage = "render"
	StageSave    Stage = "save"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// Pipeline events.
const (
	EventAdvance = "advance"
	EventFail    = "fail"
	EventReset   = "reset"
)

// validTransitions defines the allowed stage transitions and their events.
// Map: currentStage -> event -> targetStage
var validTransitions = map[Stage]map[string]Stage{
	StagePending: {
		EventAdvance: StageIntro,
		EventFail:    StageFailed,
	},
	StageIntro: {
		EventAdvance: StageContext,
		EventFail:    StageFailed,
	},
	StageContext: {
		EventAdvance: StageIssues,
		EventFail:    StageFailed,
	},
	StageIssues: {
		EventAdvance: StageRender,
		EventFail:    StageFailed,
	},
	StageRender: {
		EventAdvance: StageSave,
		EventFail:    StageFailed,
	},
	StageSave: {
		EventAdvance: StageDone,
		EventFail:    StageFailed,
	},
	StageDone: {
		EventReset: StagePending,
	},
	StageFailed: {
		EventReset: StagePending,
	},
}

// AllStages returns every pipeline stage in execution order.
func AllStages() []Stage {
	return []Stage{
		StagePending,
		StageIntro,
		StageContext,
		StageIssues,
		StageRender,
		StageSave,
		StageDone,
		StageFailed,
	}
}

// IsValid returns true if the stage is a known pipeline stage.
func (s Stage) IsValid() bool {
	switch s {
	case StagePending, StageIntro, StageContext, StageIssues, StageRender, StageSave, StageDone, StageFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// CanTransitionWith returns true if the given event can trigger a transition from this stage.
func (s Stage) CanTransitionWith(event string) bool {
	transitions, ok := validTransitions[s]
	if !ok {
		return false
	}

	_, ok = transitions[event]
	return ok
}

// TransitionWith returns the target stage for a given event, or an error if not allowed.
func (s Stage) TransitionWith(event string) (Stage, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for stage: %s", s)
	}

	target, ok := transitions[event]
	if !ok {
		return s, fmt.Errorf("event '%s' not allowed from stage '%s'", event, s)
	}

	return target, nil
}

// ValidEvents returns all valid events that can be triggered from this stage.
func (s Stage) ValidEvents() []string {
	transitions, ok := validTransitions[s]
	if !ok {
		return nil
	}

	var events []string
	for event := range transitions {
		events = append(events, event)
	}
	return events
}

// IsFinal returns true once the pipeline run has ended for this post.
func (s Stage) IsFinal() bool {
	return s == StageDone || s == StageFailed
}

// IsComplete returns true when the post was generated and saved.
func (s Stage) IsComplete() bool {
	return s == StageDone
}

// DisplayName returns a human-readable display name for the stage.
func (s Stage) DisplayName() string {
	switch s {
	case StagePending:
		return "Pending"
	case StageIntro:
		return "Writing Introduction"
	case StageContext:
		return "Describing Scenarios"
	case StageIssues:
		return "Analyzing Issues"
	case StageRender:
		return "Rendering"
	case StageSave:
		return "Saving"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	default:
		return string(s)
	}
}
