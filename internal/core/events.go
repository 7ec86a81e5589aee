package core

// EventKind identifies a run or skill lifecycle event.
type EventKind int

const (
	RunStarted EventKind = iota
	SkillStarted
	SkillSucceeded
	SkillFailed
	RunFinished
)

func (k EventKind) String() string {
	switch k {
	case RunStarted:
		return "run-started"
	case SkillStarted:
		return "skill-started"
	case SkillSucceeded:
		return "skill-succeeded"
	case SkillFailed:
		return "skill-failed"
	case RunFinished:
		return "run-finished"
	default:
		return "unknown"
	}
}

// Event is delivered to an Observer. Total is set on run events; the skill
// fields are set on skill events.
type Event struct {
	Kind       EventKind
	Total      int
	Index      int
	Plugin     string
	Skill      string
	OutputName string
	Path       string
	Err        error
}

// Observer receives events. Calls are serialized, even for concurrent runs,
// so an observer needs no locking of its own.
type Observer func(Event)
