package wizard

// Step is a phase of the wizard, ordered by progression.
type Step int

const (
	StepDetails Step = iota // Identity entry
	StepDraw                // Simulated verification and draw
	StepResult              // Gated reveal
)

// stepCount is the number of steps in the progression.
const stepCount = 3

var stepLabels = [stepCount]string{"Enter Details", "Verify & Draw", "Result"}

// Index returns the step's position in the progression (0-based).
func (s Step) Index() int {
	return int(s)
}

// Label returns the step indicator caption.
func (s Step) Label() string {
	if s < StepDetails || s > StepResult {
		return ""
	}
	return stepLabels[s]
}

// Progress returns (index+1)/3 as a fraction in (0,1].
func (s Step) Progress() float64 {
	return float64(s.Index()+1) / stepCount
}

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepDraw:
		return "draw"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

// Steps returns all steps in order.
func Steps() []Step {
	return []Step{StepDetails, StepDraw, StepResult}
}

// GateState is the state of the confirmation gate in front of the reveal.
type GateState int

const (
	GateClosed GateState = iota
	GatePending
	GateSatisfied
)

func (g GateState) String() string {
	switch g {
	case GateClosed:
		return "closed"
	case GatePending:
		return "pending"
	case GateSatisfied:
		return "satisfied"
	default:
		return "unknown"
	}
}

// RevealState is the playback lifecycle of the reveal overlay.
type RevealState int

const (
	RevealHidden RevealState = iota
	RevealAttempting
	RevealPlaying
	RevealBlocked
)

func (r RevealState) String() string {
	switch r {
	case RevealHidden:
		return "hidden"
	case RevealAttempting:
		return "attempting"
	case RevealPlaying:
		return "playing"
	case RevealBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Visible reports whether the reveal overlay is shown.
func (r RevealState) Visible() bool {
	return r != RevealHidden
}

// AttemptOutcome is the result of one completed draw attempt.
type AttemptOutcome int

const (
	OutcomeNone         AttemptOutcome = iota // No attempt completed
	OutcomeRetry                              // Unlucky; stay on Draw
	OutcomeGateRequired                       // Threshold reached; gate opens
)

func (o AttemptOutcome) String() string {
	switch o {
	case OutcomeRetry:
		return "retry"
	case OutcomeGateRequired:
		return "gate_required"
	default:
		return "none"
	}
}
