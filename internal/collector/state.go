package collector

// State is the position of a role's collection in its lifecycle.
type State int

const (
	// Collecting is the initial state: querying the configured locations.
	Collecting State = iota
	// Broadened means the broaden-to location has been added to the rotation.
	Broadened
	// Satisfied means the minimum job count was reached.
	Satisfied
	// Exhausted means the round cap was reached short of the target.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Broadened:
		return "broadened"
	case Satisfied:
		return "satisfied"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// terminal reports whether no further rounds should run.
func (s State) terminal() bool {
	return s == Satisfied || s == Exhausted
}

// transition returns the state after completedRound rounds have finished with
// collected fresh postings accumulated. canBroaden is true when a broaden-to
// location exists that is not already being queried.
func transition(s State, completedRound, collected int, opts Options, canBroaden bool) State {
	if s.terminal() {
		return s
	}
	if collected >= opts.MinJobs {
		return Satisfied
	}
	if completedRound >= opts.MaxRounds {
		return Exhausted
	}
	if s == Collecting && completedRound == opts.BroadenAfterRound && canBroaden {
		return Broadened
	}
	return s
}
