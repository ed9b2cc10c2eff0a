package player

// State is the output's transport state.
//
//	Stopped ──Replace──▶ Loading ──ready──▶ Paused ──Play──▶ Playing
//	                        │                  ▲               │
//	                        └──failed──▶ Stopped └────Pause────┘
//
// A loaded track waits in Paused until Play is called. Replace from any
// state drops the current track and starts loading the next one.
type State int

const (
	Stopped State = iota
	Loading
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}
