package domain

// BotState is the controller's run state. Transitions happen only via
// explicit Start/Stop calls; a failed cycle never changes state.
type BotState int

const (
	StateStopped BotState = iota
	StateRunning
)

// String returns the string representation of BotState
func (s BotState) String() string {
	if s == StateRunning {
		return "RUNNING"
	}
	return "STOPPED"
}
