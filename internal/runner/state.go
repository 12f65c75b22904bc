package runner

// State is the dispatch loop's position within a cycle.
type State int

const (
	AwaitingModel State = iota
	AwaitingTool
	Terminal
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "awaiting_model"
	case AwaitingTool:
		return "awaiting_tool"
	case Terminal:
		return "terminal"
	}
	return "unknown"
}
