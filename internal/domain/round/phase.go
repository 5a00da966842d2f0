package round

// Phase is the round's lifecycle stage.
type Phase int

const (
	Idle Phase = iota
	Countdown
	Running
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Countdown:
		return "countdown"
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// CountdownFrom is the first number shown after a start signal.
const CountdownFrom = 3
