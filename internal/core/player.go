package core

// PlayerID identifies a player slot. Slots are dense, starting at 0.
type PlayerID int

// Player1 is the primary player; audio intensities are measured from its avatar.
const Player1 PlayerID = 0

// Outcome is the win state of a single player.
type Outcome int

const (
	OutcomeNoWinner     Outcome = iota // Game still running or undecided
	OutcomeWin                         // Player won
	OutcomeLose                        // Player lost
	OutcomeDisqualified                // Player was disqualified
)

// ScoreDisqualified is the score reported for disqualified or missing players.
const ScoreDisqualified = -1000.0

// Key returns the numeric result code used in result triplets.
func (o Outcome) Key() int {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeLose:
		return 0
	case OutcomeDisqualified:
		return -100
	default:
		return -1
	}
}

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomeDisqualified:
		return "disqualified"
	default:
		return "none"
	}
}
