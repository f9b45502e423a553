package core

import "strings"

// Action represents a semantic avatar action, abstracted from physical key presses.
// Controllers choose one Action per player per tick.
type Action int

const (
	ActionNil    Action = iota // No-op, always legal
	ActionUp                   // Move up
	ActionDown                 // Move down
	ActionLeft                 // Move left
	ActionRight                // Move right
	ActionUse                  // Shoot / use the avatar's tool
	ActionEscape               // Leave the game (treated as abort)
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNil:
		return "NIL"
	case ActionUp:
		return "UP"
	case ActionDown:
		return "DOWN"
	case ActionLeft:
		return "LEFT"
	case ActionRight:
		return "RIGHT"
	case ActionUse:
		return "USE"
	case ActionEscape:
		return "ESCAPE"
	default:
		return "UNKNOWN"
	}
}

// ParseAction maps an action name to an Action. Names are case-insensitive and
// the "ACTION_" prefix used by recorded action files is accepted.
func ParseAction(s string) (Action, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ACTION_")
	switch name {
	case "NIL", "NONE", "":
		return ActionNil, true
	case "UP":
		return ActionUp, true
	case "DOWN":
		return ActionDown, true
	case "LEFT":
		return ActionLeft, true
	case "RIGHT":
		return ActionRight, true
	case "USE":
		return ActionUse, true
	case "ESCAPE":
		return ActionEscape, true
	default:
		return ActionNil, false
	}
}

// Direction returns the movement direction for directional actions.
func (a Action) Direction() Direction {
	switch a {
	case ActionUp:
		return DirUp
	case ActionDown:
		return DirDown
	case ActionLeft:
		return DirLeft
	case ActionRight:
		return DirRight
	default:
		return DirNone
	}
}
