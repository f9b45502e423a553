// Package gamedef reads YAML game descriptions and resolves them into the
// type hierarchy, rule tables and level mapping a simulation session runs on.
package gamedef

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EOS is the pseudo type naming the edge of the screen in interactions.
const EOS = "EOS"

// Description is the YAML structure of a game file.
type Description struct {
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	Players      int                 `yaml:"players"`
	Counters     int                 `yaml:"counters"`
	Sprites      []SpriteSpec        `yaml:"sprites"`
	Interactions []InteractionSpec   `yaml:"interactions"`
	Timed        []TimedSpec         `yaml:"timed"`
	Terminations []TerminationSpec   `yaml:"terminations"`
	LevelMapping map[string][]string `yaml:"level_mapping"`
}

// SpriteSpec declares one sprite type. Unset parameters are inherited from
// the parent type.
type SpriteSpec struct {
	Name        string   `yaml:"name"`
	Class       string   `yaml:"class"`
	Singleton   *bool    `yaml:"singleton"`
	Speed       *int     `yaml:"speed"`
	Cooldown    *int     `yaml:"cooldown"`
	Orientation string   `yaml:"orientation"`
	Stype       string   `yaml:"stype"`
	Prob        *float64 `yaml:"prob"`
	Total       *int     `yaml:"total"`
	Limit       *int     `yaml:"limit"`
	Value       *int     `yaml:"value"`
	Resource    string   `yaml:"resource"`
	Ammo        string   `yaml:"ammo"`

	AudioMove string `yaml:"audio_move"`
	AudioUse  string `yaml:"audio_use"`
	Beacon    string `yaml:"beacon"`

	Children []SpriteSpec `yaml:"children"`
}

// inherit fills every unset parameter of s from parent.
func (s *SpriteSpec) inherit(parent *SpriteSpec) {
	if parent == nil {
		return
	}
	if s.Class == "" {
		s.Class = parent.Class
	}
	if s.Singleton == nil {
		s.Singleton = parent.Singleton
	}
	if s.Speed == nil {
		s.Speed = parent.Speed
	}
	if s.Cooldown == nil {
		s.Cooldown = parent.Cooldown
	}
	if s.Orientation == "" {
		s.Orientation = parent.Orientation
	}
	if s.Stype == "" {
		s.Stype = parent.Stype
	}
	if s.Prob == nil {
		s.Prob = parent.Prob
	}
	if s.Total == nil {
		s.Total = parent.Total
	}
	if s.Limit == nil {
		s.Limit = parent.Limit
	}
	if s.Value == nil {
		s.Value = parent.Value
	}
	if s.Resource == "" {
		s.Resource = parent.Resource
	}
	if s.Ammo == "" {
		s.Ammo = parent.Ammo
	}
	if s.AudioMove == "" {
		s.AudioMove = parent.AudioMove
	}
	if s.AudioUse == "" {
		s.AudioUse = parent.AudioUse
	}
	if s.Beacon == "" {
		s.Beacon = parent.Beacon
	}
}

// Names is a list of sprite names written either as a single string or as a
// YAML sequence.
type Names []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (n *Names) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*n = Names{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*n = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a sprite name or a list of names", value.Line)
	}
}

// EffectSpec is the part shared by collision, edge and timed rules.
type EffectSpec struct {
	Effect       string    `yaml:"effect"`
	Scores       []float64 `yaml:"scores"`
	Counters     []int     `yaml:"counters"`
	CountersElse []int     `yaml:"counters_else"`
	Audio        string    `yaml:"audio"`
	Batch        bool      `yaml:"batch"`
	Disabled     bool      `yaml:"disabled"`
	Stype        string    `yaml:"stype"`
	Stype2       string    `yaml:"stype2"`
	Resource     string    `yaml:"resource"`
	Value        int       `yaml:"value"`
	Limit        int       `yaml:"limit"`
	Shield       string    `yaml:"shield"` // shield_from: the effect kind to block
}

// InteractionSpec declares effects between every A and every B. A B of EOS
// makes it an edge-of-screen rule for A.
type InteractionSpec struct {
	A          Names `yaml:"a"`
	B          Names `yaml:"b"`
	EffectSpec `yaml:",inline"`
}

// TimedSpec declares an effect that fires every Timer ticks. Without an owner
// the effect is global.
type TimedSpec struct {
	Owner      string `yaml:"owner"`
	Timer      int    `yaml:"timer"`
	Repeating  bool   `yaml:"repeating"`
	EffectSpec `yaml:",inline"`
}

// TerminationSpec declares one end condition.
type TerminationSpec struct {
	Kind   string    `yaml:"kind"`
	Stypes Names     `yaml:"stypes"`
	Limit  int       `yaml:"limit"`
	Win    []bool    `yaml:"win"`
	Bonus  []float64 `yaml:"bonus"`

	// timeout
	UseCounter bool  `yaml:"use_counter"`
	Compare    bool  `yaml:"compare"`
	Limits     []int `yaml:"limits"`

	// counter
	Counter int    `yaml:"counter"`
	Op      string `yaml:"op"`
	Value   int    `yaml:"value"`
}
