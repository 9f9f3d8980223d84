package story

import "fmt"

// Params carries the player-selected story parameters for a
// generation turn. Custom values, when present, take precedence over
// the preset selections.
type Params struct {
	Conflict       string `json:"conflict"`
	Setting        string `json:"setting"`
	NarrativeStyle string `json:"narrativeStyle"`
	Mood           string `json:"mood"`

	CustomConflict  string `json:"customConflict,omitempty"`
	CustomSetting   string `json:"customSetting,omitempty"`
	CustomNarrative string `json:"customNarrative,omitempty"`
	CustomMood      string `json:"customMood,omitempty"`

	ProtagonistName   string `json:"protagonistName,omitempty"`
	ProtagonistGender string `json:"protagonistGender,omitempty"`
}

// Resolved is the effective parameter set after custom overrides are
// applied. These are the values persisted on the Story record.
type Resolved struct {
	Conflict       string `json:"conflict"`
	Setting        string `json:"setting"`
	NarrativeStyle string `json:"narrativeStyle"`
	Mood           string `json:"mood"`
}

// Resolve applies custom overrides field by field.
func (p Params) Resolve() Resolved {
	r := Resolved{
		Conflict:       p.Conflict,
		Setting:        p.Setting,
		NarrativeStyle: p.NarrativeStyle,
		Mood:           p.Mood,
	}
	if p.CustomConflict != "" {
		r.Conflict = p.CustomConflict
	}
	if p.CustomSetting != "" {
		r.Setting = p.CustomSetting
	}
	if p.CustomNarrative != "" {
		r.NarrativeStyle = p.CustomNarrative
	}
	if p.CustomMood != "" {
		r.Mood = p.CustomMood
	}
	return r
}

// Validate checks that each parameter resolves to a non-empty value.
func (p Params) Validate() error {
	r := p.Resolve()
	switch {
	case r.Conflict == "":
		return fmt.Errorf("conflict is required")
	case r.Setting == "":
		return fmt.Errorf("setting is required")
	case r.NarrativeStyle == "":
		return fmt.Errorf("narrativeStyle is required")
	case r.Mood == "":
		return fmt.Errorf("mood is required")
	}
	return nil
}
