package story

// Option is an [emoji, label] pair presented to the player.
// It marshals as a two-element JSON array.
type Option [2]string

// Emoji returns the display emoji for the option.
func (o Option) Emoji() string { return o[0] }

// Label returns the display label for the option.
func (o Option) Label() string { return o[1] }

// Options is the catalog of selectable story parameters, served by
// GET /v1/options. Order is part of the contract.
type Options struct {
	Conflicts       []Option `json:"conflicts"`
	Settings        []Option `json:"settings"`
	NarrativeStyles []Option `json:"narrativeStyles"`
	Moods           []Option `json:"moods"`
}

// DefaultOptions returns the built-in story parameter catalog.
func DefaultOptions() Options {
	return Options{
		Conflicts: []Option{
			{"🤵", "Double agent exposed"},
			{"💼", "Corporate espionage"},
			{"🧪", "Bioweapon heist"},
			{"💰", "Trillion-dollar ransom"},
			{"🔍", "Assassination conspiracy"},
			{"🕵️", "Government overthrow"},
			{"🌌", "Space station takeover"},
			{"🧠", "Mind control experiment"},
		},
		Settings: []Option{
			{"🗼", "Paris Office"},
			{"🏝️", "Private Luxury Island"},
			{"🏙️", "Dubai Mega-Skyscraper"},
			{"🚢", "Orbital Cruise Liner"},
			{"❄️", "Arctic Research Base"},
			{"🏰", "Monaco Casino"},
			{"🏜️", "Sahara Desert Compound"},
			{"🌋", "Volcanic Lair"},
		},
		NarrativeStyles: []Option{
			{"😎", "Gen Z Teenage Drama"},
			{"🔥", "Steamy romance novel"},
			{"🤪", "Absurdist comedy"},
			{"🎭", "Melodramatic soap opera"},
			{"🎬", "High-budget action movie"},
			{"🤵", "Classic Bond film"},
		},
		Moods: []Option{
			{"🍸", "Sexy and seductive"},
			{"💥", "Explosive and chaotic"},
			{"😂", "Ridiculously over-the-top"},
			{"😱", "Suspenseful and betrayal-filled"},
			{"🌟", "Glamorous and extravagant"},
			{"🥂", "Party-focused hedonism"},
			{"🔫", "Action-packed gunfights"},
			{"🕶️", "Cool and stylish"},
		},
	}
}
