package prompts

// MissionSummary is the prompt-facing projection of an active
// mission.
type MissionSummary struct {
	Title          string `json:"title"`
	Objective      string `json:"objective"`
	Progress       int    `json:"progress"`
	TargetLocation string `json:"targetLocation,omitempty"`
	ReturnLocation string `json:"returnLocation,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
}

// RelationshipSummary is the prompt-facing projection of the player's
// standing with one character.
type RelationshipSummary struct {
	Name     string `json:"name"`
	Strength int    `json:"strength"`
}

// Context is the ephemeral narrative context assembled fresh for each
// turn. It is never persisted or cached across turns.
type Context struct {
	PreviousStoryText string                `json:"previousStoryText,omitempty"`
	UserChoice        string                `json:"userChoice,omitempty"`
	Relationships     []RelationshipSummary `json:"characterRelationships,omitempty"`
	ActiveMissions    []MissionSummary      `json:"activeMissions,omitempty"`
	CurrencyBalances  map[string]int        `json:"currencyBalances"`
	Level             int                   `json:"experienceLevel"`
	CurrentTime       string                `json:"currentTime"`
	CurrentLocation   string                `json:"currentLocation"`
}

// Start-of-game defaults, used only when no story node exists yet.
const (
	DefaultStartTime     = "Day 1, 08:00"
	DefaultStartLocation = "Agency safehouse"
)
