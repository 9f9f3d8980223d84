package game

import (
	"math"
	"time"
)

// Starting currency allocation for a new player.
func DefaultCurrencyBalances() map[string]int {
	return map[string]int{
		"💎": 500,
		"💷": 5000,
		"💶": 5000,
		"💴": 5000,
		"💵": 5000,
	}
}

// LevelUpBonusCurrency is credited when a player levels up, at
// 50 × new level.
const LevelUpBonusCurrency = "💶"

// ChoiceRecord is one entry in a player's choice history.
type ChoiceRecord struct {
	ChoiceText string    `json:"choiceText"`
	StoryID    int64     `json:"storyId"`
	Timestamp  time.Time `json:"timestamp"`
}

// RelationshipChange records one adjustment to an encounter's
// relationship level.
type RelationshipChange struct {
	Change    int       `json:"change"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Encounter tracks a player's standing with one character.
type Encounter struct {
	Name              string               `json:"name"`
	RelationshipLevel int                  `json:"relationshipLevel"`
	FirstEncounter    time.Time            `json:"firstEncounter"`
	LastEncounter     time.Time            `json:"lastEncounter"`
	Encounters        int                  `json:"encountersCount"`
	History           []RelationshipChange `json:"relationshipHistory,omitempty"`
}

// UserProgress is the singleton per-user game state: currencies,
// experience, mission lists, encountered characters and choice
// history. It is read and rewritten once per reconciled turn.
type UserProgress struct {
	UserID                string                `json:"userId"`
	Level                 int                   `json:"level"`
	ExperiencePoints      int                   `json:"experiencePoints"`
	CurrencyBalances      map[string]int        `json:"currencyBalances"`
	ActiveMissionIDs      []int64               `json:"activeMissionIds"`
	CompletedMissionIDs   []int64               `json:"completedMissionIds"`
	FailedMissionIDs      []int64               `json:"failedMissionIds"`
	EncounteredCharacters map[string]*Encounter `json:"encounteredCharacters"`
	ChoiceHistory         []ChoiceRecord        `json:"choiceHistory"`
	CurrentStoryID        int64                 `json:"currentStoryId,omitempty"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// NewProgress returns the documented default progress for a player
// with no prior state: level 1, starting currencies, nothing else.
func NewProgress(userID string) *UserProgress {
	return &UserProgress{
		UserID:                userID,
		Level:                 1,
		CurrencyBalances:      DefaultCurrencyBalances(),
		ActiveMissionIDs:      make([]int64, 0),
		CompletedMissionIDs:   make([]int64, 0),
		FailedMissionIDs:      make([]int64, 0),
		EncounteredCharacters: make(map[string]*Encounter),
		ChoiceHistory:         make([]ChoiceRecord, 0),
		UpdatedAt:             time.Now().UTC(),
	}
}

// CanAfford checks the given requirements against current balances.
// On failure it returns the first currency that falls short.
func (p *UserProgress) CanAfford(requirements map[string]int) (string, bool) {
	for currency, amount := range requirements {
		if p.CurrencyBalances[currency] < amount {
			return currency, false
		}
	}
	return "", true
}

// Deduct subtracts the requirements from balances. Callers must have
// verified affordability first; Deduct never drives a balance
// negative and reports false without mutating if it would.
func (p *UserProgress) Deduct(requirements map[string]int) bool {
	if _, ok := p.CanAfford(requirements); !ok {
		return false
	}
	if p.CurrencyBalances == nil {
		p.CurrencyBalances = make(map[string]int)
	}
	for currency, amount := range requirements {
		p.CurrencyBalances[currency] -= amount
	}
	return true
}

// AddCurrency credits an amount to one currency balance.
func (p *UserProgress) AddCurrency(currency string, amount int) {
	if p.CurrencyBalances == nil {
		p.CurrencyBalances = make(map[string]int)
	}
	p.CurrencyBalances[currency] += amount
}

// AddExperience adds points and applies the leveling formula
// level = 1 + floor(sqrt(xp/100)). A level-up credits the bonus
// currency at 50 × new level. Returns whether the player leveled up.
func (p *UserProgress) AddExperience(points int) bool {
	p.ExperiencePoints += points

	newLevel := 1 + int(math.Sqrt(float64(p.ExperiencePoints)/100))
	if newLevel <= p.Level {
		return false
	}

	p.Level = newLevel
	p.AddCurrency(LevelUpBonusCurrency, 50*newLevel)
	return true
}

// RecordChoice appends to the choice history and moves the current
// story pointer to the new node.
func (p *UserProgress) RecordChoice(choiceText string, storyID int64) {
	p.ChoiceHistory = append(p.ChoiceHistory, ChoiceRecord{
		ChoiceText: choiceText,
		StoryID:    storyID,
		Timestamp:  time.Now().UTC(),
	})
	p.CurrentStoryID = storyID
}

// EncounterCharacter records meeting a character. First encounters
// start at relationship level 0; repeats bump the counter and
// last-seen time.
func (p *UserProgress) EncounterCharacter(characterID, name string) {
	if p.EncounteredCharacters == nil {
		p.EncounteredCharacters = make(map[string]*Encounter)
	}
	now := time.Now().UTC()
	if enc, ok := p.EncounteredCharacters[characterID]; ok {
		enc.Encounters++
		enc.LastEncounter = now
		return
	}
	p.EncounteredCharacters[characterID] = &Encounter{
		Name:           name,
		FirstEncounter: now,
		LastEncounter:  now,
		Encounters:     1,
	}
}

// ChangeRelationship adjusts the relationship level with an already
// encountered character. Unknown characters are ignored and reported
// as false.
func (p *UserProgress) ChangeRelationship(characterID string, change int, reason string) bool {
	enc, ok := p.EncounteredCharacters[characterID]
	if !ok {
		return false
	}
	enc.RelationshipLevel += change
	if reason != "" {
		enc.History = append(enc.History, RelationshipChange{
			Change:    change,
			Reason:    reason,
			Timestamp: time.Now().UTC(),
		})
	}
	return true
}

// RemoveActiveMission drops a mission id from the active list.
// Reports whether it was present.
func (p *UserProgress) RemoveActiveMission(missionID int64) bool {
	for i, id := range p.ActiveMissionIDs {
		if id == missionID {
			p.ActiveMissionIDs = append(p.ActiveMissionIDs[:i], p.ActiveMissionIDs[i+1:]...)
			return true
		}
	}
	return false
}
