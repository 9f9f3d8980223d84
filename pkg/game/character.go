package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	CharacterStatusActive   = "active"
	CharacterStatusDeceased = "deceased"
	CharacterStatusMissing  = "missing"
)

var titleCaser = cases.Title(language.English)

// CharacterKey derives the canonical character id from a display
// name: lowercase with underscores. "Dmitri  Volkov" → "dmitri_volkov".
func CharacterKey(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "_")
}

// DisplayName normalizes a character name for presentation.
func DisplayName(name string) string {
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// Relationship is one directed edge in a character's relationship
// network. Strength runs -10..10.
type Relationship struct {
	Type        string    `json:"type"`
	Strength    int       `json:"strength"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// EvolutionEntry is one append-only log record of a character change.
type EvolutionEntry struct {
	Type      string    `json:"type"` // trait_added, role_changed, story_interaction, ...
	Detail    string    `json:"detail,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PlotContribution records a character's involvement in a plot point.
// Importance runs 1..5.
type PlotContribution struct {
	PlotPoint  string    `json:"plotPoint"`
	Importance int       `json:"importance"`
	Timestamp  time.Time `json:"timestamp"`
}

// CharacterEvolution tracks how one character develops across a
// player's stories. Keyed uniquely by (UserID, CharacterID). Updates
// are append-only merges; history is never discarded on re-encounter.
type CharacterEvolution struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	CharacterID string `json:"characterId"`
	StoryID     int64  `json:"storyId,omitempty"`

	Status string `json:"status"`
	Role   string `json:"role,omitempty"`

	EvolvedTraits       []string                `json:"evolvedTraits"`
	RelationshipNetwork map[string]Relationship `json:"relationshipNetwork"`
	PlotContributions   []PlotContribution      `json:"plotContributions"`
	EvolutionLog        []EvolutionEntry        `json:"evolutionLog"`

	FirstAppearance time.Time `json:"firstAppearance"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// NewCharacterEvolution initializes a first-encounter record with an
// empty evolution log and neutral relationships.
func NewCharacterEvolution(userID, characterID string, storyID int64, role string) *CharacterEvolution {
	now := time.Now().UTC()
	return &CharacterEvolution{
		ID:                  uuid.NewString(),
		UserID:              userID,
		CharacterID:         characterID,
		StoryID:             storyID,
		Status:              CharacterStatusActive,
		Role:                role,
		EvolvedTraits:       make([]string, 0),
		RelationshipNetwork: make(map[string]Relationship),
		PlotContributions:   make([]PlotContribution, 0),
		EvolutionLog:        make([]EvolutionEntry, 0),
		FirstAppearance:     now,
		LastUpdated:         now,
	}
}

func (ce *CharacterEvolution) touch() {
	ce.LastUpdated = time.Now().UTC()
}

// AddTrait appends a newly developed trait. Duplicates are ignored.
func (ce *CharacterEvolution) AddTrait(trait, reason string) bool {
	for _, t := range ce.EvolvedTraits {
		if t == trait {
			return false
		}
	}
	ce.EvolvedTraits = append(ce.EvolvedTraits, trait)
	ce.EvolutionLog = append(ce.EvolutionLog, EvolutionEntry{
		Type:      "trait_added",
		Detail:    trait,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	ce.touch()
	return true
}

// UpdateRole changes the character's narrative role and logs the
// transition.
func (ce *CharacterEvolution) UpdateRole(newRole, reason string) {
	old := ce.Role
	ce.Role = newRole
	ce.EvolutionLog = append(ce.EvolutionLog, EvolutionEntry{
		Type:      "role_changed",
		Detail:    old + " → " + newRole,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	ce.touch()
}

// SetRelationship adds or updates the directed relationship with
// another character.
func (ce *CharacterEvolution) SetRelationship(targetID, relType string, strength int) {
	if ce.RelationshipNetwork == nil {
		ce.RelationshipNetwork = make(map[string]Relationship)
	}
	ce.RelationshipNetwork[targetID] = Relationship{
		Type:        relType,
		Strength:    strength,
		LastUpdated: time.Now().UTC(),
	}
	ce.touch()
}

// AddPlotContribution records the character's part in a plot point.
func (ce *CharacterEvolution) AddPlotContribution(plotPoint string, importance int) {
	if importance < 1 {
		importance = 1
	}
	if importance > 5 {
		importance = 5
	}
	ce.PlotContributions = append(ce.PlotContributions, PlotContribution{
		PlotPoint:  plotPoint,
		Importance: importance,
		Timestamp:  time.Now().UTC(),
	})
	ce.touch()
}

// RecordInteraction appends a story-interaction entry for a
// re-encounter. Context is truncated to a preview.
func (ce *CharacterEvolution) RecordInteraction(storyID int64, context string) {
	const previewLen = 100
	if len(context) > previewLen {
		cut := previewLen
		for cut > 0 && !utf8.RuneStart(context[cut]) {
			cut--
		}
		context = context[:cut] + "..."
	}
	ce.StoryID = storyID
	ce.EvolutionLog = append(ce.EvolutionLog, EvolutionEntry{
		Type:      "story_interaction",
		Detail:    context,
		Timestamp: time.Now().UTC(),
	})
	ce.touch()
}
