package story

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"title": "The Monaco Gambit",
	"text": "You stride into the casino as alarms begin to wail.",
	"currentTime": "23:40",
	"currentLocation": "Monaco Casino",
	"choices": [
		{
			"text": "Bribe the pit boss",
			"consequence": "He may remember your face",
			"type": "mission-advancing",
			"cost": {"currency": "💵", "amount": 500},
			"timeChange": "30 minutes pass",
			"locationChange": "Casino vault"
		}
	],
	"characters": ["Vesper Moreau", {"name": "Dmitri Volkov", "role": "villain"}],
	"mission": {
		"title": "The Volkov Ledger",
		"description": "Steal the ledger before dawn.",
		"giver": "Director Hale",
		"target": "Dmitri Volkov",
		"target_location": "Casino vault",
		"return_location": "Paris Office",
		"objective": "Steal the ledger",
		"reward": {"currency": "💵", "amount": "15,000"},
		"deadline": "Before sunrise"
	},
	"tone_notes": {"pacing": "frantic"}
}`

func TestPayloadUnmarshal(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &p))

	assert.Equal(t, "The Monaco Gambit", p.Title)
	assert.Equal(t, "23:40", p.CurrentTime)
	require.Len(t, p.Choices, 1)
	require.NotNil(t, p.Choices[0].Cost)
	assert.Equal(t, 500, p.Choices[0].Cost.Amount.Int())

	// Character refs accept both strings and objects.
	require.Len(t, p.Characters, 2)
	assert.Equal(t, "Vesper Moreau", p.Characters[0].Name)
	assert.Equal(t, "Dmitri Volkov", p.Characters[1].Name)
	assert.Equal(t, "villain", p.Characters[1].Role)

	// Quoted reward amounts with separators still parse.
	require.NotNil(t, p.Mission)
	assert.Equal(t, 15000, p.Mission.Reward.Amount.Int())

	require.NoError(t, p.Validate())
}

func TestPayloadExtraPassthrough(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(samplePayload), &p))

	require.Contains(t, p.Extra, "tone_notes")

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var round map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &round))
	assert.Contains(t, round, "tone_notes")
	assert.JSONEq(t, `{"pacing":"frantic"}`, string(round["tone_notes"]))
}

func TestPayloadValidateMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"text":"t","choices":[],"characters":[],"mission":{}}`, "title"},
		{"missing text", `{"title":"t","choices":[],"characters":[],"mission":{}}`, "text"},
		{"missing choices", `{"title":"t","text":"t","characters":[],"mission":{}}`, "choices"},
		{"missing characters", `{"title":"t","text":"t","choices":[],"mission":{}}`, "characters"},
		{"missing mission", `{"title":"t","text":"t","choices":[],"characters":[]}`, "mission"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParamsResolveCustomOverrides(t *testing.T) {
	p := Params{
		Conflict:       "Corporate espionage",
		Setting:        "Paris Office",
		NarrativeStyle: "Classic Bond film",
		Mood:           "Cool and stylish",
		CustomSetting:  "Undersea Research Dome",
	}

	r := p.Resolve()
	assert.Equal(t, "Corporate espionage", r.Conflict)
	assert.Equal(t, "Undersea Research Dome", r.Setting)
	assert.Equal(t, "Classic Bond film", r.NarrativeStyle)
}

func TestParamsValidate(t *testing.T) {
	p := Params{Conflict: "x", Setting: "y", NarrativeStyle: "z"}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mood")

	p.CustomMood = "Grim"
	assert.NoError(t, p.Validate())
}

func TestDefaultOptionsShape(t *testing.T) {
	opts := DefaultOptions()
	assert.Len(t, opts.Conflicts, 8)
	assert.Len(t, opts.Settings, 8)
	assert.Len(t, opts.NarrativeStyles, 6)
	assert.Len(t, opts.Moods, 8)

	out, err := json.Marshal(opts.Conflicts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `["🤵","Double agent exposed"]`, string(out))
}
