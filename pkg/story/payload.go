package story

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an int that tolerates JSON numbers arriving as strings.
// Generation backends are inconsistent about quoting amounts.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return fmt.Errorf("invalid integer value %q", s)
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// Money is a single-currency amount used for choice costs and mission
// rewards.
type Money struct {
	Currency string  `json:"currency"`
	Amount   FlexInt `json:"amount"`
}

// Requirements projects the amount into the per-currency map shape
// used by choice requests and balance checks.
func (m Money) Requirements() map[string]int {
	if m.Currency == "" || m.Amount == 0 {
		return nil
	}
	return map[string]int{m.Currency: m.Amount.Int()}
}

// Choice is one of the options offered at the end of a story node.
type Choice struct {
	Text           string `json:"text"`
	Consequence    string `json:"consequence,omitempty"`
	Type           string `json:"type,omitempty"` // mission-advancing, risky, alternative
	Cost           *Money `json:"cost,omitempty"`
	TimeChange     string `json:"timeChange,omitempty"`
	LocationChange string `json:"locationChange,omitempty"`
	MissionImpact  string `json:"mission_impact,omitempty"`
}

// CharacterRef identifies a character featured in a story node. The
// backend may return plain names or {name, role} objects; both decode
// into this type.
type CharacterRef struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

func (c *CharacterRef) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		c.Name = name
		return nil
	}
	type alias CharacterRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CharacterRef(a)
	return nil
}

// MissionBlock is the mission description embedded in a generated
// payload. It maps 1:1 onto a Mission record when activated.
type MissionBlock struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Giver          string `json:"giver,omitempty"`
	GiverID        string `json:"giver_id,omitempty"`
	Target         string `json:"target,omitempty"`
	TargetID       string `json:"target_id,omitempty"`
	TargetLocation string `json:"target_location,omitempty"`
	ReturnLocation string `json:"return_location,omitempty"`
	Objective      string `json:"objective"`
	Reward         Money  `json:"reward"`
	Deadline       string `json:"deadline,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

// payloadKnownKeys are the top-level keys owned by the strict schema.
// Anything else in a backend reply is preserved opaquely in Extra.
var payloadKnownKeys = []string{
	"title", "text", "currentTime", "currentLocation",
	"choices", "characters", "mission",
}

// Payload is the structured narrative returned by the generation
// backend for one turn. Required keys: title, text, choices,
// characters, mission.
type Payload struct {
	Title           string         `json:"title"`
	Text            string         `json:"text"`
	CurrentTime     string         `json:"currentTime,omitempty"`
	CurrentLocation string         `json:"currentLocation,omitempty"`
	Choices         []Choice       `json:"choices"`
	Characters      []CharacterRef `json:"characters"`
	Mission         *MissionBlock  `json:"mission"`

	// Extra holds unknown top-level fields from the backend reply.
	// They round-trip through persistence but are never interpreted.
	Extra map[string]json.RawMessage `json:"-"`
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	type alias Payload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range payloadKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*p = Payload(a)
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	type alias Payload
	known, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Validate checks the required top-level keys of the strict schema.
func (p *Payload) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("payload missing required key: title")
	case p.Text == "":
		return fmt.Errorf("payload missing required key: text")
	case p.Choices == nil:
		return fmt.Errorf("payload missing required key: choices")
	case p.Characters == nil:
		return fmt.Errorf("payload missing required key: characters")
	case p.Mission == nil:
		return fmt.Errorf("payload missing required key: mission")
	}
	return nil
}
