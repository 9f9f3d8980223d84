package story

import "time"

// Story is one immutable node in a branching narrative. A new record
// is created per generation turn; continuity comes from feeding the
// previous node's text back into context, never from mutating a node.
type Story struct {
	ID              int64    `json:"id"`
	UserID          string   `json:"userId"`
	Conflict        string   `json:"conflict"`
	Setting         string   `json:"setting"`
	NarrativeStyle  string   `json:"narrativeStyle"`
	Mood            string   `json:"mood"`
	Payload         *Payload `json:"generatedPayload"`
	CurrentTime     string   `json:"currentTime,omitempty"`
	CurrentLocation string   `json:"currentLocation,omitempty"`
	ParentStoryID   int64    `json:"parentStoryId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Text returns the narrative text of the node, or empty when the
// payload is absent.
func (s *Story) Text() string {
	if s == nil || s.Payload == nil {
		return ""
	}
	return s.Payload.Text
}
