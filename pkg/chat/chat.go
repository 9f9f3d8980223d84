package chat

const (
	RoleUser      = "user"      // the player
	RoleAssistant = "assistant" // generated narrative
	RoleSystem    = "system"    // narrative voice and rules
)

// Message is a single role-tagged block in the sequence sent to the
// generation backend. The shape matches the chat-completion APIs of
// the supported providers.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}
