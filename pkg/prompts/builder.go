package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbecker42/intrigue-engine/pkg/chat"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// Builder constructs the ordered message sequence for one generation
// turn using a fluent interface. Build is pure with respect to its
// inputs: the same params, context and newStory flag always yield
// byte-identical messages.
type Builder struct {
	params   story.Params
	context  *Context
	newStory bool
}

// New creates a prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithParams sets the player-selected story parameters.
func (b *Builder) WithParams(p story.Params) *Builder {
	b.params = p
	return b
}

// WithContext sets the assembled narrative context for the turn.
func (b *Builder) WithContext(ctx *Context) *Builder {
	b.context = ctx
	return b
}

// WithNewStory marks the turn as the opening of a new story line.
func (b *Builder) WithNewStory(newStory bool) *Builder {
	b.newStory = newStory
	return b
}

// Build assembles the message sequence: system voice block, user
// parameter block, continuation context (when continuing), and the
// output-schema instruction last.
func (b *Builder) Build() ([]chat.Message, error) {
	if b.context == nil {
		return nil, fmt.Errorf("context is required")
	}
	if err := b.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	messages := make([]chat.Message, 0, 5)
	messages = append(messages, chat.Message{
		Role:    chat.RoleSystem,
		Content: b.systemBlock(),
	})
	messages = append(messages, chat.Message{
		Role:    chat.RoleUser,
		Content: b.paramsBlock(),
	})

	if !b.newStory {
		messages = append(messages, chat.Message{
			Role:    chat.RoleAssistant,
			Content: b.contextBlock(),
		})
		messages = append(messages, chat.Message{
			Role:    chat.RoleUser,
			Content: b.choiceBlock(),
		})
	}

	messages = append(messages, chat.Message{
		Role:    chat.RoleUser,
		Content: OutputSchemaInstruction,
	})
	return messages, nil
}

func (b *Builder) systemBlock() string {
	r := b.params.Resolve()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(BaseSystemPrompt, r.NarrativeStyle, r.Mood))
	if b.newStory {
		sb.WriteString(NewStoryRules)
	} else {
		sb.WriteString(ContinuationRules)
	}
	return sb.String()
}

func (b *Builder) paramsBlock() string {
	r := b.params.Resolve()

	protagonist := ProtagonistAnonymous
	if b.params.ProtagonistName != "" && b.params.ProtagonistGender != "" {
		protagonist = fmt.Sprintf(ProtagonistNamed, b.params.ProtagonistName, b.params.ProtagonistGender)
	}

	var sb strings.Builder
	sb.WriteString("Primary Conflict: " + r.Conflict + "\n")
	sb.WriteString("Setting: " + r.Setting + "\n")
	sb.WriteString("Narrative Style: " + r.NarrativeStyle + "\n")
	sb.WriteString("Mood: " + r.Mood + "\n\n")
	sb.WriteString(protagonist)
	return sb.String()
}

// contextBlock renders the previous story state for a continuation
// turn. Maps are rendered in sorted key order to keep output
// deterministic.
func (b *Builder) contextBlock() string {
	ctx := b.context

	var sb strings.Builder
	sb.WriteString("Previous story context: " + ctx.PreviousStoryText + "\n")

	if len(ctx.ActiveMissions) > 0 {
		sb.WriteString("\nActive missions:\n")
		for _, m := range ctx.ActiveMissions {
			sb.WriteString(fmt.Sprintf("- %s: %s (progress %d%%)", m.Title, m.Objective, m.Progress))
			if m.TargetLocation != "" {
				sb.WriteString(", target location: " + m.TargetLocation)
			}
			if m.ReturnLocation != "" {
				sb.WriteString(", return to: " + m.ReturnLocation)
			}
			if m.Deadline != "" {
				sb.WriteString(", deadline: " + m.Deadline)
			}
			sb.WriteString("\n")
		}
	}

	if len(ctx.Relationships) > 0 {
		sb.WriteString("\nCharacter relationships:\n")
		rels := make([]RelationshipSummary, len(ctx.Relationships))
		copy(rels, ctx.Relationships)
		sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })
		for _, r := range rels {
			sb.WriteString(fmt.Sprintf("- %s: %s (%+d)\n", r.Name, RelationshipTier(r.Strength), r.Strength))
		}
	}

	sb.WriteString("\nPlayer currency balances: " + formatBalances(ctx.CurrencyBalances) + "\n")
	sb.WriteString(fmt.Sprintf("Player level: %d\n", ctx.Level))
	sb.WriteString("Current in-world time: " + ctx.CurrentTime + "\n")
	sb.WriteString("Current location: " + ctx.CurrentLocation + "\n")
	sb.WriteString("\nRespect travel-time plausibility when the story moves between locations, and remind the player of approaching mission deadlines.")
	return sb.String()
}

func (b *Builder) choiceBlock() string {
	choice := b.context.UserChoice
	if custom, ok := strings.CutPrefix(choice, CustomChoicePrefix); ok {
		return fmt.Sprintf("Player entered a custom choice: %s\n%s",
			strings.TrimSpace(custom), ContinueCustomChoiceInstruction)
	}
	return fmt.Sprintf("Player chose: %s\n%s", choice, ContinueChoiceInstruction)
}

func formatBalances(balances map[string]int) string {
	if len(balances) == 0 {
		return "(none)"
	}
	currencies := make([]string, 0, len(balances))
	for c := range balances {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	parts := make([]string, 0, len(currencies))
	for _, c := range currencies {
		parts = append(parts, fmt.Sprintf("%s %d", c, balances[c]))
	}
	return strings.Join(parts, ", ")
}
