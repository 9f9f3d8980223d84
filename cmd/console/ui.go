package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kbecker42/intrigue-engine/internal/engine"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

const PlaceHolderText = "Pick a choice number, or type your own action..."

// Setup wizard steps, in selection order.
const (
	stepConflict = iota
	stepSetting
	stepStyle
	stepMood
	stepCount
)

var stepTitles = [stepCount]string{
	"Choose Your Conflict",
	"Choose Your Setting",
	"Choose Your Narrative Style",
	"Choose Your Mood",
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	storyViewport viewport.Model
	metaViewport  viewport.Model
	input         textinput.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool

	// Last committed turn and progress snapshot
	result   *engine.TurnResult
	progress *game.UserProgress

	// Setup wizard state
	showSetupModal bool
	loadingOptions bool
	options        *story.Options
	setupStep      int
	selected       [stepCount]int
	params         story.Params

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type optionsLoadedMsg struct {
	options *story.Options
	err     error
}

type turnMsg struct {
	result *engine.TurnResult
	err    error
}

type missionResolvedMsg struct {
	outcome *engine.MissionOutcome
	err     error
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	episodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narrativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	costStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Focus()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 500
	ti.Width = 50

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		input:          ti,
		storyViewport:  storyVp,
		metaViewport:   metaVp,
		ready:          false,
		showSetupModal: true,
		loadingOptions: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadOptions()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showSetupModal {
		return m.updateSetupModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeStoryContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.input.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			return m.submitChoice(input)
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeStoryContent()
			currentContent := m.storyViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.storyViewport.SetContent(currentContent + errorMsg)
		} else {
			m.err = nil
			m.result = msg.result
			m.progress = msg.result.Progress
			m.writeStoryContent()
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.storyViewport.GotoBottom()
		return m, nil

	case missionResolvedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.progress = msg.outcome.Progress
			m.metaViewport.SetContent(m.writeMetadata())
			note := fmt.Sprintf("Mission %q %s.", msg.outcome.Mission.Title, msg.outcome.Mission.Status)
			if msg.outcome.XPAwarded > 0 {
				note += fmt.Sprintf(" +%d XP, +%d %s.",
					msg.outcome.XPAwarded, msg.outcome.Mission.RewardAmount, msg.outcome.Mission.RewardCurrency)
			}
			if msg.outcome.LeveledUp {
				note += fmt.Sprintf(" Level up! You are now level %d.", msg.outcome.Progress.Level)
			}
			currentContent := m.storyViewport.View()
			m.storyViewport.SetContent(currentContent + loadingStyle.Render(note) + "\n\n")
			m.storyViewport.GotoBottom()
		}
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
	}

	m.input, tiCmd = m.input.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.input.Width = storyWidth - 8
	m.ready = true
}

// submitChoice interprets the input line: a bare number picks one of
// the offered choices, anything else becomes a custom action.
func (m ConsoleUI) submitChoice(input string) (tea.Model, tea.Cmd) {
	choices := m.currentChoices()

	text := input
	custom := true
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		text = choices[n-1].Text
		custom = false
	}

	m.input.Reset()
	m.loading = true
	m.progressTick = 0
	m.writeStoryContent()

	return m, tea.Batch(m.applyChoiceCmd(text, custom), progressTick())
}

func (m ConsoleUI) currentChoices() []story.Choice {
	if m.result == nil || m.result.Story == nil || m.result.Story.Payload == nil {
		return nil
	}
	return m.result.Story.Payload.Choices
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimSpace(input))
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /missions - Show active missions
• /complete <id> - Resolve a mission as completed
• Ctrl+C - Quit

How to play:
• Enter a choice number to pick one of the offered choices
• Type anything else to improvise your own action
`
		currentContent := m.storyViewport.View()
		m.storyViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.storyViewport.GotoBottom()

	case "/missions":
		var text strings.Builder
		text.WriteString(titleStyle.Render("Active Missions:") + "\n")
		if m.progress == nil || len(m.progress.ActiveMissionIDs) == 0 {
			text.WriteString("No active missions.\n")
		} else {
			for _, id := range m.progress.ActiveMissionIDs {
				text.WriteString(fmt.Sprintf("• Mission #%d", id))
				if m.result != nil && m.result.NewMission != nil && m.result.NewMission.ID == id {
					text.WriteString(": " + m.result.NewMission.Title)
				}
				text.WriteString("\n")
			}
		}
		text.WriteString("\n")
		currentContent := m.storyViewport.View()
		m.storyViewport.SetContent(currentContent + text.String())
		m.storyViewport.GotoBottom()

	case "/complete":
		if len(fields) != 2 {
			break
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			break
		}
		m.input.Reset()
		m.loading = true
		return m, tea.Batch(m.completeMissionCmd(id), progressTick())
	}

	m.input.Reset()
	return m, nil
}

// writeStoryContent renders the current story node for the viewport
// width.
func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 20 {
		storyWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("INTRIGUE ENGINE") + "\n\n")

	if m.result == nil || m.result.Story == nil || m.result.Story.Payload == nil {
		content.WriteString("Your story is about to begin.\n")
		m.storyViewport.SetContent(content.String())
		return
	}

	payload := m.result.Story.Payload
	content.WriteString(episodeStyle.Render(payload.Title) + "\n")
	meta := fmt.Sprintf("%s · %s", m.result.Story.CurrentTime, m.result.Story.CurrentLocation)
	content.WriteString(promptStyle.Render(meta) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")

	content.WriteString(narrativeStyle.Render(wordwrap.String(payload.Text, storyWidth)) + "\n\n")

	if m.result.NewMission != nil {
		mission := fmt.Sprintf("New mission #%d: %s — %s (reward %s %d)",
			m.result.NewMission.ID,
			m.result.NewMission.Title,
			m.result.NewMission.Objective,
			m.result.NewMission.RewardCurrency,
			m.result.NewMission.RewardAmount)
		content.WriteString(costStyle.Render(wordwrap.String(mission, storyWidth)) + "\n\n")
	}

	for i, c := range payload.Choices {
		line := fmt.Sprintf("%d. %s", i+1, c.Text)
		content.WriteString(choiceStyle.Render(wordwrap.String(line, storyWidth)) + "\n")
		if c.Cost != nil && c.Cost.Amount > 0 {
			content.WriteString("   " + costStyle.Render(fmt.Sprintf("Cost: %s %d", c.Cost.Currency, c.Cost.Amount.Int())) + "\n")
		}
		if c.Consequence != "" {
			content.WriteString("   " + promptStyle.Render(wordwrap.String(c.Consequence, storyWidth-3)) + "\n")
		}
	}
	content.WriteString("\n")

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("AGENT FILE") + "\n\n")

	content.WriteString("Agent ID:\n")
	id := m.config.UserID
	if len(id) > 12 {
		id = id[:12] + "..."
	}
	content.WriteString(id + "\n\n")

	if m.progress == nil {
		content.WriteString("No progress yet.\n")
		return content.String()
	}

	content.WriteString(fmt.Sprintf("Level %d (%d XP)\n\n", m.progress.Level, m.progress.ExperiencePoints))

	content.WriteString("Funds:\n")
	currencies := make([]string, 0, len(m.progress.CurrencyBalances))
	for c := range m.progress.CurrencyBalances {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		content.WriteString(fmt.Sprintf("%s %d\n", c, m.progress.CurrencyBalances[c]))
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Missions: %d active\n\n", len(m.progress.ActiveMissionIDs)))

	if len(m.progress.EncounteredCharacters) > 0 {
		content.WriteString("Contacts:\n")
		names := make([]string, 0, len(m.progress.EncounteredCharacters))
		for key := range m.progress.EncounteredCharacters {
			names = append(names, key)
		}
		sort.Strings(names)
		for _, key := range names {
			enc := m.progress.EncounteredCharacters[key]
			content.WriteString(fmt.Sprintf("• %s (%+d)\n", enc.Name, enc.RelationshipLevel))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /missions: Missions\n")

	return content.String()
}

func (m ConsoleUI) loadOptions() tea.Cmd {
	return func() tea.Msg {
		opts, err := getOptions(m.client, m.config.APIBaseURL)
		return optionsLoadedMsg{opts, err}
	}
}

func (m ConsoleUI) startStoryCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := startStory(m.client, m.config.APIBaseURL, m.config.UserID, m.params)
		return turnMsg{result, err}
	}
}

func (m ConsoleUI) applyChoiceCmd(text string, custom bool) tea.Cmd {
	return func() tea.Msg {
		result, err := applyChoice(m.client, m.config.APIBaseURL, m.config.UserID, text, custom)
		return turnMsg{result, err}
	}
}

func (m ConsoleUI) completeMissionCmd(missionID int64) tea.Cmd {
	return func() tea.Msg {
		outcome, err := completeMission(m.client, m.config.APIBaseURL, m.config.UserID, missionID)
		return missionResolvedMsg{outcome, err}
	}
}

func (m ConsoleUI) stepOptions() []story.Option {
	if m.options == nil {
		return nil
	}
	switch m.setupStep {
	case stepConflict:
		return m.options.Conflicts
	case stepSetting:
		return m.options.Settings
	case stepStyle:
		return m.options.NarrativeStyles
	default:
		return m.options.Moods
	}
}

func (m *ConsoleUI) applySelection() {
	opts := m.stepOptions()
	label := opts[m.selected[m.setupStep]].Label()
	switch m.setupStep {
	case stepConflict:
		m.params.Conflict = label
	case stepSetting:
		m.params.Setting = label
	case stepStyle:
		m.params.NarrativeStyle = label
	case stepMood:
		m.params.Mood = label
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case optionsLoadedMsg:
		m.loadingOptions = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.options = msg.options
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.result = msg.result
			m.progress = msg.result.Progress
			m.showSetupModal = false
			if m.width > 0 && m.height > 0 {
				m.resize()
			}
			m.writeStoryContent()
			m.metaViewport.SetContent(m.writeMetadata())
			m.input.Focus()
		}
		return m, textinput.Blink

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			return m, progressTick()
		}

	case tea.KeyMsg:
		if m.loadingOptions || m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		opts := m.stepOptions()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selected[m.setupStep] > 0 {
				m.selected[m.setupStep]--
			}
		case tea.KeyDown:
			if m.selected[m.setupStep] < len(opts)-1 {
				m.selected[m.setupStep]++
			}
		case tea.KeyEnter:
			if len(opts) == 0 {
				return m, nil
			}
			m.applySelection()
			if m.setupStep < stepMood {
				m.setupStep++
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			return m, tea.Batch(m.startStoryCmd(), progressTick())
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showSetupModal {
					m.input.Focus()
					return m, textinput.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Abort Mission?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingOptions:
		content.WriteString(modalTitleStyle.Render("Loading..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching story options..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to set up story: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Generating Your Story..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Your handler is preparing the briefing..."))
	default:
		content.WriteString(modalTitleStyle.Render(stepTitles[m.setupStep]))
		content.WriteString("\n\n")

		for i, opt := range m.stepOptions() {
			line := fmt.Sprintf("%s  %s", opt.Emoji(), opt.Label())
			if i == m.selected[m.setupStep] {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
			} else {
				content.WriteString(modalItemStyle.Render("  " + line))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render(fmt.Sprintf("Step %d of %d · ↑/↓ to navigate, Enter to select, Ctrl+C to exit",
			m.setupStep+1, stepCount)))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSetupModal {
		return m.renderSetupModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
