package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hyu460659-glitch/paoTuanGame/internal/session"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
)

const (
	AgentName       = "Game Master"
	PlaceHolderText = "What do you do?"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *APIClient
	view         *session.View
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	notice       string
	loading      bool

	showQuitModal bool

	progressTick int
}

type sessionMsg struct {
	view *session.View
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	rollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(api *APIClient, view *session.View) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		api:          api,
		view:         view,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: viewport.New(20, 20),
	}
}

func writeCharacterSheet(v *session.View) string {
	c := v.Character
	var content strings.Builder
	content.WriteString(titleStyle.Render(strings.ToUpper(c.Name)) + "\n")
	content.WriteString(fmt.Sprintf("Level %d %s (%s)\n\n", c.Level, c.Class, c.Gender))

	content.WriteString(fmt.Sprintf("HP %d/%d\n", c.CurrentStats.HP, c.CurrentStats.MaxHP))
	content.WriteString(fmt.Sprintf("SP %d/%d\n\n", c.CurrentStats.SP, c.CurrentStats.MaxSP))

	content.WriteString("Attributes:\n")
	for _, attr := range character.Attributes {
		score, _ := c.Stats.Get(attr)
		content.WriteString(fmt.Sprintf("• %-12s %2d (%+d)\n", check.DisplayName(attr), score, check.Modifier(score)))
	}

	content.WriteString("\nEquipped:\n")
	equipped := false
	for _, slot := range character.Slots {
		if it := c.Equipment.Get(slot); it != nil {
			content.WriteString(fmt.Sprintf("• %s: %s\n", slot, it.Name))
			equipped = true
		}
	}
	if !equipped {
		content.WriteString("Nothing\n")
	}

	content.WriteString("\nInventory:\n")
	if len(c.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, it := range c.Inventory {
		content.WriteString(fmt.Sprintf("• [%s] %s\n", it.ID, it.Name))
	}

	content.WriteString("\nSkills:\n")
	for _, s := range c.Skills {
		content.WriteString("• " + s.Name + "\n")
	}

	if v.PendingCheck != nil {
		content.WriteString("\n" + rollStyle.Render("CHECK PENDING") + "\n")
		content.WriteString(fmt.Sprintf("%s DC %d\n%s\nType /check to roll\n",
			check.DisplayName(v.PendingCheck.Attribute), v.PendingCheck.Difficulty, v.PendingCheck.Reason))
	}
	return content.String()
}

// writeChatContent builds the chat content from the session for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE LOG") + "\n\n")
	content.WriteString("Describe what you do. Type /help for commands.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	if m.view != nil {
		for _, msg := range m.view.Messages {
			content.WriteString(formatMessage(msg, chatWidth) + "\n\n")
		}
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.notice != "" {
		content.WriteString(promptStyle.Render(m.notice) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func formatMessage(msg chat.Message, width int) string {
	switch msg.Sender {
	case chat.SenderUser:
		return userStyle.Render("You: ") + wordwrap.String(msg.Content, width-5)
	case chat.SenderSystem:
		if msg.IsRoll {
			return rollStyle.Render(wordwrap.String(msg.Content, width))
		}
		return systemStyle.Render(wordwrap.String(msg.Content, width))
	default:
		return formatNarratorResponse(msg.Content, width)
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) refresh() {
	m.writeChatContent()
	if m.view != nil {
		m.metaViewport.SetContent(writeCharacterSheet(m.view))
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			m.notice = m.copyLastNarrative()
			m.writeChatContent()
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			return m.submit(input)
		}

	case sessionMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil && msg.view != nil {
			m.view = msg.view
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// submit runs a line of input. While a check is pending only /check and
// local commands are accepted.
func (m ConsoleUI) submit(input string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.notice = ""

	cmd, err := parseCommand(input)
	if err != nil {
		m.err = err
		m.writeChatContent()
		return m, nil
	}
	m.textarea.Reset()

	if cmd.kind == cmdHelp {
		m.notice = helpText
		m.writeChatContent()
		return m, nil
	}

	if m.view.PendingCheck != nil && (cmd.kind == cmdChat || cmd.kind == cmdRoll) {
		m.err = fmt.Errorf("resolve the pending check first with /check")
		m.writeChatContent()
		return m, nil
	}

	call, err := m.apiCall(cmd)
	if err != nil {
		m.err = err
		m.writeChatContent()
		return m, nil
	}

	m.loading = true
	m.progressTick = 0
	m.writeChatContent()
	return m, tea.Batch(func() tea.Msg {
		v, err := call()
		return sessionMsg{view: v, err: err}
	}, progressTick())
}

func (m ConsoleUI) apiCall(cmd command) (func() (*session.View, error), error) {
	id := m.view.ID.String()
	settings := m.view.Settings

	switch cmd.kind {
	case cmdChat:
		return func() (*session.View, error) { return m.api.SendMessage(id, cmd.arg) }, nil
	case cmdRoll:
		return func() (*session.View, error) { return m.api.Roll(id, cmd.sides) }, nil
	case cmdCheck:
		return func() (*session.View, error) { return m.api.ResolveCheck(id) }, nil
	case cmdEquip:
		return func() (*session.View, error) { return m.api.Equip(id, cmd.arg) }, nil
	case cmdUnequip:
		return func() (*session.View, error) { return m.api.Unequip(id, character.Slot(cmd.arg)) }, nil
	case cmdName:
		return func() (*session.View, error) {
			return m.api.UpdateProfile(id, character.ProfileUpdate{Name: &cmd.arg})
		}, nil
	case cmdClass:
		return func() (*session.View, error) {
			return m.api.UpdateProfile(id, character.ProfileUpdate{Class: &cmd.arg})
		}, nil
	case cmdGender:
		return func() (*session.View, error) {
			return m.api.UpdateProfile(id, character.ProfileUpdate{Gender: &cmd.arg})
		}, nil
	case cmdWorld, cmdScript:
		text, err := readTextFile(cmd.arg)
		if err != nil {
			return nil, err
		}
		if cmd.kind == cmdWorld {
			settings.WorldSetting = text
		} else {
			settings.ScriptContent = text
		}
		return func() (*session.View, error) {
			return m.api.SaveSettings(id, settings.WorldSetting, settings.ScriptContent)
		}, nil
	}
	return nil, fmt.Errorf("unsupported command")
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// lastNarrative returns the newest Game Master message.
func lastNarrative(v *session.View) (string, bool) {
	if v == nil {
		return "", false
	}
	for i := len(v.Messages) - 1; i >= 0; i-- {
		if v.Messages[i].Sender == chat.SenderAI {
			return v.Messages[i].Content, true
		}
	}
	return "", false
}

func (m ConsoleUI) copyLastNarrative() string {
	text, ok := lastNarrative(m.view)
	if !ok {
		return "Nothing to copy yet."
	}
	if err := clipboard.WriteAll(text); err != nil {
		return "Copy failed: " + err.Error()
	}
	return "Copied the latest Game Master reply."
}

func formatNarratorResponse(response string, width int) string {
	narratorPrefix := AgentName + ": "
	wrapped := wordwrap.String(response, width-len(narratorPrefix))

	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			if len(strings.Fields(speaker)) <= 2 {
				lines[i] = speakerStyle.Render(speaker+":") + trimmed[idx+1:]
			}
		}
	}
	return narratorStyle.Render(narratorPrefix) + strings.Join(lines, "\n")
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

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
				m.textarea.Focus()
				return m, textarea.Blink
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
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
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

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
