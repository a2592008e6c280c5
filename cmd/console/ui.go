package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/white-rabbit/internal/handlers"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// gameAPI is the part of the API client the UI drives.
type gameAPI interface {
	start() (*handlers.GameResponse, error)
	choose(choiceType string) (*handlers.GameResponse, error)
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api           gameAPI
	game          *handlers.GameResponse
	storyViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int
	err           error
	notice        string
	loading       bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	writeClipboard func(string) error
}

type gameMsg struct {
	game *handlers.GameResponse
	err  error
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

	decisionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Italic(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("86")).
			Bold(true).
			Padding(0, 2)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(api gameAPI) ConsoleUI {
	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	return ConsoleUI{
		api:            api,
		storyViewport:  storyVp,
		metaViewport:   viewport.New(20, 20),
		loading:        true,
		writeClipboard: clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.startGame(), progressTick())
}

func (m ConsoleUI) startGame() tea.Cmd {
	return func() tea.Msg {
		gs, err := m.api.start()
		return gameMsg{game: gs, err: err}
	}
}

func (m ConsoleUI) chooseCmd(choiceType narrative.Outcome) tea.Cmd {
	return func() tea.Msg {
		gs, err := m.api.choose(string(choiceType))
		return gameMsg{game: gs, err: err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		storyWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - storyWidth - 6

		m.storyViewport.Width = storyWidth - 2
		m.storyViewport.Height = m.height - 4
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyRunes:
			return m.handleKey(string(msg.Runes))
		}

	case gameMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.game = msg.game
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) handleKey(key string) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.notice = ""

	switch key {
	case "1", "2":
		if m.game == nil || m.game.GameOver || m.game.CurrentRound == nil {
			return m, nil
		}
		idx := int(key[0] - '1')
		if idx >= len(m.game.CurrentRound.Choices) {
			return m, nil
		}
		return m.beginRequest(m.chooseCmd(m.game.CurrentRound.Choices[idx].Outcome))
	case "n":
		return m.beginRequest(m.startGame())
	case "c":
		if m.game == nil {
			return m, nil
		}
		if err := m.writeClipboard(m.game.NarrativeContext); err != nil {
			m.err = fmt.Errorf("failed to copy transcript: %w", err)
		} else {
			m.notice = "Transcript copied to clipboard."
		}
		m.refresh()
	case "q":
		m.showQuitModal = true
	}
	return m, nil
}

func (m ConsoleUI) beginRequest(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil
	m.progressTick = 0
	m.refresh()
	return m, tea.Batch(cmd, progressTick())
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEnter:
		return m, tea.Quit
	case tea.KeyEsc:
		m.showQuitModal = false
	case tea.KeyRunes:
		switch strings.ToLower(string(key.Runes)) {
		case "y":
			return m, tea.Quit
		case "n":
			m.showQuitModal = false
		}
	}
	return m, nil
}

// refresh rebuilds both panels for the current width.
func (m *ConsoleUI) refresh() {
	width := m.storyViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}
	m.storyViewport.SetContent(m.renderStory(width))
	m.storyViewport.GotoBottom()
	m.metaViewport.SetContent(m.renderMetadata())
}

func (m ConsoleUI) renderStory(width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("WHITE RABBIT") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	if m.game != nil {
		content.WriteString(formatTranscript(m.game.NarrativeContext, width))
		content.WriteString("\n")

		switch {
		case m.game.GameOver && m.game.WinOrLoss == narrative.ResultWin:
			content.WriteString(winStyle.Render("YOU WIN") + "\n\n")
		case m.game.GameOver:
			content.WriteString(lossStyle.Render("YOU LOSE") + "\n\n")
		case m.game.CurrentRound != nil:
			for i, c := range m.game.CurrentRound.Choices {
				line := fmt.Sprintf("[%d] %s", i+1, c.ChoiceDescription)
				content.WriteString(choiceStyle.Render(wordwrap.String(line, width)) + "\n")
			}
			content.WriteString("\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar() + "\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n")
	}
	if m.notice != "" {
		content.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	return content.String()
}

// formatTranscript styles the transcript blocks line by line.
func formatTranscript(transcript string, width int) string {
	var out strings.Builder
	for _, line := range strings.Split(strings.TrimRight(transcript, "\n"), "\n") {
		wrapped := wordwrap.String(line, width)
		switch {
		case strings.HasPrefix(line, "Decision: "):
			out.WriteString(decisionStyle.Render(wrapped))
		case strings.HasPrefix(line, "Player choice: "):
			out.WriteString(confirmStyle.Render(wrapped))
		default:
			out.WriteString(narratorStyle.Render(wrapped))
		}
		out.WriteString("\n")
	}
	return out.String()
}

func (m ConsoleUI) renderMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	if m.game != nil {
		content.WriteString("Session:\n")
		content.WriteString(m.game.SessionID.String()[:8] + "...\n\n")

		content.WriteString("Score:\n")
		content.WriteString(fmt.Sprintf("%+d of ±%d\n\n", m.game.Score, m.game.EndGameThreshold))

		if m.game.GameOver {
			content.WriteString("Result:\n" + string(m.game.WinOrLoss) + "\n\n")
		}
	}

	content.WriteString("Commands:\n")
	content.WriteString("• 1 / 2: Choose\n")
	content.WriteString("• n: New game\n")
	content.WriteString("• c: Copy story\n")
	content.WriteString("• Esc: Quit\n")
	return content.String()
}

func (m ConsoleUI) renderQuitModal() string {
	modal := modalStyle.Width(40).Render(
		titleStyle.Render("Leave the rabbit hole?") + "\n\n" + "y / Enter: quit    n / Esc: stay",
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(m.storyViewport.View())
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
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
			bar.WriteString("▓") // Blinking effect at the progress point
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
