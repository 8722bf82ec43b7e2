package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/campaign-engine/pkg/campaign"
	"github.com/jwebster45206/campaign-engine/pkg/levels"
)

const PlaceHolderText = "Type a command (help for a list)..."

// difficulty modal choices
var startChoices = []string{
	"New game (easy)",
	"New game (normal)",
	"New game (hard)",
	"Continue",
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	sessionID    string
	snapshot     *campaign.Snapshot
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error

	lines []string // event log, unwrapped

	// Start modal state
	showStartModal bool
	selectedStart  int

	// Quit confirmation state
	showQuitModal bool

	sseCancel context.CancelFunc
	sseChan   chan SSEEvent
}

type campaignMsg struct {
	resp *CampaignResponse
	err  error
}

type questsMsg struct {
	resp *QuestsResponse
	err  error
}

type sseEventMsg struct {
	event SSEEvent
	ok    bool
}

type logMsg struct {
	line string
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // red-orange
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("203")).
				Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(24, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		logViewport:    logVp,
		metaViewport:   metaVp,
		showStartModal: true,
		sseChan:        make(chan SSEEvent, 32),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showStartModal {
		return m.updateStartModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.sessionID != "" {
				if err := clipboard.WriteAll(m.sessionID); err == nil {
					m = m.appendLog("Session ID copied to clipboard")
				}
			}
			return m, tea.Batch(taCmd, vpCmd)
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, tea.Batch(taCmd, vpCmd)
			}
			return m.handleInput(input, taCmd, vpCmd)
		}

	case campaignMsg:
		if msg.err != nil {
			m = m.appendLog(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			first := m.sessionID == ""
			m.sessionID = msg.resp.SessionID
			m.snapshot = &msg.resp.Snapshot
			m.writeMetadata()
			if first {
				m = m.appendLog(separatorStyle.Render("Session " + m.sessionID[:8] + " started"))
				return m, tea.Batch(taCmd, vpCmd, m.connectSSE())
			}
		}

	case questsMsg:
		if msg.err != nil {
			m = m.appendLog(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m = m.appendLog(formatQuests(msg.resp))
		}

	case logMsg:
		m = m.appendLog(msg.line)

	case sseEventMsg:
		if msg.ok {
			m = m.appendLog(eventStyle.Render(fmt.Sprintf("[%s] %v", msg.event.Type, msg.event.Data)))
			cmds := []tea.Cmd{taCmd, vpCmd, m.waitForSSE()}
			if msg.event.Type == "campaign.snapshot" {
				cmds = append(cmds, m.refreshCampaign())
			}
			return m, tea.Batch(cmds...)
		}
	}

	return m, tea.Batch(taCmd, vpCmd)
}

func (m ConsoleUI) updateStartModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedStart > 0 {
				m.selectedStart--
			}
		case tea.KeyDown:
			if m.selectedStart < len(startChoices)-1 {
				m.selectedStart++
			}
		case tea.KeyEnter:
			m.showStartModal = false
			mode := "new"
			difficulty := ""
			switch m.selectedStart {
			case 0:
				difficulty = "easy"
			case 1:
				difficulty = "normal"
			case 2:
				difficulty = "hard"
			case 3:
				mode = "continue"
			}
			return m, m.startCampaign(mode, difficulty)
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch strings.ToLower(key.String()) {
		case "y", "enter":
			if m.sseCancel != nil {
				m.sseCancel()
			}
			return m, tea.Quit
		case "n", "esc":
			m.showQuitModal = false
		}
	}
	return m, nil
}

// handleInput parses a typed console command.
func (m ConsoleUI) handleInput(input string, cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	commandMap := map[string]campaign.CommandType{
		"briefed":       campaign.CmdBriefingComplete,
		"intro-done":    campaign.CmdIntroComplete,
		"loaded":        campaign.CmdLoadingComplete,
		"tutorial-done": campaign.CmdTutorialComplete,
		"drop-done":     campaign.CmdDropComplete,
		"advance":       campaign.CmdAdvance,
		"retry":         campaign.CmdRetry,
		"pause":         campaign.CmdPause,
		"resume":        campaign.CmdResume,
		"died":          campaign.CmdPlayerDied,
		"menu":          campaign.CmdMainMenu,
		"begin":         campaign.CmdBeginMission,
		"bonus-done":    campaign.CmdBonusComplete,
	}

	switch verb {
	case "help":
		m = m.appendLog(helpText())
		return m, tea.Batch(cmds...)

	case "quests":
		return m, tea.Batch(append(cmds, m.fetchQuests())...)

	case "tracker":
		client, baseURL, sessionID := m.client, m.config.APIBaseURL, m.sessionID
		return m, tea.Batch(append(cmds, func() tea.Msg {
			tr, err := getTracker(client, baseURL, sessionID)
			if err != nil {
				return logMsg{line: errorStyle.Render("Error: " + err.Error())}
			}
			if !tr.HasObjective {
				return logMsg{line: "Tracker: no active objective"}
			}
			return logMsg{line: fmt.Sprintf("Tracker: [%s] %s (%d/%d)",
				tr.QuestTitle, tr.ObjectiveText, tr.Progress, tr.Required)}
		})...)

	case "levels":
		client, baseURL := m.client, m.config.APIBaseURL
		return m, tea.Batch(append(cmds, func() tea.Msg {
			configs, err := getLevels(client, baseURL)
			if err != nil {
				return logMsg{line: errorStyle.Render("Error: " + err.Error())}
			}
			var b strings.Builder
			b.WriteString("Levels:\n")
			for _, cfg := range configs {
				b.WriteString(fmt.Sprintf("  %s - %s\n", cfg.ID, cfg.Name))
			}
			return logMsg{line: b.String()}
		})...)

	case "select", "bonus", "jump":
		if len(args) != 1 {
			m = m.appendLog(errorStyle.Render("Usage: " + verb + " <level-id>"))
			return m, tea.Batch(cmds...)
		}
		cmdType := campaign.CmdSelectLevel
		if verb == "bonus" {
			cmdType = campaign.CmdEnterBonusLevel
		} else if verb == "jump" {
			cmdType = campaign.CmdDevJump
		}
		return m, tea.Batch(append(cmds, m.dispatch(campaign.Command{Type: cmdType, Level: levels.ID(args[0])}))...)

	case "complete":
		stats := &campaign.LevelStats{}
		if len(args) > 0 {
			if kills, err := strconv.Atoi(args[0]); err == nil {
				stats.Kills = kills
			}
		}
		return m, tea.Batch(append(cmds, m.dispatch(campaign.Command{Type: campaign.CmdLevelComplete, Stats: stats}))...)

	case "interact", "npc", "area", "collect", "kill", "secret", "log", "pos":
		return m, tea.Batch(append(cmds, m.trigger(verb, args))...)

	default:
		if cmdType, ok := commandMap[verb]; ok {
			return m, tea.Batch(append(cmds, m.dispatch(campaign.Command{Type: cmdType}))...)
		}
		m = m.appendLog(errorStyle.Render("Unknown command: " + verb + " (try help)"))
		return m, tea.Batch(cmds...)
	}
}

func (m ConsoleUI) startCampaign(mode, difficulty string) tea.Cmd {
	return func() tea.Msg {
		resp, err := createCampaign(m.client, m.config.APIBaseURL, mode, difficulty)
		return campaignMsg{resp: resp, err: err}
	}
}

// connectSSE begins the event stream once a session exists. Stream failure is
// tolerated; the console falls back to post-command refreshes.
func (m *ConsoleUI) connectSSE() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.sseCancel = cancel
	ch := m.sseChan
	sessionID := m.sessionID
	client := m.client
	baseURL := m.config.APIBaseURL
	go func() {
		_ = listenToSSE(ctx, client, baseURL, sessionID, ch)
	}()
	return m.waitForSSE()
}

func (m ConsoleUI) waitForSSE() tea.Cmd {
	ch := m.sseChan
	return func() tea.Msg {
		event, ok := <-ch
		return sseEventMsg{event: event, ok: ok}
	}
}

func (m ConsoleUI) dispatch(cmd campaign.Command) tea.Cmd {
	client := m.client
	baseURL := m.config.APIBaseURL
	sessionID := m.sessionID
	return func() tea.Msg {
		resp, err := sendCommand(client, baseURL, sessionID, cmd)
		return campaignMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) refreshCampaign() tea.Cmd {
	client := m.client
	baseURL := m.config.APIBaseURL
	sessionID := m.sessionID
	return func() tea.Msg {
		resp, err := getCampaign(client, baseURL, sessionID)
		return campaignMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) fetchQuests() tea.Cmd {
	client := m.client
	baseURL := m.config.APIBaseURL
	sessionID := m.sessionID
	return func() tea.Msg {
		resp, err := getQuests(client, baseURL, sessionID)
		return questsMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) trigger(verb string, args []string) tea.Cmd {
	trigger := map[string]interface{}{}
	switch verb {
	case "interact":
		trigger["type"] = "object_interact"
	case "npc":
		trigger["type"] = "npc_dialogue"
	case "area":
		trigger["type"] = "area_enter"
	case "collect":
		trigger["type"] = "collectible_found"
	case "kill":
		trigger["type"] = "enemy_killed"
	case "secret":
		trigger["type"] = "secret_found"
	case "log":
		trigger["type"] = "audio_log_found"
	case "pos":
		trigger["type"] = "player_position"
		if len(args) == 3 {
			x, _ := strconv.ParseFloat(args[0], 64)
			y, _ := strconv.ParseFloat(args[1], 64)
			z, _ := strconv.ParseFloat(args[2], 64)
			trigger["position"] = map[string]float64{"x": x, "y": y, "z": z}
		}
	}
	if len(args) > 0 && verb != "pos" {
		trigger["key"] = args[0]
	}

	client := m.client
	baseURL := m.config.APIBaseURL
	sessionID := m.sessionID
	return func() tea.Msg {
		if err := sendTrigger(client, baseURL, sessionID, trigger); err != nil {
			return logMsg{line: errorStyle.Render("Error: " + err.Error())}
		}
		return logMsg{line: eventStyle.Render("Trigger sent: " + verb)}
	}
}

func (m ConsoleUI) appendLog(line string) ConsoleUI {
	m.lines = append(m.lines, line)
	m.writeLogContent()
	return m
}

func (m *ConsoleUI) writeLogContent() {
	width := m.logViewport.Width - 6
	if width < 10 {
		width = 10
	}
	var content strings.Builder
	content.WriteString(titleStyle.Render("CAMPAIGN CONSOLE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
	for _, line := range m.lines {
		content.WriteString(wordwrap.String(line, width) + "\n")
	}
	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CAMPAIGN") + "\n\n")

	if m.sessionID != "" {
		content.WriteString("Session:\n")
		content.WriteString(m.sessionID[:8] + "...\n\n")
	}

	if s := m.snapshot; s != nil {
		content.WriteString("Phase:\n")
		content.WriteString(phaseStyle.Render(s.Phase.Display()) + "\n\n")
		if s.LevelID != "" {
			content.WriteString("Level:\n")
			content.WriteString(string(s.LevelID) + "\n\n")
		}
		content.WriteString(fmt.Sprintf("Difficulty: %s\n", s.Difficulty))
		content.WriteString(fmt.Sprintf("Kills: %d (level %d)\n", s.TotalKills, s.LevelKills))
		content.WriteString(fmt.Sprintf("Deaths: %d\n", s.Deaths))
		content.WriteString(fmt.Sprintf("Version: %d\n", s.Version))
		if s.BonusLevel {
			content.WriteString("In bonus level\n")
		}
	}

	content.WriteString("\nKeys:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+Y: Copy session ID\n")
	content.WriteString("• Enter: Run command\n")

	m.metaViewport.SetContent(content.String())
}

func (m *ConsoleUI) layout() {
	metaWidth := 28
	logWidth := m.width - metaWidth
	if logWidth < 30 {
		logWidth = m.width
		metaWidth = 0
	}
	inputHeight := 3
	panelHeight := m.height - inputHeight
	if panelHeight < 5 {
		panelHeight = 5
	}
	m.logViewport.Width = logWidth
	m.logViewport.Height = panelHeight
	m.metaViewport.Width = metaWidth
	m.metaViewport.Height = panelHeight
	m.textarea.SetWidth(m.width - 4)
	m.writeLogContent()
	m.writeMetadata()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.showStartModal {
		return m.renderStartModal()
	}
	if m.showQuitModal {
		return m.renderModal("Quit the console?", []string{"y - yes", "n - no"}, -1)
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		logPanelStyle.Render(m.logViewport.View()),
		metaPanelStyle.Render(m.metaViewport.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, panels, m.textarea.View())
}

func (m ConsoleUI) renderStartModal() string {
	return m.renderModal("VANGUARD CAMPAIGN", startChoices, m.selectedStart)
}

func (m ConsoleUI) renderModal(title string, items []string, selected int) string {
	var body strings.Builder
	body.WriteString(modalTitleStyle.Render(title) + "\n\n")
	for i, item := range items {
		if i == selected {
			body.WriteString(modalSelectedItemStyle.Render("> "+item) + "\n")
		} else {
			body.WriteString(modalItemStyle.Render("  "+item) + "\n")
		}
	}
	modal := modalStyle.Render(body.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func formatQuests(q *QuestsResponse) string {
	var b strings.Builder
	b.WriteString("Active quests:\n")
	if len(q.Active) == 0 {
		b.WriteString("  none\n")
	}
	for _, st := range q.Active {
		b.WriteString(fmt.Sprintf("  %s (objective %d)\n", st.QuestID, st.ObjectiveIndex+1))
	}
	if len(q.Completed) > 0 {
		b.WriteString("Completed: " + strings.Join(q.Completed, ", ") + "\n")
	}
	if len(q.Failed) > 0 {
		b.WriteString("Failed: " + strings.Join(q.Failed, ", ") + "\n")
	}
	return b.String()
}

func helpText() string {
	return `Commands:
  begin | briefed | loaded | intro-done | tutorial-done | drop-done
  complete [kills] | advance | retry | pause | resume | died | menu
  select <level> | bonus <level> | bonus-done | jump <level>
  quests | tracker | levels
Triggers:
  interact <key> | npc <key> | area <key> | collect <key>
  kill [key] | secret | log | pos <x> <y> <z>`
}
