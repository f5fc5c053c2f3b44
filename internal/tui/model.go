package tui

import (
	"context"
	"fmt"
	"strings"

	"claude-agent/internal/chat"
	"claude-agent/internal/config"
	"claude-agent/internal/cost"
	"claude-agent/internal/llm"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ── Styles ──────────────────────────────────────────────────────────────────

const pad = 2 // horizontal padding on each side

var (
	frameStyle    = lipgloss.NewStyle().Padding(1, pad)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	youStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("37"))
	agentStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	thinkingStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("242"))
)

// ── Model ───────────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the full-screen chat view. It keeps the
// same conversation semantics as the line-mode loop: a failed request drops
// the pending user turn, and totals only ever grow.
type Model struct {
	backend  llm.Backend
	cfg      *config.Config
	recorder chat.Recorder

	messages []llm.Message
	lines    []string // transcript rendered for the current width
	input    string
	waiting  bool
	replyErr error

	totalInput   int
	totalOutput  int
	lastTurnCost float64
	sessionCost  float64

	scrollOffset int
	width        int
	height       int
}

func NewModel(backend llm.Backend, cfg *config.Config, recorder chat.Recorder) Model {
	return Model{backend: backend, cfg: cfg, recorder: recorder}
}

// Totals reports the token counts accumulated across the session, for the
// summary printed after the program exits the alternate screen.
func (m Model) Totals() (inputTokens, outputTokens int) {
	return m.totalInput, m.totalOutput
}

// ── Messages ────────────────────────────────────────────────────────────────

type replyMsg struct {
	resp *llm.Response
}

type replyErrMsg struct {
	err error
}

// ── Init / Commands ─────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd { return nil }

// sendMessage invokes the backend with the transcript as dispatched, which
// already includes the new user turn.
func (m Model) sendMessage() tea.Msg {
	resp, err := m.backend.Invoke(context.Background(), llm.Request{
		SystemPrompt: m.cfg.SystemPrompt,
		Messages:     m.messages,
	})
	if err != nil {
		return replyErrMsg{err: err}
	}
	return replyMsg{resp: resp}
}

// ── Update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lines = renderTranscript(m.messages, m.cw())
		m.scrollOffset = maxOffset(m.lines, m.scrollHeight())
	case replyMsg:
		m.waiting = false
		m.replyErr = nil
		m.messages = append(m.messages, llm.Message{Role: llm.RoleAssistant, Content: msg.resp.Content})
		m.totalInput += msg.resp.InputTokens
		m.totalOutput += msg.resp.OutputTokens
		m.lastTurnCost = cost.Calculate(m.cfg.Model, msg.resp.InputTokens, msg.resp.OutputTokens)
		m.sessionCost = cost.Calculate(m.cfg.Model, m.totalInput, m.totalOutput)
		if m.recorder != nil {
			m.recorder.RecordTurn(context.Background(), msg.resp.InputTokens, msg.resp.OutputTokens, m.lastTurnCost)
		}
		m.lines = renderTranscript(m.messages, m.cw())
		m.scrollOffset = maxOffset(m.lines, m.scrollHeight())
	case replyErrMsg:
		m.waiting = false
		m.replyErr = msg.err
		// Drop the failed user turn so resending starts from the same
		// transcript the backend last accepted.
		if n := len(m.messages); n > 0 && m.messages[n-1].Role == llm.RoleUser {
			m.messages = m.messages[:n-1]
		}
		m.lines = renderTranscript(m.messages, m.cw())
		m.scrollOffset = maxOffset(m.lines, m.scrollHeight())
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// ── Key Handling ────────────────────────────────────────────────────────────

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "backspace":
		if m.input != "" {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case "up":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
		return m, nil
	case "down":
		if m.scrollOffset < maxOffset(m.lines, m.scrollHeight()) {
			m.scrollOffset++
		}
		return m, nil
	case "pgup":
		m.scrollOffset -= m.scrollHeight()
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
		return m, nil
	case "pgdown":
		m.scrollOffset += m.scrollHeight()
		if mx := maxOffset(m.lines, m.scrollHeight()); m.scrollOffset > mx {
			m.scrollOffset = mx
		}
		return m, nil
	}

	if m.waiting {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

// submit sends the typed line as the next user turn. The exit and quit
// commands work here exactly as in line mode.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	input := strings.TrimSpace(m.input)
	if input == "" {
		return m, nil
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return m, tea.Quit
	}

	m.input = ""
	m.replyErr = nil
	m.waiting = true
	m.messages = append(m.messages, llm.Message{Role: llm.RoleUser, Content: input})
	m.lines = renderTranscript(m.messages, m.cw())
	m.scrollOffset = maxOffset(m.lines, m.scrollHeight())
	return m, m.sendMessage
}

// ── Views ───────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var b strings.Builder
	w := m.cw()

	b.WriteString(titleStyle.Render("CLAUDE AGENT"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.cfg.Model))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	avail := m.scrollHeight()
	if len(m.lines) == 0 {
		b.WriteString(dimStyle.Render("Type a message to start the conversation."))
		b.WriteString("\n")
		for i := 1; i < avail; i++ {
			b.WriteString("\n")
		}
	} else {
		start, end := scrollWindow(m.lines, m.scrollOffset, avail)
		for _, line := range m.lines[start:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
		for i := end - start; i < avail; i++ {
			b.WriteString("\n")
		}
	}

	b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  %s %d in, %d out   %s %s turn, %s session%s\n",
		labelStyle.Render("tokens"), m.totalInput, m.totalOutput,
		labelStyle.Render("cost"), cost.FormatUSD(m.lastTurnCost), cost.FormatUSD(m.sessionCost),
		scrollPercent(m.lines, m.scrollOffset, avail)))

	if m.replyErr != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.replyErr)))
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString(thinkingStyle.Render("Agent is thinking..."))
	} else {
		b.WriteString(youStyle.Render("You: "))
		b.WriteString(m.input)
		b.WriteString("▌")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter send  up/down scroll  esc quit"))
	return frameStyle.Render(b.String())
}

// renderTranscript lays out the conversation for a given content width.
// Agent replies go through the markdown renderer; user lines stay plain.
func renderTranscript(messages []llm.Message, width int) []string {
	var lines []string
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			lines = append(lines, youStyle.Render("You: ")+msg.Content)
		case llm.RoleAssistant:
			lines = append(lines, agentStyle.Render("Agent:"))
			lines = append(lines, splitReply(msg.Content, width)...)
		}
		lines = append(lines, "")
	}
	if n := len(lines); n > 0 {
		lines = lines[:n-1]
	}
	return lines
}

func splitReply(text string, width int) []string {
	if text == "" {
		return []string{dimStyle.Render("(no content)")}
	}
	return renderMarkdown(text, width)
}

// renderMarkdown renders text as terminal-styled markdown via glamour.
// Falls back to plain text splitting on error.
func renderMarkdown(text string, width int) []string {
	if width < 40 {
		width = 76
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.Split(text, "\n")
	}
	rendered, err := r.Render(text)
	if err != nil {
		return strings.Split(text, "\n")
	}
	// Trim trailing newlines that glamour adds.
	rendered = strings.TrimRight(rendered, "\n")
	return strings.Split(rendered, "\n")
}

// ── Helpers ─────────────────────────────────────────────────────────────────

// cw returns content width (terminal width minus frame padding).
func (m Model) cw() int {
	w := m.width - pad*2
	if w < 40 {
		w = 76 // sensible default before first WindowSizeMsg
	}
	return w
}

func (m Model) scrollHeight() int {
	// Reserve lines for chrome: frame padding(2) + title(1) + separators(2) + accounting(1) + input(1) + footer(1).
	h := m.height - 9
	if h < 1 {
		h = 1
	}
	return h
}

func maxOffset(lines []string, avail int) int {
	mo := len(lines) - avail
	if mo < 0 {
		mo = 0
	}
	return mo
}

func scrollWindow(lines []string, offset, avail int) (int, int) {
	if avail < 1 {
		avail = 1
	}
	start := offset
	if start > len(lines) {
		start = len(lines)
	}
	end := start + avail
	if end > len(lines) {
		end = len(lines)
	}
	return start, end
}

func scrollPercent(lines []string, offset, avail int) string {
	if len(lines) <= avail {
		return ""
	}
	mx := len(lines) - avail
	if mx <= 0 {
		return ""
	}
	return fmt.Sprintf("  [%d%%]", offset*100/mx)
}
