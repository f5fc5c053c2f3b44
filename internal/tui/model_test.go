package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"claude-agent/internal/config"
	"claude-agent/internal/llm"

	tea "github.com/charmbracelet/bubbletea"
)

type stubBackend struct {
	requests []llm.Request
	resp     *llm.Response
	err      error
}

func (s *stubBackend) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	msgs := make([]llm.Message, len(req.Messages))
	copy(msgs, req.Messages)
	s.requests = append(s.requests, llm.Request{SystemPrompt: req.SystemPrompt, Messages: msgs})
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newTestModel(backend *stubBackend) Model {
	return NewModel(backend, config.Default(), nil)
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyNamed(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		modelAny, _ := m.handleKey(keyRunes(r))
		m = modelAny.(Model)
	}
	return m
}

func TestTypingAccumulatesInput(t *testing.T) {
	t.Parallel()
	m := newTestModel(&stubBackend{})
	m = typeString(m, "hi")
	modelAny, _ := m.handleKey(keyNamed(tea.KeySpace))
	m = modelAny.(Model)
	m = typeString(m, "there")

	if m.input != "hi there" {
		t.Fatalf("input = %q", m.input)
	}
	if !strings.Contains(m.View(), "hi there") {
		t.Fatalf("view does not echo input:\n%s", m.View())
	}
}

func TestBackspaceRemovesLastRune(t *testing.T) {
	t.Parallel()
	m := newTestModel(&stubBackend{})
	m = typeString(m, "héllo")
	modelAny, _ := m.handleKey(keyNamed(tea.KeyBackspace))
	m = modelAny.(Model)
	if m.input != "héll" {
		t.Fatalf("input = %q", m.input)
	}
}

func TestEnterSendsAndReplyUpdatesTranscript(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{resp: &llm.Response{Content: "Hi there", InputTokens: 10, OutputTokens: 3}}
	m := newTestModel(backend)
	m = typeString(m, "Hello")

	modelAny, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)
	if !m.waiting {
		t.Fatal("expected waiting after enter")
	}
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if len(m.messages) != 1 || m.messages[0].Content != "Hello" {
		t.Fatalf("messages = %+v", m.messages)
	}

	msg := cmd()
	reply, ok := msg.(replyMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want replyMsg", msg)
	}
	modelAny, _ = m.Update(reply)
	m = modelAny.(Model)

	if m.waiting {
		t.Fatal("still waiting after reply")
	}
	if len(m.messages) != 2 || m.messages[1].Role != llm.RoleAssistant || m.messages[1].Content != "Hi there" {
		t.Fatalf("messages = %+v", m.messages)
	}
	if m.totalInput != 10 || m.totalOutput != 3 {
		t.Fatalf("totals = %d/%d", m.totalInput, m.totalOutput)
	}
	view := m.View()
	if !strings.Contains(view, "10 in, 3 out") {
		t.Errorf("view missing token counts:\n%s", view)
	}
	if !strings.Contains(view, "$0.0001") {
		t.Errorf("view missing cost:\n%s", view)
	}
}

func TestBackendSeesSystemPromptAndTranscript(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{resp: &llm.Response{Content: "ok", InputTokens: 1, OutputTokens: 1}}
	m := newTestModel(backend)
	m = typeString(m, "Hello")
	_, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	cmd()

	if len(backend.requests) != 1 {
		t.Fatalf("backend called %d times", len(backend.requests))
	}
	req := backend.requests[0]
	if req.SystemPrompt != config.DefaultSystemPrompt {
		t.Errorf("SystemPrompt = %q", req.SystemPrompt)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestReplyErrorRevertsUserTurn(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{err: errors.New("API request failed with status 500: Unknown error")}
	m := newTestModel(backend)
	m = typeString(m, "Hello")
	modelAny, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)

	msg := cmd()
	if _, ok := msg.(replyErrMsg); !ok {
		t.Fatalf("cmd returned %T, want replyErrMsg", msg)
	}
	modelAny, _ = m.Update(msg)
	m = modelAny.(Model)

	if len(m.messages) != 0 {
		t.Fatalf("messages = %+v, want empty after revert", m.messages)
	}
	if m.totalInput != 0 || m.totalOutput != 0 {
		t.Fatalf("totals changed on failure: %d/%d", m.totalInput, m.totalOutput)
	}
	if !strings.Contains(m.View(), "Error: API request failed with status 500") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestExitCommandQuits(t *testing.T) {
	t.Parallel()
	for _, word := range []string{"exit", "QUIT"} {
		m := newTestModel(&stubBackend{})
		m = typeString(m, word)
		_, cmd := m.handleKey(keyNamed(tea.KeyEnter))
		if cmd == nil {
			t.Fatalf("%q: expected quit command", word)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q: cmd returned %T, want tea.QuitMsg", word, cmd())
		}
	}
}

func TestEmptyInputIgnored(t *testing.T) {
	t.Parallel()
	m := newTestModel(&stubBackend{})
	modelAny, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)
	if cmd != nil {
		t.Fatal("expected no command for empty input")
	}
	if m.waiting {
		t.Fatal("waiting after empty submit")
	}
}

func TestTypingBlockedWhileWaiting(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{resp: &llm.Response{Content: "ok"}}
	m := newTestModel(backend)
	m = typeString(m, "first")
	modelAny, _ := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)

	m = typeString(m, "ignored")
	if m.input != "" {
		t.Fatalf("input = %q, want empty while waiting", m.input)
	}
	modelAny, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)
	if cmd != nil {
		t.Fatal("enter while waiting should not dispatch")
	}
	if !strings.Contains(m.View(), "Agent is thinking...") {
		t.Errorf("view missing waiting indicator:\n%s", m.View())
	}
}

func TestEscQuits(t *testing.T) {
	t.Parallel()
	m := newTestModel(&stubBackend{})
	_, cmd := m.handleKey(keyNamed(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd returned %T, want tea.QuitMsg", cmd())
	}
}

func TestTotals(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{resp: &llm.Response{Content: "a", InputTokens: 100, OutputTokens: 50}}
	m := newTestModel(backend)
	m = typeString(m, "one")
	modelAny, cmd := m.handleKey(keyNamed(tea.KeyEnter))
	m = modelAny.(Model)
	modelAny, _ = m.Update(cmd())
	m = modelAny.(Model)

	in, out := m.Totals()
	if in != 100 || out != 50 {
		t.Fatalf("Totals = %d/%d", in, out)
	}
}

func TestScrollWindow(t *testing.T) {
	t.Parallel()
	lines := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		offset, avail      int
		wantStart, wantEnd int
	}{
		{0, 3, 0, 3},
		{2, 3, 2, 5},
		{4, 3, 4, 5},
		{10, 3, 5, 5},
		{0, 0, 0, 1},
	}
	for _, tt := range tests {
		start, end := scrollWindow(lines, tt.offset, tt.avail)
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("scrollWindow(offset=%d, avail=%d) = %d,%d want %d,%d",
				tt.offset, tt.avail, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestMaxOffset(t *testing.T) {
	t.Parallel()
	lines := make([]string, 10)
	if got := maxOffset(lines, 4); got != 6 {
		t.Errorf("maxOffset = %d, want 6", got)
	}
	if got := maxOffset(lines, 20); got != 0 {
		t.Errorf("maxOffset = %d, want 0", got)
	}
}

func TestRenderTranscriptEmptyReply(t *testing.T) {
	t.Parallel()
	lines := renderTranscript([]llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: ""},
	}, 76)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "(no content)") {
		t.Errorf("transcript = %q", joined)
	}
}
