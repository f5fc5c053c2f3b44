// Package chat drives conversations against an LLM backend: the interactive
// loop with per-turn cost accounting, and the single-shot mode.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"claude-agent/internal/cost"
	"claude-agent/internal/llm"
)

// Recorder receives usage totals as a conversation progresses. Recording is
// best-effort: implementations swallow their own failures so a broken ledger
// never interrupts a chat.
type Recorder interface {
	RecordTurn(ctx context.Context, inputTokens, outputTokens int, costUSD float64)
	End(ctx context.Context)
}

// Options configures a Session. Input, Output and ErrOutput default to the
// standard streams when nil; Recorder may be nil to disable the ledger.
type Options struct {
	SystemPrompt string
	Model        string
	Input        io.Reader
	Output       io.Writer
	ErrOutput    io.Writer
	Recorder     Recorder
}

// Session holds one conversation: the transcript so far plus running token
// totals. Not safe for concurrent use.
type Session struct {
	backend      llm.Backend
	systemPrompt string
	model        string
	in           *bufio.Scanner
	out          io.Writer
	errOut       io.Writer
	recorder     Recorder

	messages    []llm.Message
	totalInput  int
	totalOutput int
}

// New builds a Session around backend.
func New(backend llm.Backend, opts Options) *Session {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	return &Session{
		backend:      backend,
		systemPrompt: opts.SystemPrompt,
		model:        opts.Model,
		in:           bufio.NewScanner(opts.Input),
		out:          opts.Output,
		errOut:       opts.ErrOutput,
		recorder:     opts.Recorder,
	}
}

// Run executes the interactive loop until the user types exit or quit, or
// input reaches EOF. It returns an error only when reading input fails;
// backend failures are reported to the user and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Claude Agent - Interactive Mode (Cost Tracking Enabled)")
	fmt.Fprintln(s.out, "Type 'exit' or 'quit' to end the conversation.")
	fmt.Fprintln(s.out)

	for {
		fmt.Fprint(s.out, "You: ")
		if !s.in.Scan() {
			break
		}
		input := strings.TrimSpace(s.in.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		s.turn(ctx, input)
	}
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("read user input: %w", err)
	}

	s.printSummary()
	s.end(ctx)
	return nil
}

// turn sends the transcript plus one new user message to the backend. On
// failure the user message is removed again so a retyped prompt starts from
// the same transcript, and the totals stay untouched.
func (s *Session) turn(ctx context.Context, input string) {
	s.messages = append(s.messages, llm.Message{Role: llm.RoleUser, Content: input})

	resp, err := s.backend.Invoke(ctx, llm.Request{
		SystemPrompt: s.systemPrompt,
		Messages:     s.messages,
	})
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		s.messages = s.messages[:len(s.messages)-1]
		return
	}

	fmt.Fprintf(s.out, "Agent: %s\n", resp.Content)
	s.messages = append(s.messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
	s.totalInput += resp.InputTokens
	s.totalOutput += resp.OutputTokens

	turnCost := cost.Calculate(s.model, resp.InputTokens, resp.OutputTokens)
	sessionCost := cost.Calculate(s.model, s.totalInput, s.totalOutput)
	fmt.Fprintf(s.out, "└─ Tokens: %d in, %d out. Cost: Turn=$%.4f, Session=$%.4f\n\n",
		resp.InputTokens, resp.OutputTokens, turnCost, sessionCost)

	if s.recorder != nil {
		s.recorder.RecordTurn(ctx, resp.InputTokens, resp.OutputTokens, turnCost)
	}
}

// RunOnce sends a single message and prints the bare reply with no prompt,
// accounting line or summary. Backend failures go to ErrOutput; like the
// interactive loop they are reported, not returned.
func (s *Session) RunOnce(ctx context.Context, message string) error {
	resp, err := s.backend.Invoke(ctx, llm.Request{
		SystemPrompt: s.systemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: message}},
	})
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		s.end(ctx)
		return nil
	}
	fmt.Fprintln(s.out, resp.Content)
	s.totalInput += resp.InputTokens
	s.totalOutput += resp.OutputTokens

	if s.recorder != nil {
		turnCost := cost.Calculate(s.model, resp.InputTokens, resp.OutputTokens)
		s.recorder.RecordTurn(ctx, resp.InputTokens, resp.OutputTokens, turnCost)
	}
	s.end(ctx)
	return nil
}

func (s *Session) printSummary() {
	fmt.Fprintf(s.out, "\n--- Session Summary ---\n")
	fmt.Fprintf(s.out, "Total Input Tokens:  %d\n", s.totalInput)
	fmt.Fprintf(s.out, "Total Output Tokens: %d\n", s.totalOutput)
	fmt.Fprintln(s.out, "-----------------------")
}

func (s *Session) end(ctx context.Context) {
	if s.recorder != nil {
		s.recorder.End(ctx)
	}
}

// Totals reports the session's accumulated token counts.
func (s *Session) Totals() (inputTokens, outputTokens int) {
	return s.totalInput, s.totalOutput
}
