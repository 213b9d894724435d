// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/transcript"
)

const chatHelp = `Commands:
  /clear    forget the conversation
  /history  show the conversation so far
  /help     show this help
  /quit     leave (also: exit, quit, Ctrl+D)`

func newChatCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with 코디 in a line-based REPL",
		Long: `Starts a line-based conversation with 코디 using the same history window,
system prompt and throttle as the pet's chat panel.

Input may be piped: each line is sent as one message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}
}

func runChat(cmd *cobra.Command, flags *globalFlags) error {
	app, err := newApp(cmd.Context(), flags.options())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Client.CheckRunning(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Ollama is not reachable at %s; replies will fail until it starts\n",
			warningStyle.Render("warning:"), app.Client.Endpoint())
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	interactive := in == os.Stdin && IsTTY()

	var reader lineReader
	if interactive {
		cli := NewChatCLI()
		defer cli.Close()
		reader = cli
	} else {
		reader = newScanReader(in)
	}

	repl := &REPL{
		Chat:        app.Manager,
		In:          reader,
		Out:         out,
		Interactive: interactive,
	}
	if out == os.Stdout && IsStdoutTTY() {
		repl.Render = newMarkdownRenderer(app.Logger)
	}
	return repl.Run(app.Context())
}

// =============================================================================
// INPUT
// =============================================================================

// lineReader yields one line of user input per call. io.EOF ends the session.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history loaded from the
// config directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt. Ctrl+C is reported as io.EOF.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scanReader reads piped input without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	return &scanReader{scanner: bufio.NewScanner(r)}
}

func (s *scanReader) ReadInput(string) (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// =============================================================================
// REPL
// =============================================================================

// chatter is the part of session.Manager the REPL uses.
type chatter interface {
	SubmitChat(ctx context.Context, text string) ollama.Reply
	History() []transcript.Message
	ClearHistory()
}

// REPL runs a line-based conversation.
type REPL struct {
	Chat chatter
	In   lineReader
	Out  io.Writer
	// Render formats assistant replies; nil prints them as-is.
	Render func(string) string
	// Interactive enables the banner and prompt styling.
	Interactive bool
}

// Run reads lines until EOF, a quit command, or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if r.Interactive {
		fmt.Fprintln(r.Out, titleStyle.Render("코디와 대화하기"))
		fmt.Fprintln(r.Out, dimStyle.Render("/help for commands, Ctrl+D to leave"))
	}

	prompt := "> "
	if r.Interactive {
		prompt = promptStyle.Render("나") + " > "
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := r.In.ReadInput(prompt)
		if errors.Is(err, io.EOF) {
			if r.Interactive {
				fmt.Fprintln(r.Out)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if !r.command(input) {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		r.send(ctx, input)
	}
}

// command handles a slash command and reports whether to keep going.
func (r *REPL) command(input string) bool {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return false
	case "/clear":
		r.Chat.ClearHistory()
		fmt.Fprintln(r.Out, dimStyle.Render("대화를 지웠어!"))
	case "/history":
		r.printHistory()
	case "/help", "/?":
		fmt.Fprintln(r.Out, chatHelp)
	default:
		fmt.Fprintf(r.Out, "%s unknown command %s (try /help)\n", warningStyle.Render("?"), name)
	}
	return true
}

func (r *REPL) send(ctx context.Context, input string) {
	reply := r.Chat.SubmitChat(ctx, input)
	if !reply.Success {
		fmt.Fprintf(r.Out, "%s %s\n", errorStyle.Render("!"), reply.Error)
		return
	}
	r.printReply(reply.Response)
}

func (r *REPL) printReply(content string) {
	if r.Render != nil {
		content = r.Render(content)
	}
	fmt.Fprintf(r.Out, "%s\n%s\n", petStyle.Render("코디"), strings.Trim(content, "\n"))
}

func (r *REPL) printHistory() {
	history := r.Chat.History()
	if len(history) == 0 {
		fmt.Fprintln(r.Out, dimStyle.Render("(아직 대화가 없어)"))
		return
	}
	for _, msg := range history {
		switch msg.Role {
		case transcript.RoleUser:
			fmt.Fprintf(r.Out, "%s %s\n", promptStyle.Render("나"), msg.Content)
		case transcript.RoleAssistant:
			r.printReply(msg.Content)
		}
	}
}

// newMarkdownRenderer returns a glamour-backed renderer, or nil if glamour
// cannot be set up.
func newMarkdownRenderer(logger *zap.Logger) func(string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle()),
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		logger.Debug("markdown rendering disabled", zap.Error(err))
		return nil
	}
	return func(s string) string {
		out, err := renderer.Render(s)
		if err != nil {
			return s
		}
		return out
	}
}
