// Package repl runs the assistant as an interactive terminal chat.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/services/chat"
	"go.uber.org/zap"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF6B6B"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(0, 2).
			Bold(true).
			MarginBottom(1)

	hintStyle      = lipgloss.NewStyle().Foreground(subtle)
	promptStyle    = lipgloss.NewStyle().Foreground(highlight).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(special)
	errorStyle     = lipgloss.NewStyle().Foreground(warning)
)

var exitCommands = map[string]struct{}{"exit": {}, "quit": {}}

type chatService interface {
	ProcessMessage(ctx context.Context, username, message string) (string, error)
}

// REPL reads messages line by line and prints the assistant's replies.
type REPL struct {
	chat   chatService
	in     io.Reader
	out    io.Writer
	logger *zap.Logger

	askUsername func() (string, error)
}

// Option customizes a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.in = in
		r.out = out
	}
}

// WithUsernamePrompt replaces the interactive username form.
func WithUsernamePrompt(fn func() (string, error)) Option {
	return func(r *REPL) {
		r.askUsername = fn
	}
}

func New(chat chatService, logger *zap.Logger, opts ...Option) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &REPL{
		chat:        chat,
		in:          os.Stdin,
		out:         os.Stdout,
		logger:      logger,
		askUsername: promptUsername,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run chats with username until exit, EOF or ctx cancellation.
// An empty username is asked for first.
func (r *REPL) Run(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		var err error
		if username, err = r.askUsername(); err != nil {
			return errors.Wrap(err, "ask username")
		}
		username = strings.TrimSpace(username)
	}
	if username == "" {
		return errors.New("username is required")
	}

	fmt.Fprintln(r.out, headerStyle.Render("NOVA"))
	fmt.Fprintln(r.out, hintStyle.Render(fmt.Sprintf("Hi %s! Ask about coin prices, dates or projects. Type exit or quit to leave.", username)))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprint(r.out, promptStyle.Render(username+" >")+" ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "read input")
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, ok := exitCommands[strings.ToLower(line)]; ok {
			fmt.Fprintln(r.out, hintStyle.Render("Goodbye!"))
			return nil
		}

		reply, err := r.chat.ProcessMessage(ctx, username, line)
		if err != nil {
			r.logger.Warn("message failed", zap.String("user", username), zap.Error(err))
			fmt.Fprintln(r.out, errorStyle.Render(chat.UserMessage(err)))
			continue
		}
		fmt.Fprintln(r.out, assistantStyle.Render(reply))
	}
}

func promptUsername() (string, error) {
	var username string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What's your name?").
				Description("Conversation history is kept per user").
				Value(&username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	return username, err
}
