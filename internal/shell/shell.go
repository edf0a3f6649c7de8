// Package shell is the interactive command line for running a session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/muesli/termenv"

	"github.com/lox/pokerledger/internal/ledger"
	"github.com/lox/pokerledger/internal/report"
)

// Command is a single shell command.
type Command struct {
	Name        string
	Aliases     []string
	Args        []string // argument names, also the expected arity
	Description string
	Handler     func(args []string) (bool, error) // false ends the session
}

// Usage returns e.g. "sit <name> <buyin>".
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, a := range c.Args {
		parts = append(parts, "<"+a+">")
	}
	return strings.Join(parts, " ")
}

// Options configures a Shell.
type Options struct {
	In          io.ReadCloser // defaults to os.Stdin
	Out         io.Writer     // defaults to os.Stdout
	Logger      *log.Logger
	HistoryFile string
	ReportPath  string // written on end when set
	SessionID   string
	NoColor     bool
}

// Shell dispatches command lines to a Game.
type Shell struct {
	game     *ledger.Game
	opts     Options
	out      io.Writer
	logger   *log.Logger
	styles   *Styles
	commands map[string]*Command
	ended    bool
}

// Styles contains styling for shell output.
type Styles struct {
	Prompt lipgloss.Style
	Header lipgloss.Style
	Info   lipgloss.Style
	Error  lipgloss.Style
}

// New creates a shell for the game.
func New(game *ledger.Game, opts Options) *Shell {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.SessionID == "" {
		opts.SessionID = report.NewSessionID()
	}

	renderer := lipgloss.NewRenderer(opts.Out)
	if opts.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	s := &Shell{
		game:   game,
		opts:   opts,
		out:    opts.Out,
		logger: opts.Logger.WithPrefix("shell"),
		styles: &Styles{
			Prompt: renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
			Header: renderer.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
			Info:   renderer.NewStyle().Foreground(lipgloss.Color("#626262")),
			Error:  renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		},
	}
	s.initCommands()
	return s
}

func (s *Shell) initCommands() {
	s.commands = map[string]*Command{
		"sit": {
			Name:        "sit",
			Args:        []string{"name", "buyin"},
			Description: "Add a new player with some buyin",
			Handler:     s.seat(false),
		},
		"host": {
			Name:        "host",
			Args:        []string{"name", "buyin"},
			Description: "Add a new player with host privileges and some buyin",
			Handler:     s.seat(true),
		},
		"addon": {
			Name:        "addon",
			Args:        []string{"name", "amount"},
			Description: "Record that a player added on for some amount",
			Handler:     s.handleAddOn,
		},
		"check": {
			Name:        "check",
			Args:        []string{"name"},
			Description: "Display player info without removing the player from the game",
			Handler:     s.handleCheck,
		},
		"cashout": {
			Name:        "cashout",
			Args:        []string{"name", "stack"},
			Description: "Remove the player from the game and display final stats",
			Handler:     s.cashout(true),
		},
		"rem": {
			Name:        "rem",
			Args:        []string{"name", "stack"},
			Description: "Remove the player from the game without displaying player info first",
			Handler:     s.cashout(false),
		},
		"total": {
			Name:        "total",
			Description: "Display the amount of money on the table",
			Handler:     s.handleTotal,
		},
		"summary": {
			Name:        "summary",
			Description: "Display a comprehensive summary of the game right now",
			Handler:     s.handleSummary,
		},
		"end": {
			Name:        "end",
			Aliases:     []string{"quit", "exit"},
			Description: "Summarize the game and quit (manual cashouts are preferred)",
			Handler:     s.handleEnd,
		},
		"help": {
			Name:        "help",
			Aliases:     []string{"?"},
			Description: "Show available commands",
			Handler:     s.handleHelp,
		},
	}

	for _, cmd := range s.names() {
		for _, alias := range s.commands[cmd].Aliases {
			s.commands[alias] = s.commands[cmd]
		}
	}
}

// names returns the primary command names, sorted.
func (s *Shell) names() []string {
	var names []string
	for key, cmd := range s.commands {
		if key == cmd.Name {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

// Execute runs one command line. It returns false once the session has
// ended.
func (s *Shell) Execute(line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true, nil
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]
	cmd, ok := s.commands[name]
	if !ok {
		return true, fmt.Errorf("unknown command: %s. Type 'help' for available commands", name)
	}
	if len(args) != len(cmd.Args) {
		return true, fmt.Errorf("usage: %s", cmd.Usage())
	}

	s.logger.Debug("Executing command", "command", cmd.Name, "args", args)
	return cmd.Handler(args)
}

// Run reads commands until end, EOF or ctx is cancelled. The final game
// state is always printed before returning.
func (s *Shell) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter()
	for _, name := range s.names() {
		completer.Children = append(completer.Children, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.styles.Prompt.Render("♦ "),
		HistoryFile:     s.opts.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "end",
		Stdin:           s.opts.In,
		Stdout:          s.out,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = rl.Close()
		case <-done:
		}
	}()

	s.println(s.styles.Header.Render(s.game.Header()))
	s.println(s.styles.Info.Render("Type 'help' for available commands."))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.println(s.styles.Info.Render("Use 'end' to finish the session"))
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Session interrupted", "reason", ctx.Err())
			} else if !errors.Is(err, io.EOF) {
				s.logger.Error("Failed to read command", "error", err)
			}
			return s.finish()
		}

		more, err := s.Execute(line)
		if err != nil {
			s.println(s.styles.Error.Render("Error: " + err.Error()))
		}
		if !more {
			return err
		}
	}
}

func (s *Shell) finish() error {
	if s.ended {
		return nil
	}
	_, err := s.handleEnd(nil)
	return err
}

func (s *Shell) seat(host bool) func(args []string) (bool, error) {
	return func(args []string) (bool, error) {
		buyin, err := parseAmount(args[1])
		if err != nil {
			return true, err
		}
		return true, s.game.AddPlayer(args[0], buyin, host)
	}
}

func (s *Shell) handleAddOn(args []string) (bool, error) {
	amount, err := parseAmount(args[1])
	if err != nil {
		return true, err
	}
	return true, s.game.AddOn(args[0], amount)
}

func (s *Shell) handleCheck(args []string) (bool, error) {
	p, err := s.game.Player(args[0])
	if err != nil {
		return true, err
	}
	s.println(p.String())
	return true, nil
}

func (s *Shell) cashout(display bool) func(args []string) (bool, error) {
	return func(args []string) (bool, error) {
		stack, err := parseAmount(args[1])
		if err != nil {
			return true, err
		}
		if display {
			p, err := s.game.Player(args[0])
			if err != nil {
				return true, err
			}
			s.println(p.String())
		}
		settlement, err := s.game.Cashout(args[0], stack)
		if err != nil {
			return true, err
		}
		s.println(FormatSettlement(settlement))
		return true, nil
	}
}

func (s *Shell) handleTotal([]string) (bool, error) {
	fmt.Fprintf(s.out, "$%d\n", s.game.TotalMoney())
	return true, nil
}

func (s *Shell) handleSummary([]string) (bool, error) {
	s.println(s.game.String())
	return true, nil
}

func (s *Shell) handleEnd([]string) (bool, error) {
	s.ended = true
	s.println(s.game.String())
	if s.opts.ReportPath == "" {
		return false, nil
	}

	r := report.Build(s.opts.SessionID, s.game)
	if err := report.WriteFile(s.opts.ReportPath, r); err != nil {
		s.logger.Error("Failed to write report", "path", s.opts.ReportPath, "error", err)
		return false, fmt.Errorf("failed to write report: %w", err)
	}
	s.logger.Info("Report written", "path", s.opts.ReportPath, "session", s.opts.SessionID)
	s.println(s.styles.Info.Render("Report written to " + s.opts.ReportPath))
	return false, nil
}

func (s *Shell) handleHelp([]string) (bool, error) {
	s.println(s.styles.Header.Render("Available commands:"))
	for _, name := range s.names() {
		cmd := s.commands[name]
		line := fmt.Sprintf("  %-22s %s", cmd.Usage(), cmd.Description)
		if len(cmd.Aliases) > 0 {
			line += fmt.Sprintf(" (aliases: %s)", strings.Join(cmd.Aliases, ", "))
		}
		s.println(line)
	}
	return true, nil
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

// FormatSettlement renders the settlement summary printed after a cashout.
func FormatSettlement(st ledger.Settlement) string {
	return fmt.Sprintf("\nSUMMARY:\nBUYIN: $%d | CASHOUT: $%d | LEDGER: $%d | PAID RAKE: $%d",
		st.Buyin, st.Cashout, st.Net, st.Rake)
}

// parseAmount accepts whole currency units with an optional leading "$".
func parseAmount(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(arg, "$"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be a whole number", arg)
	}
	return n, nil
}
