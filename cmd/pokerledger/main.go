package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/pokerledger/internal/config"
	"github.com/lox/pokerledger/internal/ledger"
	"github.com/lox/pokerledger/internal/report"
	"github.com/lox/pokerledger/internal/shell"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Config      string           `arg:"" type:"existingfile" help:"Table config (.toml or .hcl)"`
	LogFile     string           `default:"pokerledger.log" help:"Log file path"`
	LogLevel    string           `default:"info" enum:"debug,info,warn,error" env:"POKERLEDGER_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	HistoryFile string           `help:"Command history file"`
	Report      string           `env:"POKERLEDGER_REPORT" help:"Write a TOML session report here on end"`
	NoColor     bool             `help:"Disable colored output"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerledger"),
		kong.Description("Poker ledger tracker utility for home games."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func (c *CLI) Run() error {
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()

	logger := newLogger(logFile, c.LogLevel)
	sessionID := report.NewSessionID()
	logger = logger.With("session", sessionID)

	table, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	game, err := ledger.FromTable(table, ledger.WithLogger(logger))
	if err != nil {
		logger.Error("Improper config", "path", c.Config, "error", err)
		return fmt.Errorf("improper config %s: %w", c.Config, err)
	}
	logger.Info("Session started", "config", c.Config, "table", game.Header())

	sh := shell.New(game, shell.Options{
		Logger:      logger,
		HistoryFile: c.HistoryFile,
		ReportPath:  c.Report,
		SessionID:   sessionID,
		NoColor:     c.NoColor,
	})

	runCtx := setupSignalHandler(logger)
	err = sh.Run(runCtx)
	logger.Info("Session ended", "total_on_table", game.TotalMoney(), "cashouts", len(game.Settlements()))
	return err
}

func newLogger(f *os.File, level string) *log.Logger {
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "pokerledger",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func setupSignalHandler(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, ending session", "signal", sig.String())
		cancel()
	}()

	return ctx
}
