package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/ideaforge/internal/cli"
	"github.com/alexanderramin/ideaforge/internal/cli/formatter"
	"github.com/alexanderramin/ideaforge/internal/db"
	"github.com/alexanderramin/ideaforge/internal/intelligence"
	"github.com/alexanderramin/ideaforge/internal/llm"
	"github.com/alexanderramin/ideaforge/internal/repository"
	"github.com/alexanderramin/ideaforge/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Determine DB path: env var or default ~/.ideaforge/ideaforge.db
	dbPath := os.Getenv("IDEAFORGE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".ideaforge", "ideaforge.db")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	userName := userName()

	sessionRepo := repository.NewSQLiteSessionRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	store, err := service.NewSessionStore(ctx, sessionRepo, uow, logger, service.WithUserName(userName))
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	// The responder is only reachable when the LLM is enabled; session
	// management works without it.
	llmCfg := llm.LoadConfig()
	var observer llm.Observer = llm.NoopObserver{}
	if llmCfg.LogCalls {
		observer = llm.NewLogObserver(logger)
	}
	responder := intelligence.NewLLMResponder(llm.NewOllamaClient(llmCfg, observer), observer)

	app := &cli.App{
		Sessions:   store,
		Chat:       service.NewChatService(store, responder, userName, service.NewLogUseCaseObserver(logger)),
		UserName:   userName,
		LLMEnabled: llmCfg.Enabled,
	}

	// Detect interactive terminal for the chat entrypoint and confirmations.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		app.Markdown = formatter.NewMarkdownRenderer(100)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func userName() string {
	for _, v := range []string{os.Getenv("IDEAFORGE_USER_NAME"), os.Getenv("USER")} {
		if name := strings.TrimSpace(v); name != "" {
			return name
		}
	}
	return "friend"
}

func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("IDEAFORGE_LOG_LEVEL"))); err != nil {
		return slog.LevelWarn
	}
	return level
}
