// Package main implements scry-cli, a terminal client that submits study text
// to a scry-gen server, waits for the generation and lets the user review the
// proposed flashcards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phrazzld/scry-gen/internal/client"
	"github.com/phrazzld/scry-gen/internal/config"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/poll"
	"github.com/phrazzld/scry-gen/internal/service/auth"
)

const defaultAPIURL = "http://localhost:8080"

var (
	errMissingCredentials = errors.New("set SCRY_TOKEN, or SCRY_AUTH_JWT_SECRET and SCRY_USER_ID")
	errInvalidUserID      = errors.New("SCRY_USER_ID is not a valid UUID")
)

// cliConfig holds the settings read from the environment.
type cliConfig struct {
	APIURL    string
	Token     string
	JWTSecret string
	UserID    string
	LogFile   string
}

func main() {
	file := flag.String("file", "", "read the study text from a file and submit it immediately")
	flag.Usage = printUsage
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	loadEnvFiles()
	cfg := configFromEnv(os.Getenv)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, closeLog, err := setupLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	token, err := resolveToken(ctx, cfg)
	if err != nil {
		return err
	}

	var text string
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		text = strings.TrimSpace(string(raw))
	}

	api, err := client.New(cfg.APIURL, token, client.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	updates := make(chan poll.Update)
	syncer, err := poll.New(api, func(u poll.Update) {
		select {
		case updates <- u:
		case <-ctx.Done():
		}
	}, poll.Config{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create synchronizer: %w", err)
	}

	p := tea.NewProgram(newModel(ctx, api, syncer, updates, text), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	syncer.Stop()
	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return nil
}

// loadEnvFiles loads the first .env file found. Variables already set in the
// environment win.
func loadEnvFiles() {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "scry", ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func configFromEnv(getenv func(string) string) cliConfig {
	cfg := cliConfig{
		APIURL:    getenv("SCRY_API_URL"),
		Token:     getenv("SCRY_TOKEN"),
		JWTSecret: getenv("SCRY_AUTH_JWT_SECRET"),
		UserID:    getenv("SCRY_USER_ID"),
		LogFile:   getenv("SCRY_CLI_LOG_FILE"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return cfg
}

// resolveToken returns SCRY_TOKEN when set, otherwise mints an access token
// for SCRY_USER_ID with the server's signing secret.
func resolveToken(ctx context.Context, cfg cliConfig) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if cfg.JWTSecret == "" || cfg.UserID == "" {
		return "", errMissingCredentials
	}
	userID, err := uuid.Parse(cfg.UserID)
	if err != nil || userID == uuid.Nil {
		return "", errInvalidUserID
	}

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            cfg.JWTSecret,
		TokenLifetimeMinutes: 60,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create token signer: %w", err)
	}
	return jwtService.GenerateToken(ctx, userID)
}

// setupLogger writes debug logs to path, or discards them when path is empty;
// the terminal belongs to the UI.
func setupLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log := logger.SetupWithWriter(config.ServerConfig{LogLevel: "debug"}, f)
	return log, func() { _ = f.Close() }, nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `scry-cli - generate flashcards from study text

Usage:
  scry-cli [-file path]

Flags:
  -file path   submit the contents of path instead of typing the text

Environment variables (also read from ./.env or ~/.config/scry/.env):
  SCRY_API_URL           server address (default http://localhost:8080)
  SCRY_TOKEN             bearer token to use as-is
  SCRY_AUTH_JWT_SECRET   server signing secret, used with SCRY_USER_ID to mint a token
  SCRY_USER_ID           user id (UUID) for minted tokens
  SCRY_CLI_LOG_FILE      write debug logs to this file
`)
}
