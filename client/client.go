package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"

	"session-lab/domain"
	grpcclient "session-lab/grpc/client"
	"session-lab/projection"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress     string        `env:"SESSION_SERVER_ADDR,default=localhost:8080"`
	SessionCode       string        `env:"SESSION_CODE,required=true"`
	DisplayName       string        `env:"DISPLAY_NAME,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=10s"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run joins a session by code and prints the live board until interrupted or the session ends.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, conn, err := grpcclient.Dial(log, config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	joined, err := client.Join(ctx, config.SessionCode, config.DisplayName)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to join %s: %w", config.SessionCode, err)
	}
	log.Info("Joined session",
		"session_id", joined.Session.ID,
		"participant_id", joined.Participant.ID,
		"rejoined", joined.Rejoined,
		"online", joined.OnlineCount)
	if joined.CapacityWarning {
		color.Yellow.Println("The session is over its recommended capacity")
	}

	go client.KeepAlive(ctx, config.HeartbeatInterval)

	board := projection.NewBoard()
	if err := client.Follow(ctx, joined.Session.ID, board, render); err != nil {
		return exitRuntime, fmt.Errorf("stream failed: %w", err)
	}
	if board.State.State == domain.StateEnded {
		color.Green.Println("Session ended")
	}
	return exitOK, nil
}

func render(b *projection.Board) {
	state := b.State
	color.Cyan.Printf("[%s] submodule=%s question=%s online=%d\n",
		state.State, state.CurrentSubmodule, state.CurrentQuestion, len(b.Online))
	if state.CurrentQuestion == "" {
		return
	}
	tally, ok := b.Tally(state.CurrentQuestion)
	if !ok {
		return
	}
	for i, n := range tally.Counts {
		fmt.Printf("  option %-3d %d\n", i, n)
	}
	for _, w := range tally.Words {
		fmt.Printf("  %-20s %d\n", w.Word, w.Count)
	}
	fmt.Printf("  responses=%d v%d\n", tally.Responses, tally.Version)
}
