// README: Terminal chat with the concierge; uses the configured extractor and stores (rules and memory by default).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"concierge/internal/app"
	"concierge/internal/config"
	"concierge/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	// keep the terminal for the conversation
	logger, err := infra.NewLogger(cfg.Log.Env, "warn")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("wire concierge", zap.Error(err))
	}
	defer a.Close()

	threadID := uuid.NewString()
	fmt.Printf("Thread %s (provider: %s). Type \"quit\" to exit.\n\n", threadID, cfg.AI.Provider)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		if msg == "quit" || msg == "exit" {
			break
		}
		res, err := a.Concierge.Turn(ctx, threadID, msg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("\nconcierge [%s]>\n%s\n\n", res.State.Phase, res.Reply())
	}
}
