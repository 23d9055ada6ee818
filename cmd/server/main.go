// Command server runs the flashdeck HTTP API: the study queue, card
// reviews, sessions, and the adaptive difficulty endpoints.
//
// Exit codes: 0 = clean shutdown, 1 = startup or runtime error.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flashdeck/flashdeck-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("application error: %v", err)
		os.Exit(1)
	}
}
