package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/whitekid/goxp/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
