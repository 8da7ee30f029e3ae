package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urbanatlas/urban-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server failed", "error", err)
		}
	case sig := <-stop:
		a.Log.Info("Shutting down", "signal", sig.String())
	}
}
