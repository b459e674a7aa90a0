package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/joke"
	"github.com/Tyrowin/roomchat/internal/log"
	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "roomchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	config, err := server.NewConfigFromEnv()
	if err != nil {
		return err
	}

	log.Init(log.Config{Level: config.LogLevel, Pretty: config.LogPretty, ServiceName: "roomchat"})
	logger := log.L()
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}

	rooms := chat.NewRegistry(logger)
	jokes := joke.NewClient(config.JokeURL)
	chatServer := server.New(config, rooms, jokes, logger)

	httpServer := server.CreateServer(config.Port, chatServer.SetupRoutes())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.StartServer(httpServer, logger); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutdown signal received")

		httpErr := server.ShutdownServer(httpServer, config.ShutdownTimeout, logger)
		hubErr := chatServer.Shutdown(config.ShutdownTimeout)
		return errors.Join(httpErr, hubErr)
	})

	return g.Wait()
}
