package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-trakt-server/deviceauth"
	"github.com/jrsteele09/go-trakt-server/internal/config"
	"github.com/jrsteele09/go-trakt-server/server"
	"github.com/jrsteele09/go-trakt-server/token"
	"github.com/jrsteele09/go-trakt-server/trakt"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	creds, err := config.LoadCredentials(c.GetCredentialsPath())
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	store := token.NewFileStore(c.GetTokenPath())
	client := trakt.NewClient(c.GetTraktAPIURL(), creds, logger)
	authenticator := deviceauth.New(client, store, logger)
	client.OnTokenRefreshed(authenticator)

	// Missing token file triggers device authentication before the server
	// starts accepting requests.
	t, err := authenticator.LoadOrAuthenticate(context.Background())
	if err != nil {
		return fmt.Errorf("failed to obtain authorization: %w", err)
	}
	client.SetToken(t)

	srv := &http.Server{Addr: c.GetPort(), Handler: server.New(c, client, logger)}
	go listenAndServe(srv)
	waitForStopSignal()
	returnError = shutdown(srv)
	return returnError
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
