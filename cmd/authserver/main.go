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
	"github.com/jrsteele09/go-mcp-oauth/auth"
	"github.com/jrsteele09/go-mcp-oauth/internal/config"
	"github.com/jrsteele09/go-mcp-oauth/server"
	"github.com/jrsteele09/go-mcp-oauth/server/authflowrepo"
	"github.com/jrsteele09/go-mcp-oauth/token/jwt"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running auth server")
	}
	log.Info().Msg("Auth server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	configureLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authenticator, err := auth.NewEntraAuthenticator(ctx, c)
	if err != nil {
		return err
	}

	tokens, err := jwt.NewTokenIssuer(c)
	if err != nil {
		return err
	}

	authStateRepo, closeRepo, err := newAuthFlowRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	handler, err := server.New(c, authenticator, tokens, authStateRepo)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetAuthServerAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	if c.GetOpenBrowser() {
		openLoginPage(c.GetAuthServerURL() + server.RouteAuthLogin)
	}

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown(httpServer)
}

// newAuthFlowRepo picks Redis when an address is configured, otherwise the
// process-local map.
func newAuthFlowRepo(ctx context.Context, c config.ServerConfig) (authflowrepo.Repo, func(), error) {
	addr := c.GetSessionRedisAddr()
	if addr == "" {
		log.Info().Msg("Storing login state in memory")
		return authflowrepo.NewInMemoryRepo(), func() {}, nil
	}

	repo, err := authflowrepo.NewRedisRepo(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", addr).Msg("Storing login state in Redis")
	return repo, func() {
		if err := repo.Close(); err != nil {
			log.Err(err).Msg("Failed to close Redis client")
		}
	}, nil
}

func configureLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Auth server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func openLoginPage(loginURL string) {
	fmt.Printf("\nOpen %s to sign in\n\n", loginURL)
	if err := browser.OpenURL(loginURL); err != nil {
		log.Warn().Err(err).Msg("Could not open a browser")
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
