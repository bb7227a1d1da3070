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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/jrsteele09/eshtarek-portal/account"
	"github.com/jrsteele09/eshtarek-portal/internal/config"
	"github.com/jrsteele09/eshtarek-portal/internal/logging"
	"github.com/jrsteele09/eshtarek-portal/payments"
	"github.com/jrsteele09/eshtarek-portal/server"
	"github.com/jrsteele09/eshtarek-portal/sessions"
)

const (
	housekeepingInterval = time.Minute
	limiterIdleTimeout   = 10 * time.Minute
)

func main() {
	fs := config.Flags(os.Args[0])
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if help, _ := fs.GetBool("help"); help {
		fs.PrintDefaults()
		return
	}

	if err := run(fs); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(fs *flag.FlagSet) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	envFile, _ := fs.GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	c, err := config.New(fs)
	if err != nil {
		return err
	}
	logging.NewLogger(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := sessionRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeRepo()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = c.GetAPITimeout()
	accounts := account.New(c.GetAPIBaseURL(), transport, c.GetAdminURL(), payments.NewMockGateway(c))

	handler, err := server.New(c, accounts, repo)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	go housekeeping(ctx, handler.Limiter(), repo)

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(srv) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// sessionRepo builds the session store selected by SESSION_STORE
func sessionRepo(ctx context.Context, c config.SessionConfig) (sessions.Repo, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session store")
		return sessions.NewRedisRepo(client, c.GetSessionTTL()), func() { _ = client.Close() }, nil
	case config.SessionStoreMemory, "":
		log.Info().Msg("Using in-memory session store")
		return sessions.NewInMemoryRepo(c.GetSessionTTL()), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.GetSessionStore())
	}
}

// housekeeping drops idle rate limiters and, for the in-memory store, expired sessions
func housekeeping(ctx context.Context, limiter *server.RateLimiter, repo sessions.Repo) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(limiterIdleTimeout)
			if mem, ok := repo.(*sessions.InMemoryRepo); ok {
				if n := mem.DeleteExpired(); n > 0 {
					log.Debug().Int("count", n).Msg("expired sessions removed")
				}
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
