package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/PrideVRInc/VRCAuthProxy/internal/config"
	proxyerr "github.com/PrideVRInc/VRCAuthProxy/internal/errors"
	"github.com/PrideVRInc/VRCAuthProxy/internal/metrics"
	"github.com/PrideVRInc/VRCAuthProxy/internal/platform/logging"
	"github.com/PrideVRInc/VRCAuthProxy/internal/platform/version"
	"github.com/PrideVRInc/VRCAuthProxy/internal/pool"
	"github.com/PrideVRInc/VRCAuthProxy/internal/server"
	"github.com/PrideVRInc/VRCAuthProxy/internal/vrchat"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := config.LoadAccounts(cfg); err != nil {
		if errors.Is(err, config.ErrNoAccountsFile) {
			return cfg
		}
		log.Fatalf("Failed to load accounts: %v", err)
	}
	return cfg
}

// startLogins launches one login goroutine per configured account. Successful
// sessions land in the pool in completion order; failures only shrink the
// eventual pool. The server starts accepting traffic without waiting.
func startLogins(cfg *config.Config, sessions *pool.Pool, clock clockwork.Clock) {
	client := vrchat.NewClient(cfg.UpstreamAPIURL, clock)

	var wg sync.WaitGroup
	for _, account := range cfg.Accounts {
		wg.Add(1)
		go func(account config.Account) {
			defer wg.Done()

			slog.Info("Logging in", "username", account.Username)
			start := time.Now()
			session, err := client.Login(context.Background(), account)
			metrics.LoginDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				serr := proxyerr.AsStructuredError(err)
				metrics.LoginAttemptsTotal.WithLabelValues(string(serr.Type)).Inc()
				proxyerr.Log(context.Background(), serr)
				return
			}

			metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
			sessions.Add(session)
			slog.Info("Logged in", "username", account.Username, "display_name", session.DisplayName)
		}(account)
	}

	go func() {
		wg.Wait()
		slog.Info("Startup logins finished", "pooled", sessions.Len(), "configured", len(cfg.Accounts))
	}()
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "accounts", len(cfg.Accounts))
	if len(cfg.Accounts) == 0 {
		slog.Warn("No accounts configured, starting with an empty session pool", "accounts_file", cfg.AccountsFile)
	}

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	sessions := pool.New()
	startLogins(cfg, sessions, clock)

	srv := server.NewServer(cfg, sessions)
	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
