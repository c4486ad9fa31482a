package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/banjito/ampcalibration/cmd/dashboard/config"
	"github.com/banjito/ampcalibration/cmd/dashboard/rest"
	"github.com/banjito/ampcalibration/internal/auth"
	"github.com/banjito/ampcalibration/internal/email"
	"github.com/banjito/ampcalibration/internal/healthz"
	ihttp "github.com/banjito/ampcalibration/internal/http"
	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/menu"
	"github.com/banjito/ampcalibration/internal/page"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/retry"
	"github.com/banjito/ampcalibration/internal/session"
	"golang.org/x/sys/unix"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

func main() {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	// Root context to passed to child goroutines. Context will be cancelled if
	// SIGTERM or SIGINT received.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := newRedisClient(ctx, logger)
	sessionManager := session.NewManager(logger, redisClient, config.SessionExpiration())
	localManager := local.NewManager(redisClient, config.SessionExpiration())

	handle := provider.NewHandle()
	pages := page.NewFactory(handle, sessionManager, localManager)

	mg := mailgun.NewMailgun(config.MailgunDomain(), config.MailgunAPIKey())
	emailer := email.NewMailgunEmailer(mg)

	health := healthz.NewHTTP(handle)

	api := rest.NewAPI(
		logger,
		pages,
		menu.New(menu.Links{
			AmpcalOS: config.AmpcalOSURL(),
			Vault:    config.VaultURL(),
		}),
		emailer,
		health,
		rest.Options{
			StaticDir: config.StaticDir(),
			Cookie: ihttp.CookieOptions{
				Domain:   config.CookieDomain(),
				Secure:   config.CookieSecure(),
				SameSite: config.CookieSameSite(),
				MaxAge:   config.CookieMaxAge(),
			},
			AllowedOrigins:  config.AllowedOrigins(),
			HookSecret:      config.HookSecret(),
			Auth:            auth.DefaultOptions(),
			MinAuthDuration: time.Second,
		},
	)

	srv := http.Server{
		Handler:      api.Mux,
		Addr:         fmt.Sprintf(":%d", config.Port()),
		ReadTimeout:  config.HTTPReadTimeout(),
		WriteTimeout: config.HTTPWriteTimeout(),
	}

	// Waitgroup to ensure all supporting goroutines close properly on
	// application close.
	var wg sync.WaitGroup

	// Launch goroutine that listens for SIGTERM and SIGINT. In the event either
	// occurs, cancel the context.
	signalc := make(chan os.Signal, 1)
	signal.Notify(signalc, unix.SIGTERM, unix.SIGINT)

	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
			return
		case <-signalc:
			cancel()
		}
	}()

	// Bootstrap the provider client in the background; pages answer that the
	// client is not initialized until it is.
	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := provider.Bootstrap(
			ctx,
			logger,
			provider.Config{
				URL:     config.ProviderURL(),
				AnonKey: config.ProviderAnonKey(),
			},
			handle,
			retry.Policy{
				Attempts: config.ProviderAttempts(),
				Delay:    config.ProviderDelay(),
			},
		); err != nil {
			logger.Error("[Startup] Failed to initialize provider client.", zap.Error(err))
		}
	}()

	// Wait for root context to close in separate goroutine. When goroutine
	// closes call http.Server.Shutdown to gracefully shutdown http API.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		health.Sick()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("[Startup] Failed to correctly shutdown dashboard.", zap.Error(err))
		}
	}()

	health.Healthy()
	if config.HookSecret() == "" {
		logger.Warn("[Startup] Hook secret unset; send-otp-email hook will reject every call.")
	}
	logger.Sugar().Infof("[Startup] dashboard listening at :%d", config.Port())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		wg.Wait()
		return
	}
	if err != nil {
		logger.Panic("[Startup] Failed to listen and serve dashboard.", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	return logger
}

func newRedisClient(ctx context.Context, logger *zap.Logger) *redisv8.Client {
	client := redisv8.NewClient(&redisv8.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Panic("[Startup] Failed to initialize Redis client.", zap.Error(err))
	}
	return client
}
