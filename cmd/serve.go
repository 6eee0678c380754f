package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/calegria/shotwork/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the task API server.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	if r.config.Server.RateLimit > 0 {
		router.Use(server.RateLimit(r.config.Server.RateLimit, r.config.Server.RateBurst))
	}

	router.Handler(&server.HealthHandler{})
	router.Handler(server.NewTaskHandler(r.service, r.resolver, r.logger))

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Shut down cleanly when the CLI context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	r.logger.Info("starting task API server", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
