package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cold-outreach/internal/server"
	"github.com/jonathan/cold-outreach/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes /generate-email and the portfolio and history endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config, default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var history server.History
	if a.database != nil {
		history = a.database
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   ratelimit.LoadConfig(os.Getenv, cfg.RateLimit, cfg.RateBurst),
	}, a.pipeline, a.index, history)

	g, gCtx := errgroup.WithContext(ctx)

	// A failed initial load is not fatal; /portfolio/reload can retry it
	g.Go(func() error {
		if err := a.index.Load(gCtx); err != nil {
			log.Printf("Warning: initial portfolio load failed: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.Start(gCtx)
	})

	return g.Wait()
}
