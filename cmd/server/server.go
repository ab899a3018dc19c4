package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/martinsuchenak/thingprobe/internal/api"
	"github.com/martinsuchenak/thingprobe/internal/config"
	"github.com/martinsuchenak/thingprobe/internal/log"
	"github.com/martinsuchenak/thingprobe/internal/mcp"
	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/martinsuchenak/thingprobe/internal/thing"
	"github.com/martinsuchenak/thingprobe/pkg/device"
	"github.com/paularlott/cli"
)

// ServerConfig holds configuration for running the server
type ServerConfig struct {
	Config     *config.Config
	APIHandler *api.Handler
	MCPServer  *mcp.Server
}

// NewHandler builds the routed and wrapped HTTP handler
func NewHandler(cfg *ServerConfig) http.Handler {
	mux := http.NewServeMux()

	cfg.APIHandler.RegisterRoutes(mux)
	mux.HandleFunc("/mcp", cfg.MCPServer.GetHTTPHandler())

	var handler http.Handler = mux
	if cfg.Config.IsAPIAuthEnabled() {
		handler = api.AuthMiddleware(cfg.Config.APIAuthToken, handler)
	}
	return api.SecurityHeadersMiddleware(handler)
}

// RunServer starts the probe server and blocks until it is stopped. A
// non-loopback address is refused unless both endpoints need a token.
func RunServer(ctx context.Context, cfg *ServerConfig) error {
	if err := cfg.Config.ValidateServer(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Config.ListenAddr,
		Handler:           NewHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		log.Info("Shutting down server...")
		server.Close()
	}()

	log.Info("Starting thingprobe server", "addr", cfg.Config.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.Config.ListenAddr+"/api/probe")
	log.Info("MCP available", "url", "http://localhost"+cfg.Config.ListenAddr+"/mcp")
	if cfg.Config.IsAPIAuthEnabled() {
		log.Info("API authentication enabled")
	}
	cfg.MCPServer.LogStartup()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}

// FetcherFactory returns a factory building thing clients with the
// configured timeout
func FetcherFactory(cfg *config.Config) device.FetcherFactory {
	return func(target model.Target) device.Fetcher {
		return thing.NewClient(target, thing.WithTimeout(cfg.Timeout))
	}
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the probe server",
		Description: "Serve the base test over HTTP (/api/probe, /api/describe) and MCP (/mcp)",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(config.ServerOptions(cmd))
			log.Info("Configuration loaded", "listen_addr", cfg.ListenAddr, "timeout", cfg.Timeout)

			newFetcher := FetcherFactory(cfg)

			return RunServer(ctx, &ServerConfig{
				Config:     cfg,
				APIHandler: api.NewHandler(newFetcher),
				MCPServer:  mcp.NewServer(newFetcher, cfg.MCPAuthToken),
			})
		},
	}
}
