// Command gdmc-bridge exposes a GDMC world backend to agents.
//
// It supports two modes:
//  1. "stdio-mcp" (default) – runs an MCP stdio server for editor and agent hosts
//  2. "server" – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//
// Flags control the listen address, config file, debug logging, version
// output, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/voxelforge/gdmc-bridge/api"
	"github.com/voxelforge/gdmc-bridge/bridge"
	"github.com/voxelforge/gdmc-bridge/bridge/session"
	"github.com/voxelforge/gdmc-bridge/config"
	"github.com/voxelforge/gdmc-bridge/journal"
	"github.com/voxelforge/gdmc-bridge/transport/mcp"
	"github.com/voxelforge/gdmc-bridge/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "GDMC Bridge"
)

// Configuration flags control how the bridge starts and which services are enabled.
var (
	configPath   = flag.String("config", getConfigPathDefault(), "Path to YAML config file (optional)")
	httpAddr     = flag.String("addr", "", "HTTP listen address (overrides config)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel (server mode only)")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigPathDefault returns the default config file path.
// It honors the GDMC_CONFIG environment variable, then falls back to none.
func getConfigPathDefault() string {
	if path := os.Getenv("GDMC_CONFIG"); path != "" {
		return path
	}
	return ""
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server (default)\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Run MCP stdio server against localhost:9000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config bridge.yaml      # Run with a config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s server                   # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s server -addr :9090       # Run HTTP server on port 9090\n", os.Args[0])
	}
}

// main parses flags, starts the world session, and runs the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging. Stdio mode must keep stdout clean for JSON-RPC, so all
	// logging goes to stderr in every mode.
	log.SetOutput(os.Stderr)
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "stdio-mcp" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	// Start the world session. A dead backend is fatal at startup; agents
	// should never see a bridge that silently cannot reach the world.
	sessions := session.NewManager()
	startCtx, startCancel := context.WithTimeout(context.Background(), cfg.Timeout())
	err = sessions.Start(startCtx, cfg)
	startCancel()
	if err != nil {
		log.Fatalf("Failed to start world session (is the world client running at %s?): %v", cfg.Host, err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer stopCancel()
		sessions.Stop(stopCtx)
	}()

	dispatcher := bridge.NewDispatcher(sessions, cfg.Workers)
	queries := bridge.NewQueries(sessions, dispatcher.Slots())

	// Attach the operation journal when configured.
	var journalReader api.JournalReader
	if cfg.JournalPath != "" {
		jr, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("Failed to open operation journal at %s: %v", cfg.JournalPath, err)
		}
		defer func() {
			if err := jr.Close(); err != nil {
				log.Printf("Error closing operation journal: %v", err)
			}
		}()
		dispatcher.SetRecorder(jr)
		journalReader = jr
		log.Printf("Operation journal: %s", cfg.JournalPath)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(dispatcher, queries)

	case "server", "http":
		runHTTPServer(cfg, dispatcher, queries, journalReader)

	default:
		log.Fatalf("Unknown mode: %s. Use 'stdio-mcp' (default) or 'server'", mode)
	}
}

// runStdioMCP serves MCP over stdin/stdout until the host closes the pipe.
func runStdioMCP(dispatcher *bridge.Dispatcher, queries *bridge.Queries) {
	mcpServer := mcp.NewServer(dispatcher, queries)
	log.Println("MCP stdio server ready")
	if err := mcpServer.Serve(); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp JSON-RPC endpoint. If ngrok is enabled (via flag or environment), it
// also provisions a public tunnel.
func runHTTPServer(cfg config.Config, dispatcher *bridge.Dispatcher, queries *bridge.Queries, journalReader api.JournalReader) {
	// Create WebSocket hub and wire it as the mutation event sink
	hub := websocket.NewHub()
	go hub.Run()
	dispatcher.SetEventSink(hub)

	// Create API server with the MCP JSON-RPC endpoint mounted at /mcp
	apiServer := api.NewServer(dispatcher, queries, hub, journalReader)
	mcpServer := mcp.NewServer(dispatcher, queries)
	apiServer.MountMCP(mcpServer.HTTPHandler())

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		log.Printf("REST API: http://%s/api", cfg.HTTPAddr)
		log.Printf("WebSocket: ws://%s/ws", cfg.HTTPAddr)
		log.Printf("MCP endpoint: http://%s/mcp", cfg.HTTPAddr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	// Start ngrok tunnel if enabled
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, apiServer)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel serves the API through a public ngrok endpoint until ctx is
// cancelled.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	// Get auth token from flag or environment (support both naming conventions)
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
		if authToken == "" {
			authToken = os.Getenv("NGROK_AUTH_TOKEN")
		}
	}

	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	// Get domain from flag or environment
	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(authToken),
	)
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	// Serve HTTP through ngrok tunnel
	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}
