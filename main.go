// Command racetrack starts the racetrack cheat analyzer server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, maze and run directories, the default worker
// count, debug logging, version output, and optional ngrok tunneling for
// external access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/racetrack/api"
	"github.com/wricardo/mcp-training/racetrack/game/config"
	"github.com/wricardo/mcp-training/racetrack/game/runs"
	"github.com/wricardo/mcp-training/racetrack/game/service"
	"github.com/wricardo/mcp-training/racetrack/transport/mcp"
	"github.com/wricardo/mcp-training/racetrack/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Racetrack Cheat Analyzer"
)

// Run retention and sync intervals
const (
	runRetention       = 24 * time.Hour
	runCleanupInterval = time.Hour
	runSyncInterval    = 5 * time.Second
)

// externalProbeTarget is where stdio-mcp mode looks for a running server
const externalProbeTarget = "http://localhost:8080"

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing maze files")
	runsDir      = flag.String("runs-dir", envDefault("RUNS_DIR", "runs"), "Directory where analysis runs are persisted")
	workers      = flag.Int("workers", workersDefault(), "Default number of counting workers (or CHEAT_WORKERS env var)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment value for key, or fallback when unset
func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// workersDefault honors CHEAT_WORKERS and falls back to the CPU count
func workersDefault() int {
	if value := os.Getenv("CHEAT_WORKERS"); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, metrics and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -workers 8 -debug    # Count with 8 workers, verbose logs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp            # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	setupLogging(os.Stderr, *debug)

	if envErr == nil {
		slog.Info("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		slog.Warn("error loading .env file", "error", envErr)
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	slog.Info("starting", "app", AppName, "version", Version, "mode", mode, "workers", *workers)

	mazeService, runManager, err := initializeServices(*configDir, *runsDir, *workers)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runCleanupRoutine(ctx, runManager, runCleanupInterval)
	go runSyncRoutine(ctx, runManager, runSyncInterval)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		if err := runStdioMCPWithInternalServer(mazeService); err != nil {
			slog.Error("MCP stdio server error", "error", err)
			os.Exit(1)
		}

	case "server", "http":
		runHTTPServer(ctx, mazeService)

	default:
		slog.Error("unknown mode, use 'server' (default) or 'stdio-mcp'", "mode", mode)
		os.Exit(1)
	}
}

// setupLogging installs a text handler on w as the default logger
func setupLogging(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// initializeServices wires the maze catalog, the run store and the maze
// service. Persisted runs are loaded before the service is returned.
func initializeServices(configDir, runsDir string, workers int) (service.MazeService, *runs.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := runs.NewFilePersistence(runsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create run persistence: %w", err)
	}

	runManager := runs.NewManagerWithPersistence(persistence)
	if err := runManager.LoadPersistedRuns(); err != nil {
		slog.Warn("failed to load persisted runs", "error", err)
	}

	mazeService := service.NewMazeService(configManager, runManager, service.WithWorkers(workers))
	return mazeService, runManager, nil
}

// runCleanupRoutine periodically removes runs older than the retention window
func runCleanupRoutine(ctx context.Context, manager *runs.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredRuns(runRetention); removed > 0 {
				slog.Info("cleaned up expired runs", "count", removed)
			}
		}
	}
}

// runSyncRoutine periodically drops in-memory runs whose files were deleted
func runSyncRoutine(ctx context.Context, manager *runs.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.PruneOrphans(); pruned > 0 {
				slog.Info("filesystem sync pruned orphaned runs", "count", pruned)
			}
		}
	}
}

// newRootHandler mounts the API server at / and the MCP JSON-RPC endpoint
// at /mcp
func newRootHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, mazeService service.MazeService) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(mazeService, hub)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	rootHandler := newRootHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		slog.Info("HTTP server listening", "addr", addr)
		slog.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?maze=<maze_id>", addr),
			"metrics", fmt.Sprintf("http://%s/metrics", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	if ngrokShouldRun() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, rootHandler)
		}()
	}

	sig := <-stop
	slog.Info("shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	slog.Info("server stopped")
}

// ngrokShouldRun checks the flag, then NGROK_ENABLED
func ngrokShouldRun() bool {
	if *ngrokEnabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

// ngrokAuthToken resolves the token from the flag or either env spelling
func ngrokAuthToken() string {
	if *ngrokAuth != "" {
		return *ngrokAuth
	}
	if token := os.Getenv("NGROK_AUTHTOKEN"); token != "" {
		return token
	}
	return os.Getenv("NGROK_AUTH_TOKEN")
}

// serveNgrok tunnels handler through ngrok until ctx is cancelled
func serveNgrok(ctx context.Context, handler http.Handler) {
	authToken := ngrokAuthToken()
	if authToken == "" {
		slog.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		slog.Info("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	slog.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		slog.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			slog.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	slog.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?maze=<maze_id>",
		"mcp", ngrokURL+"/mcp")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		slog.Error("ngrok server error", "error", err)
	}
	slog.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers at baseURL
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL
func startInternalServer(mazeService service.MazeService) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(mazeService, hub)}
	httpServer.RegisterOnShutdown(hub.Stop)

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("internal HTTP server error", "error", err)
		}
	}()

	return fmt.Sprintf("http://%s", listener.Addr().String()), httpServer, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an external API at http://localhost:8080 when one answers,
// otherwise it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(mazeService service.MazeService) error {
	baseURL := externalProbeTarget
	slog.Info("checking for external API server", "url", baseURL)

	if externalAPIAvailable(baseURL) {
		slog.Info("external API server found, using it for MCP", "url", baseURL)
	} else {
		internalURL, httpServer, err := startInternalServer(mazeService)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		baseURL = internalURL
		slog.Info("started internal HTTP server for MCP stdio", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	slog.Info("MCP stdio server ready", "api", baseURL)
	return server.ServeStdio(mcpClient.GetMCPServer())
}
