// Command samegame starts the Same Game server.
//
// It supports three commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none
//     is available
//  3. "validate" checks game configuration files
//
// Flags control host/port, config and data directories, debug logging and
// optional ngrok tunneling for easy external access during development. Every
// flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/same-game/api"
	"github.com/wricardo/same-game/game/config"
	"github.com/wricardo/same-game/game/highscore"
	"github.com/wricardo/same-game/game/service"
	"github.com/wricardo/same-game/game/session"
	"github.com/wricardo/same-game/transport/mcp"
	"github.com/wricardo/same-game/transport/websocket"
	"github.com/wricardo/same-game/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Same Game Server"
)

const (
	sessionMaxAge        = 24 * time.Hour
	sessionCleanupPeriod = time.Hour
	filesystemSyncPeriod = 5 * time.Second
	shutdownTimeout      = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		log.Debug("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the CLI. The root command runs the HTTP server when no
// subcommand is given.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "samegame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "Directory for saved sessions and high scores",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			}
			return ctx, nil
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  mcpAction,
			},
			{
				Name:      "validate",
				Usage:     "Validate game configuration files",
				ArgsUsage: "[files...]",
				Action:    validateAction,
			},
		},
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log.WithField("version", Version).Infof("Starting %s", AppName)

	svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("data-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	svcs.startBackgroundRoutines(ctx)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	err = runHTTPServer(ctx, svcs, addr, ngrokOptions{
		enabled:   cmd.Bool("ngrok"),
		authToken: cmd.String("ngrok-auth"),
		domain:    cmd.String("ngrok-domain"),
	})

	if saveErr := svcs.sessions.SaveAllSessions(); saveErr != nil {
		log.WithError(saveErr).Warn("Failed to save sessions on shutdown")
	}
	return err
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	svcs, err := initializeServices(cmd.String("config-dir"), cmd.String("data-dir"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	svcs.startBackgroundRoutines(ctx)
	defer func() {
		if err := svcs.sessions.SaveAllSessions(); err != nil {
			log.WithError(err).Warn("Failed to save sessions on exit")
		}
	}()

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	return runStdioMCPWithInternalServer(ctx, svcs.game, externalURL)
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	var results []validate.Result
	if files := cmd.Args().Slice(); len(files) > 0 {
		for _, f := range files {
			results = append(results, validate.File(f))
		}
	} else {
		var err error
		results, err = validate.Dir(cmd.String("config-dir"))
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no configuration files found in %s", cmd.String("config-dir"))
		}
	}

	if !validate.Report(os.Stdout, results) {
		return errors.New("configuration validation failed")
	}
	return nil
}

// services bundles what the commands need from initializeServices
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
}

// initializeServices wires high scores, configs, sessions and the game
// service, restoring any sessions saved under dataDir.
func initializeServices(configDir, dataDir string) (*services, error) {
	scores, err := highscore.NewRegistry(filepath.Join(dataDir, "highscores"))
	if err != nil {
		return nil, fmt.Errorf("failed to create high score registry: %w", err)
	}

	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(filepath.Join(dataDir, "sessions"), configManager, scores)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(scores, persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("Failed to load persisted sessions")
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager, scores),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

func (s *services) startBackgroundRoutines(ctx context.Context) {
	go sessionCleanupRoutine(ctx, s.sessions, sessionCleanupPeriod)
	go filesystemSyncRoutine(ctx, s.sessions, s.persistence, filesystemSyncPeriod)
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.WithField("removed", removed).Info("Cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory whose save files were
// deleted out from under the server.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, period time.Duration) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned := 0
			for _, sess := range manager.List() {
				if persistence.Exists(sess.ID) {
					continue
				}
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.WithField("session_id", sess.ID).Debug("Pruned session from memory (file deleted)")
				}
			}
			if pruned > 0 {
				log.WithField("pruned", pruned).Info("Filesystem sync pruned orphaned sessions")
			}
		}
	}
}

// newHandler mounts the API at the root and the MCP JSON-RPC endpoint at /mcp
func newHandler(apiServer http.Handler, mcpServer *server.MCPServer) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

type ngrokOptions struct {
	enabled   bool
	authToken string
	domain    string
}

// runHTTPServer serves the API, WebSocket hub and /mcp endpoint on addr until
// ctx is cancelled. If ngrok is enabled it also serves through a public tunnel.
func runHTTPServer(ctx context.Context, svcs *services, addr string, ngrokOpts ngrokOptions) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	addr = listener.Addr().String()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(svcs.game, hub)
	mcpClient := mcp.NewClient("http://" + addr)
	handler := newHandler(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(log.Fields{
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if ngrokOpts.enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, handler, ngrokOpts)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		wg.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok HTTP endpoint until ctx is
// cancelled
func runNgrokTunnel(ctx context.Context, handler http.Handler, opts ngrokOptions) {
	if opts.authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.domain))
		log.WithField("domain", opts.domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(log.Fields{
		"rest":      ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("Ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// externalAPIAvailable reports whether a game API answers its health check
// at baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses the API at
// externalURL when one answers; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService, externalURL string) error {
	baseURL := externalURL

	log.WithField("url", externalURL).Debug("Checking for external API server")
	if externalAPIAvailable(ctx, externalURL) {
		log.WithField("url", externalURL).Info("External API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.WithField("url", baseURL).Info("Started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
