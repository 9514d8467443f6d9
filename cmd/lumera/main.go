package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lumera.app/lumera/internal/api"
	"lumera.app/lumera/internal/config"
	"lumera.app/lumera/internal/core"
	"lumera.app/lumera/internal/logger"
	"lumera.app/lumera/internal/platform"
	"lumera.app/lumera/internal/store"
)

var (
	version = "0.1.0"
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lumera",
		Short:   "Lumera, a caring digital companion",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			if dbPath != "" {
				config.AppConfig.DatabaseURL = dbPath
			}
			return logger.Init(config.AppConfig.LogLevel, config.AppConfig.LogFormat, config.AppConfig.LogOutputPath)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_URL)")

	rootCmd.AddCommand(serveCmd(), chatCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the long-lived services shared by every command.
type app struct {
	db        *store.SQLiteStore
	llm       *core.LLMService
	companion *core.Companion
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.AppConfig

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	llm, err := core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ReplyTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	speech := core.NewSpeechAdapter(recognizer(cfg.STTCommand), synthesizer(cfg.TTSCommand), cfg.SpeechLanguage)
	companion := core.NewCompanion(llm, speech, store.NewRepository(db))

	return &app{db: db, llm: llm, companion: companion}, nil
}

func (a *app) Close() {
	a.companion.Current().StopVoiceInput()
	a.llm.Close()
	if err := a.db.Close(); err != nil {
		logger.Error("failed to close database", err)
	}
	logger.Sync()
}

// recognizer and synthesizer return untyped nils when the capability is
// missing so the adapter reports it as unsupported.
func recognizer(command string) core.Recognizer {
	if command == "" {
		return nil
	}
	rec, err := platform.NewCommandRecognizer(command)
	if err != nil {
		logger.Warnw("speech recognition disabled", "command", command, "error", err)
		return nil
	}
	return rec
}

func synthesizer(command string) core.Synthesizer {
	syn := platform.DetectSynthesizer(command)
	if syn == nil {
		logger.Infow("no speech synthesizer available, voice replies disabled")
		return nil
	}
	return syn
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP and WebSocket bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = config.AppConfig.HTTPAddr
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			router := api.NewRouter(api.NewAPIHandler(a.companion), api.NewEventHub(a.companion))
			srv := &http.Server{
				Addr:        addr,
				Handler:     router,
				ReadTimeout: 15 * time.Second,
				// replies may take up to the configured reply timeout
				WriteTimeout: config.AppConfig.ReplyTimeout + 15*time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Infof("Starting server on %s. Press Ctrl+C to quit.", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("could not listen on %s: %w", addr, err)
			}
			logger.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Info("Server exiting gracefully")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with Lumera in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return newREPL(a.companion, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}
