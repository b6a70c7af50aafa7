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

	"taskchat/internal/assistant"
	"taskchat/internal/command"
	"taskchat/internal/config"
	"taskchat/internal/db"
	"taskchat/internal/global"
	"taskchat/internal/lifecycle"
	"taskchat/internal/logging"
	"taskchat/internal/taskstore"
	"taskchat/internal/webapi"
)

var version = "dev"
var buildTime = "unknown"

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := command.BuildApp(command.Deps{
		LoadConfig:    loadMergedConfig,
		RunServe:      runServe,
		RunMigrateUp:  runMigrateUp,
		RunChat:       runChat,
		RunTaskList:   runTaskList,
		RunTaskAdd:    runTaskAdd,
		RunTaskDone:   runTaskDone,
		RunTaskRemove: runTaskRemove,
		RunTaskEdit:   runTaskEdit,
		RunTaskCount:  runTaskCount,
	})

	if err := app.RunContext(rootCtx, os.Args); err != nil {
		logging.NewLogger(logging.Options{Level: "error", Writer: os.Stderr, Component: "taskchat"}).Error("taskchat failed", "err", err)
		os.Exit(1)
	}
}

// loadMergedConfig layers the persisted config.toml under the environment:
// env vars win, the TOML file fills what the environment left unset, built-in
// defaults cover the rest.
func loadMergedConfig() config.Config {
	cfg := config.LoadConfig()

	configDir, err := global.DefaultConfigDir()
	if err != nil {
		return cfg
	}
	gcfg, err := global.NewConfigStore(configDir).LoadOrInit()
	if err != nil {
		return cfg
	}

	if os.Getenv("TASKCHAT_LISTEN_PORT") == "" && gcfg.ListenPort > 0 {
		cfg.ListenPort = gcfg.ListenPort
	}
	if os.Getenv("TASKCHAT_SERVER_URL") == "" && gcfg.ServerURL != "" {
		cfg.ServerURL = gcfg.ServerURL
	}
	if os.Getenv("TASKCHAT_DB_PATH") == "" && gcfg.DBPath != "" {
		cfg.DBPath = gcfg.DBPath
	}
	if os.Getenv("OPENAI_ENDPOINT") == "" && gcfg.OpenAI.Endpoint != "" {
		cfg.OpenAIEndpoint = gcfg.OpenAI.Endpoint
	}
	if os.Getenv("OPENAI_MODEL") == "" && gcfg.OpenAI.Model != "" {
		cfg.OpenAIModel = gcfg.OpenAI.Model
	}
	return cfg
}

func runMigrateUp(_ context.Context, cfg config.Config) error {
	gdb, err := db.OpenSQLiteWithMigrations(cfg.DBPath)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Writer: os.Stderr, Component: "serve"})

	gdb, err := db.OpenSQLiteWithMigrations(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	store, err := taskstore.NewStore(gdb)
	if err != nil {
		return err
	}

	var ai webapi.AssistantClient
	if cfg.OpenAIAPIKey != "" {
		ai = assistant.NewClient(assistant.Config{
			BaseURL: cfg.OpenAIEndpoint,
			Model:   cfg.OpenAIModel,
			APIKey:  cfg.OpenAIAPIKey,
		}, nil)
	} else {
		logger.Warn("OPENAI_API_KEY is not set, AI endpoint disabled")
	}

	webUI, err := webapi.NewWebUIHandler(webapi.WebUIConfig{
		Mode:        cfg.WebUIMode,
		DevProxyURL: cfg.WebUIDevProxyURL,
		DistDir:     cfg.WebUIDistDir,
	})
	if err != nil {
		return err
	}

	server := webapi.NewServer(webapi.Deps{
		TaskStore: store,
		Assistant: ai,
		WebUI:     webUI,
		Logger:    logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort)
	fmt.Printf("taskchat listening at http://%s (version=%s built=%s)\n", addr, version, buildTime)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	mgr := lifecycle.NewManager()
	mgr.AddRun("http-server", func(runCtx context.Context) error {
		go func() {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	mgr.AddShutdown("close-database", func(context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return mgr.StartAndWait(ctx)
}
