// Package internal wires configuration, store connections and the HTTP server.
package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"plan-pleno/internal/config"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/models"
	"plan-pleno/internal/routing"
)

const (
	envFile         = ".env"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Init runs the server until SIGINT or SIGTERM and exits with 1 if anything
// fails on the way.
func Init() {
	err := godotenv.Load(envFile)
	if err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg := config.Load()
	setLogLevel(cfg.Server.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal("Server stopped with error: ", err)
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Unhandled panic during start up: %v", r)
			if cfg.Server.IsProduction() {
				err = fmt.Errorf("panic: %v", r)
				return
			}
			log.Warn("Panics are only fatal in production, exiting normally")
		}
	}()

	documentMgr := managers.NewDocumentManager(cfg.MongoDB)
	databaseMgr := managers.NewDatabaseManager(cfg.Postgres)

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := documentMgr.Connect(startCtx)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	pool, err := databaseMgr.Connect(startCtx)
	if err != nil {
		disconnect(documentMgr, databaseMgr)
		return fmt.Errorf("connect postgres: %w", err)
	}

	if err := models.InitModels(startCtx, cfg.Server.IsDevelopment(), pool, db); err != nil {
		disconnect(documentMgr, databaseMgr)
		return fmt.Errorf("init models: %w", err)
	}

	jwtMgr, err := managers.NewJWTManager(cfg.JWT)
	if err != nil {
		disconnect(documentMgr, databaseMgr)
		return err
	}
	mailMgr := managers.NewMailManager(cfg.Server, cfg.Email)

	router := routing.InitRouter(cfg, databaseMgr, documentMgr, mailMgr, jwtMgr)
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on port %d in %s mode...", cfg.Server.Port, cfg.Server.NodeEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		log.Infof("Received %s, shutting down...", sig)
	case err = <-serverErr:
		log.Error("Error starting server: ", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("Error shutting down server: ", shutdownErr)
		err = errors.Join(err, shutdownErr)
	}

	return errors.Join(err, disconnect(documentMgr, databaseMgr))
}

// disconnect closes mongo first and postgres second, attempting both.
func disconnect(documentMgr managers.DocumentMgr, databaseMgr managers.DatabaseMgr) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(documentMgr.Disconnect(ctx), databaseMgr.Disconnect(ctx))
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
