package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/managers"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

const (
	StatusConnected      = "connected"
	StatusDisconnected   = "disconnected"
	StatusNotInitialized = "not_initialized"

	probeTimeout = 2 * time.Second
)

type HealthHdl interface {
	GetHealth(c *gin.Context)
}

// HealthHandler reports the state of both stores. It always answers 200.
type HealthHandler struct {
	DatabaseManager managers.DatabaseMgr
	DocumentManager managers.DocumentMgr
	Environment     string
}

func NewHealthHandler(databaseManager *managers.DatabaseMgr, documentManager *managers.DocumentMgr, environment string) HealthHdl {
	return &HealthHandler{
		DatabaseManager: *databaseManager,
		DocumentManager: *documentManager,
		Environment:     environment,
	}
}

func (handler *HealthHandler) GetHealth(c *gin.Context) {
	healthDto := &schemas.HealthDTO{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Environment: handler.Environment,
		Databases: schemas.DatabasesDTO{
			MongoDB:  probe(c, "mongodb", handler.DocumentManager.Ping),
			Postgres: probe(c, "postgres", handler.DatabaseManager.Ping),
		},
	}

	utils.WriteAndLogResponse(c, healthDto, http.StatusOK)
}

// probe pings a store within probeTimeout and classifies the outcome.
func probe(c *gin.Context, store string, ping func(ctx context.Context) error) string {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status := classify(ping(ctx))
	if status != StatusConnected {
		utils.LogMessageWithFields(c, "warn", "Health probe of "+store+" reports "+status)
	}
	return status
}

// classify maps a probe error onto a store status. Only a store that was never
// connected is not_initialized; every other failure, timeouts included, means
// the store is disconnected.
func classify(err error) string {
	switch {
	case err == nil:
		return StatusConnected
	case errors.Is(err, managers.ErrNotConnected):
		return StatusNotInitialized
	default:
		return StatusDisconnected
	}
}
