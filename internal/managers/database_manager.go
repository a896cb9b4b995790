// Package managers owns the long-lived clients of the application: both database
// connections, the JWT signer and the mailer. Each manager is constructed explicitly
// and handed to whoever needs it.
package managers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"plan-pleno/internal/config"
	"plan-pleno/internal/interfaces"
)

// ErrNotConnected is returned by the accessors of a manager whose Connect has not completed.
var ErrNotConnected = errors.New("not connected, call Connect() first")

// ErrConnectionLost is returned while a previously established connection is down.
var ErrConnectionLost = errors.New("connection lost")

// DatabaseMgr defines the interface for the relational store connection.
// It provides methods for establishing, accessing and closing the connection pool.
type DatabaseMgr interface {
	Connect(ctx context.Context) (interfaces.PgxPoolIface, error)
	GetPool() (interfaces.PgxPoolIface, error)
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// PoolFactory opens a pool for the given configuration.
type PoolFactory func(ctx context.Context, poolConfig *pgxpool.Config) (interfaces.PgxPoolIface, error)

// DatabaseManager is responsible for managing the PostgreSQL connection pool.
// It holds at most one live pool at a time.
type DatabaseManager struct {
	mu      sync.Mutex
	config  config.PostgresConfig
	pool    interfaces.PgxPoolIface
	newPool PoolFactory
}

const (
	maxPoolConns    = 5
	poolIdleTime    = 10 * time.Second
	poolAcquireTime = 30 * time.Second
)

// NewDatabaseManager creates a manager for the given configuration. Nothing is dialed
// until Connect is called.
func NewDatabaseManager(cfg config.PostgresConfig) *DatabaseManager {
	log.Info("Initializing database manager")
	return NewDatabaseManagerWithFactory(cfg, func(ctx context.Context, poolConfig *pgxpool.Config) (interfaces.PgxPoolIface, error) {
		return pgxpool.NewWithConfig(ctx, poolConfig)
	})
}

// NewDatabaseManagerWithFactory creates a manager that opens its pool through factory.
func NewDatabaseManagerWithFactory(cfg config.PostgresConfig, factory PoolFactory) *DatabaseManager {
	return &DatabaseManager{config: cfg, newPool: factory}
}

// Connect opens the pool and verifies it with a ping. Calling Connect on a connected
// manager returns the existing pool.
func (dbMgr *DatabaseManager) Connect(ctx context.Context) (interfaces.PgxPoolIface, error) {
	dbMgr.mu.Lock()
	defer dbMgr.mu.Unlock()

	if dbMgr.pool != nil {
		return dbMgr.pool, nil
	}

	poolConfig, err := pgxpool.ParseConfig(dbMgr.config.DSN())
	if err != nil {
		log.Error("Failed to configure PostgreSQL: ", err)
		return nil, fmt.Errorf("configure postgres: %w", err)
	}
	poolConfig.MaxConns = maxPoolConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = poolIdleTime

	pool, err := dbMgr.newPool(ctx, poolConfig)
	if err != nil {
		log.Error("Failed to connect to PostgreSQL: ", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, poolAcquireTime)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.WithFields(log.Fields{
			"errorType": fmt.Sprintf("%T", err),
		}).Error("Failed to connect to PostgreSQL: ", err)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	dbMgr.pool = pool
	log.Info("Successfully connected to PostgreSQL")
	return pool, nil
}

// GetPool returns the database connection pool managed by the DatabaseManager.
// This pool is used for executing database operations.
func (dbMgr *DatabaseManager) GetPool() (interfaces.PgxPoolIface, error) {
	dbMgr.mu.Lock()
	defer dbMgr.mu.Unlock()

	if dbMgr.pool == nil {
		return nil, fmt.Errorf("postgres: %w", ErrNotConnected)
	}
	return dbMgr.pool, nil
}

// Ping checks that the pool can still reach the server.
func (dbMgr *DatabaseManager) Ping(ctx context.Context) error {
	pool, err := dbMgr.GetPool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Disconnect closes the pool. It is a no-op when the manager is not connected.
func (dbMgr *DatabaseManager) Disconnect(_ context.Context) error {
	dbMgr.mu.Lock()
	defer dbMgr.mu.Unlock()

	if dbMgr.pool == nil {
		return nil
	}

	dbMgr.pool.Close()
	dbMgr.pool = nil
	log.Info("Disconnected from PostgreSQL")
	return nil
}
