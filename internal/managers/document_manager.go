package managers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"plan-pleno/internal/config"
)

// DocumentMgr defines the interface for the document store connection.
type DocumentMgr interface {
	Connect(ctx context.Context) (*mongo.Database, error)
	GetDatabase() (*mongo.Database, error)
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Dialer connects a client and makes sure a server is reachable.
type Dialer func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// DocumentManager is responsible for the MongoDB client. The connected flag is also
// flipped by the driver's heartbeat events, so it may go false without Disconnect.
type DocumentManager struct {
	mu        sync.Mutex
	uri       string
	client    *mongo.Client
	database  *mongo.Database
	dial      Dialer
	connected atomic.Bool
	// established is only true between a completed Connect and Disconnect
	established atomic.Bool
}

const (
	defaultDatabaseName    = "plan_pleno"
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
)

// NewDocumentManager creates a manager for the given configuration.
func NewDocumentManager(cfg config.MongoDBConfig) *DocumentManager {
	log.Info("Initializing document manager")
	return NewDocumentManagerWithDialer(cfg, dialMongo)
}

// NewDocumentManagerWithDialer creates a manager that obtains its client through dial.
func NewDocumentManagerWithDialer(cfg config.MongoDBConfig, dial Dialer) *DocumentManager {
	return &DocumentManager{uri: cfg.URI, dial: dial}
}

func dialMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Connect establishes the client. Calling Connect on a connected manager returns the
// existing database handle.
func (docMgr *DocumentManager) Connect(ctx context.Context) (*mongo.Database, error) {
	docMgr.mu.Lock()
	defer docMgr.mu.Unlock()

	if docMgr.client != nil {
		return docMgr.database, nil
	}

	log.Info("Attempting to connect to MongoDB")

	opts := options.Client().
		ApplyURI(docMgr.uri).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout).
		SetServerMonitor(docMgr.serverMonitor())

	client, err := docMgr.dial(ctx, opts)
	if err != nil {
		log.Error("Failed to connect to MongoDB:")
		log.Errorf("- Error name: %T", err)
		log.Errorf("- Error message: %s", err.Error())
		log.Error("- Check your MongoDB IP allow list or network connectivity")
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	docMgr.client = client
	docMgr.database = client.Database(databaseName(docMgr.uri))
	docMgr.connected.Store(true)
	docMgr.established.Store(true)

	log.Info("Successfully connected to MongoDB")
	return docMgr.database, nil
}

// serverMonitor keeps the connected flag in line with the driver's heartbeats.
// The callbacks run on driver goroutines and must not take the mutex.
func (docMgr *DocumentManager) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			if docMgr.established.Load() && docMgr.connected.Swap(false) {
				log.Error("MongoDB connection error: ", e.Failure)
			}
		},
		ServerHeartbeatSucceeded: func(_ *event.ServerHeartbeatSucceededEvent) {
			if docMgr.established.Load() && !docMgr.connected.Swap(true) {
				log.Info("MongoDB connection restored")
			}
		},
		ServerClosed: func(_ *event.ServerClosedEvent) {
			if docMgr.established.Load() && docMgr.connected.Swap(false) {
				log.Info("MongoDB disconnected")
			}
		},
	}
}

// GetDatabase returns the application database. It fails with ErrNotConnected
// before Connect and with ErrConnectionLost while heartbeats are failing.
func (docMgr *DocumentManager) GetDatabase() (*mongo.Database, error) {
	docMgr.mu.Lock()
	defer docMgr.mu.Unlock()

	if docMgr.client == nil {
		return nil, fmt.Errorf("mongodb: %w", ErrNotConnected)
	}
	if !docMgr.connected.Load() {
		return nil, fmt.Errorf("mongodb: %w", ErrConnectionLost)
	}
	return docMgr.database, nil
}

// Ping checks that the primary is reachable.
func (docMgr *DocumentManager) Ping(ctx context.Context) error {
	database, err := docMgr.GetDatabase()
	if err != nil {
		return err
	}
	return database.Client().Ping(ctx, readpref.Primary())
}

// Disconnect closes the client. It is a no-op when the manager is not connected.
func (docMgr *DocumentManager) Disconnect(ctx context.Context) error {
	docMgr.mu.Lock()
	defer docMgr.mu.Unlock()

	if docMgr.client == nil {
		return nil
	}

	// The client stays in use after a failed disconnect, so heartbeats keep updating its state
	if err := docMgr.client.Disconnect(ctx); err != nil {
		log.Error("Failed to disconnect from MongoDB: ", err)
		return fmt.Errorf("disconnect mongodb: %w", err)
	}

	docMgr.established.Store(false)
	docMgr.client = nil
	docMgr.database = nil
	docMgr.connected.Store(false)
	log.Info("Disconnected from MongoDB")
	return nil
}

func databaseName(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabaseName
	}
	return cs.Database
}
