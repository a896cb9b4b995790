package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockDocumentManager is a testify mock of managers.DocumentMgr.
type MockDocumentManager struct {
	mock.Mock
}

func (m *MockDocumentManager) Connect(ctx context.Context) (*mongo.Database, error) {
	args := m.Called(ctx)
	db, _ := args.Get(0).(*mongo.Database)
	return db, args.Error(1)
}

func (m *MockDocumentManager) GetDatabase() (*mongo.Database, error) {
	args := m.Called()
	db, _ := args.Get(0).(*mongo.Database)
	return db, args.Error(1)
}

func (m *MockDocumentManager) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocumentManager) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
