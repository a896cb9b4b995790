package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"plan-pleno/internal/interfaces"
)

// MockDatabaseManager is a testify mock of managers.DatabaseMgr.
type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) Connect(ctx context.Context) (interfaces.PgxPoolIface, error) {
	args := m.Called(ctx)
	pool, _ := args.Get(0).(interfaces.PgxPoolIface)
	return pool, args.Error(1)
}

func (m *MockDatabaseManager) GetPool() (interfaces.PgxPoolIface, error) {
	args := m.Called()
	pool, _ := args.Get(0).(interfaces.PgxPoolIface)
	return pool, args.Error(1)
}

func (m *MockDatabaseManager) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatabaseManager) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
