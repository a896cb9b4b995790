package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendWelcomeMail(email, displayName string) error {
	args := m.Called(email, displayName)
	return args.Error(0)
}
