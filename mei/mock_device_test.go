//nolint:errcheck
package mei

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDriver implements Driver interface for testing
type MockDriver struct {
	mock.Mock
}

var _ Driver = (*MockDriver)(nil)

func (m *MockDriver) Open(path string) (Handle, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(Handle), args.Error(1)
}

// MockHandle implements Handle interface for testing
type MockHandle struct {
	mock.Mock
}

var _ Handle = (*MockHandle)(nil)

func (m *MockHandle) ConnectClient(id uuid.UUID) (ClientProperties, error) {
	args := m.Called(id)
	return args.Get(0).(ClientProperties), args.Error(1)
}

func (m *MockHandle) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockHandle) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockHandle) WaitReady(timeout time.Duration) (bool, error) {
	args := m.Called(timeout)
	return args.Bool(0), args.Error(1)
}

func (m *MockHandle) Close() error {
	args := m.Called()
	return args.Error(0)
}
