package scanstore

import (
	"github.com/stretchr/testify/mock"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetScanStore implements the StoreManager interface.
func (m *MockStoreManager) GetScanStore() contract.ScanStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ScanStore)
	return store
}

// MockScanStore is a mock implementation of ScanStore for testing.
type MockScanStore struct {
	mock.Mock
}

var _ contract.ScanStore = &MockScanStore{} // Compile-time check

// Get implements the ScanStore interface.
func (m *MockScanStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the ScanStore interface.
func (m *MockScanStore) Set(key string, value []byte, version int, ts int64) error {
	args := m.Called(key, value, version, ts)
	return args.Error(0)
}

// All implements the ScanStore interface.
func (m *MockScanStore) All() ([]schema.StoredScan, error) {
	args := m.Called()
	scans, _ := args.Get(0).([]schema.StoredScan)
	return scans, args.Error(1)
}

// Clear implements the ScanStore interface.
func (m *MockScanStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the ScanStore interface.
func (m *MockScanStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the ScanStore interface.
func (m *MockScanStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
