// Package history stores and reads entity state history.
package history

import (
	"fmt"
	"sync"

	"github.com/huangsam/minigraph/internal/contract"
	"github.com/huangsam/minigraph/schema"
)

// StoreManager owns the process-wide history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.HistoryStore
}

// Manager is the global store manager for command logic.
var Manager = &StoreManager{}

// GetStore returns the managed store, or nil before Init.
func (mgr *StoreManager) GetStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}

// Init opens the history store for the backend, closing any previously opened one.
func (mgr *StoreManager) Init(backend schema.DatabaseBackend, connStr string) error {
	store, err := NewStore(historyTable, backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize history store: %w", err)
	}
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.store != nil {
		_ = mgr.store.Close()
	}
	mgr.store = store
	return nil
}

// Close closes the managed store. It is safe to call more than once.
func (mgr *StoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.store != nil {
		_ = mgr.store.Close()
		mgr.store = nil
	}
}

// Set replaces the managed store without opening a connection.
func (mgr *StoreManager) Set(store contract.HistoryStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.store = store
}
