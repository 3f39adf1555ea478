package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/pmemoapp/pmemo-server/internal/config"
	"github.com/pmemoapp/pmemo-server/internal/logger"
	"github.com/pmemoapp/pmemo-server/internal/search"
	"github.com/pmemoapp/pmemo-server/internal/store"
)

// StoreHandle wraps store.Store for lifecycle management.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the Badger-backed store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(cfg.BadgerPath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &StoreHandle{Store: st}, nil
}

// SearchIndexHandle wraps search.Index for lifecycle management.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the memo search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.New(cfg.SearchIndexPath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}

	return &SearchIndexHandle{Index: idx}, nil
}
