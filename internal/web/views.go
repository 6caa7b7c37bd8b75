package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Velocidex/ttlcache/v2"

	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
)

// View names. Each names an independent table over the team's inventory.
const (
	ViewDashboard = "dashboard"
	ViewInventory = "inventory"
)

var knownViews = map[string]bool{ViewDashboard: true, ViewInventory: true}

// ErrUnknownView is returned for view names outside knownViews.
var ErrUnknownView = errors.New("unknown table view")

// InventoryLister loads a team's inventory rows.
type InventoryLister interface {
	List(ctx context.Context, teamID string) ([]service.InventoryRow, error)
}

// ViewRegistry keeps one table engine per session and view. An engine that
// is not touched for the TTL expires with its state.
type ViewRegistry struct {
	lru      *ttlcache.Cache
	rows     InventoryLister
	pageSize int

	// mu serialises creation so two requests cannot build the same view.
	mu sync.Mutex
}

// NewViewRegistry builds a registry; ttl <= 0 keeps views until Close.
func NewViewRegistry(rows InventoryLister, ttl time.Duration, pageSize int) *ViewRegistry {
	lru := ttlcache.NewCache()
	if ttl > 0 {
		_ = lru.SetTTL(ttl)
	}
	lru.SetCacheSizeLimit(10000)
	return &ViewRegistry{lru: lru, rows: rows, pageSize: pageSize}
}

func viewKey(sessionID, view string) string { return sessionID + "/" + view }

// Get returns the session's engine for view with freshly loaded rows. The
// engine's sort, filter, visibility, selection and page state carry over;
// selections of rows that no longer exist are dropped.
func (r *ViewRegistry) Get(ctx context.Context, sessionID, teamID, view string) (*datatable.Engine[service.InventoryRow], error) {
	if !knownViews[view] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	rows, err := r.rows.List(ctx, teamID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := viewKey(sessionID, view)
	if cached, err := r.lru.Get(key); err == nil {
		e := cached.(*datatable.Engine[service.InventoryRow])
		if err := e.SetRows(rows); err != nil {
			return nil, err
		}
		return e, nil
	}
	e, err := service.NewTable(rows, r.pageSize)
	if err != nil {
		return nil, err
	}
	if err := r.lru.Set(key, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Drop forgets every view of a session.
func (r *ViewRegistry) Drop(sessionID string) {
	for view := range knownViews {
		_ = r.lru.Remove(viewKey(sessionID, view))
	}
}

// Len reports how many views are live.
func (r *ViewRegistry) Len() int { return r.lru.Count() }

func (r *ViewRegistry) Close() error { return r.lru.Close() }
