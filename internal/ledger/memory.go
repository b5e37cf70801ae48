package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Memory is an in-process ledger. A single RWMutex serializes appends, which
// is plenty at exchange-rate-limited throughput.
type Memory struct {
	mu      sync.RWMutex
	records []models.PlacementRecord
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(ctx context.Context, rec models.PlacementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) History(ctx context.Context, limit int, status StatusFilter) ([]models.PlacementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.PlacementRecord, 0, len(m.records))
	for _, rec := range m.records {
		if matches(rec, status) {
			out = append(out, rec)
		}
	}

	// Most recent first; appends are usually already in time order, so this
	// is close to a no-op.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Stats(ctx context.Context) (models.PlacementStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return computeStats(m.records), nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
