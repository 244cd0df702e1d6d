// Package store keeps completed analyses in process memory.
package store

import (
	"slices"

	"github.com/couchcryptid/accident-analytics-service/internal/cache"
	"github.com/couchcryptid/accident-analytics-service/internal/observability"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
)

// Memory is an LRU-bounded result store keyed by filename. It is safe for
// concurrent use. Records are replaced wholesale, never mutated in place.
type Memory struct {
	entries *cache.LRU[string, pipeline.Record]
	metrics *observability.Metrics
}

// NewMemory creates a store holding at most capacity records.
func NewMemory(capacity int, metrics *observability.Metrics) *Memory {
	return &Memory{
		entries: cache.NewLRU[string, pipeline.Record](capacity),
		metrics: metrics,
	}
}

// Put stores rec, evicting the least recently used record when full.
func (m *Memory) Put(rec pipeline.Record) {
	if m.entries.Put(rec.Filename, rec) {
		m.metrics.ResultEvictions.Inc()
	}
	m.metrics.StoredResults.Set(float64(m.entries.Len()))
}

// Get returns the record for filename and marks it recently used.
func (m *Memory) Get(filename string) (pipeline.Record, bool) {
	return m.entries.Get(filename)
}

// Delete removes the record for filename.
func (m *Memory) Delete(filename string) bool {
	ok := m.entries.Remove(filename)
	m.metrics.StoredResults.Set(float64(m.entries.Len()))
	return ok
}

// List returns the stored filenames in lexical order.
func (m *Memory) List() []string {
	names := m.entries.Keys()
	slices.Sort(names)
	return names
}
