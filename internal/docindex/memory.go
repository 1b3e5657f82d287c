package docindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// MemoryIndex is an in-memory Index using exact cosine similarity. It
// serves tests and local runs without a Qdrant instance.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	passage models.Passage
	vector  []float32
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) EnsureCollection(_ context.Context) error { return nil }

func (m *MemoryIndex) Count(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.entries)), nil
}

func (m *MemoryIndex) Add(_ context.Context, passage models.Passage, vector []float32) error {
	vec := make([]float32, len(vector))
	copy(vec, vector)

	m.mu.Lock()
	m.entries = append(m.entries, memoryEntry{passage: passage, vector: vec})
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Query(_ context.Context, vector []float32, limit uint64) ([]models.Passage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]models.Passage, 0, len(m.entries))
	for _, e := range m.entries {
		p := e.passage
		p.Score = cosineSimilarity(vector, e.vector)
		results = append(results, p)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if uint64(len(results)) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryIndex) Close() error { return nil }

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
