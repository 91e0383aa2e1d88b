package index

import (
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

// MemoryIndex is the in-process read model of the current snapshot.
// The snapshot store stays authoritative; the index is refreshed from it.
type MemoryIndex struct {
	mu         sync.RWMutex
	services   []domain.Service
	byDomain   map[string]int // lowercased domain -> position in services
	loaded     bool
	lastReload time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byDomain: make(map[string]int),
	}
}

// Update replaces all services in the index
func (idx *MemoryIndex) Update(services []domain.Service) {
	cloned := domain.CloneServices(services)
	if cloned == nil {
		cloned = []domain.Service{}
	}

	byDomain := make(map[string]int, len(cloned))
	for i, svc := range cloned {
		for _, d := range svc.Domains {
			key := strings.ToLower(d)
			if _, taken := byDomain[key]; !taken {
				byDomain[key] = i
			}
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.services = cloned
	idx.byDomain = byDomain
	idx.loaded = true
	idx.lastReload = time.Now()
}

// All returns a copy of the indexed services, in snapshot order
func (idx *MemoryIndex) All() []domain.Service {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return domain.CloneServices(idx.services)
}

// ByDomain finds the service serving a domain (case-insensitive)
func (idx *MemoryIndex) ByDomain(d string) (domain.Service, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i, ok := idx.byDomain[strings.ToLower(d)]
	if !ok {
		return domain.Service{}, false
	}
	return domain.CloneServices(idx.services[i : i+1])[0], true
}

// Count returns the number of services in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.services)
}

// Loaded reports whether a snapshot has been indexed at least once
func (idx *MemoryIndex) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.loaded
}

// GetLastReload returns the timestamp of the last update
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
