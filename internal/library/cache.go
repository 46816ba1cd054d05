package library

import (
	"strings"
	"sync"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// MapProvider is an in-memory Provider keyed by upper-cased member name,
// for tests and the standalone CLI. It is the reference implementation a
// real host's directory- or dataset-backed Provider would generalize.
//
// Grounded on the teacher's document store: an RWMutex-protected map with
// Set/Get/Delete/List/Clear, the same shape reused here for library
// members instead of open editor buffers.
type MapProvider struct {
	mu      sync.RWMutex
	members map[string]Result
}

// NewMapProvider creates an empty MapProvider.
func NewMapProvider() *MapProvider {
	return &MapProvider{members: make(map[string]Result)}
}

func key(name string) string {
	return strings.ToUpper(name)
}

// Set stores or replaces the text and location for name.
func (m *MapProvider) Set(name string, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members[key(name)] = r
}

// Delete removes name, if present.
func (m *MapProvider) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.members, key(name))
}

// Clear removes every member.
func (m *MapProvider) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members = make(map[string]Result)
}

// List returns the names of every member currently stored, in no
// particular order.
func (m *MapProvider) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.members))
	for k := range m.members {
		names = append(names, k)
	}

	return names
}

func (m *MapProvider) HasLibrary(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.members[key(name)]

	return ok
}

func (m *MapProvider) GetLibrary(name string) *task.Future[*Result] {
	m.mu.RLock()
	r, ok := m.members[key(name)]
	m.mu.RUnlock()

	if !ok {
		return task.Completed[*Result](nil, ErrNotFound)
	}

	result := r

	return task.Completed(&result, nil)
}

// ParseLibrary is a stub: MapProvider never drives a reentrant analysis
// pass over a macro member's body. Wiring that here would require this
// package to import pkg/analyzer, which in turn depends on Provider
// (through Options) — an import cycle. Hosts that need the conditional
// assembly of a macro's own library member pre-scanned implement Provider
// themselves and call back into pkg/analyzer.Analyze from outside this
// package.
func (m *MapProvider) ParseLibrary(name string, c *ctx.Ctx, data Data) *task.Future[bool] {
	return task.Completed(m.HasLibrary(name), nil)
}
