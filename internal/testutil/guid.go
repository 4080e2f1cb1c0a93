package testutil

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// GUIDSource is a deterministic byte stream for uuid.SetRand.
//
// Every 16 bytes read carry the next counter value in their last eight
// bytes, so the n-th random identity is 00000000-0000-4000-8000-<n as 12
// hex digits> once the version and variant bits are applied.
//
// Thread-safety: Read and Reset are safe for concurrent use.
type GUIDSource struct {
	mu      sync.Mutex
	n       uint64
	pending []byte
}

// NewGUIDSource creates a source whose first identity ends in 1.
func NewGUIDSource() *GUIDSource {
	return &GUIDSource{}
}

// Read implements io.Reader. It never fails.
func (g *GUIDSource) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range p {
		if len(g.pending) == 0 {
			g.n++
			block := make([]byte, 16)
			binary.BigEndian.PutUint64(block[8:], g.n)
			g.pending = block
		}
		p[i] = g.pending[0]
		g.pending = g.pending[1:]
	}
	return len(p), nil
}

// Reset restarts the sequence. After Reset the next identity ends in 1.
func (g *GUIDSource) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
	g.pending = nil
}

// UseGUIDSource makes uuid.New draw from a fresh GUIDSource for the rest
// of the test. The default generator is restored on cleanup, so tests
// using it must not run in parallel.
func UseGUIDSource(t testing.TB) *GUIDSource {
	t.Helper()
	src := NewGUIDSource()
	uuid.SetRand(src)
	t.Cleanup(func() { uuid.SetRand(nil) })
	return src
}

// GUID returns the n-th identity a GUIDSource produces.
func GUID(n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	id[6] = 0x40
	id[8] |= 0x80
	return id
}
