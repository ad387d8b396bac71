package layout

import (
	"io"
	"sync"

	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// Store holds the current layout. Importing replaces it wholesale, and only on success.
type Store struct {
	mu     sync.RWMutex
	layout entity.Layout
}

func NewStore(initial entity.Layout) *Store {
	return &Store{layout: clone(initial)}
}

// Current returns a copy of the current layout.
func (s *Store) Current() entity.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.layout)
}

// Set replaces the current layout with l.
func (s *Store) Set(l entity.Layout) {
	s.mu.Lock()
	s.layout = clone(l)
	s.mu.Unlock()
}

// Replace imports r and swaps it in. On error the current layout is left unchanged.
func (s *Store) Replace(r io.Reader) error {
	l, err := Import(r)
	if err != nil {
		return err
	}
	s.Set(l)
	return nil
}

// Export writes the current layout in the exchange format.
func (s *Store) Export(w io.Writer) error {
	return Export(w, s.Current())
}

func clone(l entity.Layout) entity.Layout {
	if l == nil {
		return nil
	}
	out := make(entity.Layout, len(l))
	copy(out, l)
	return out
}
