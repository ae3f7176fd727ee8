// Package cellstore implements the Cell Store: a concurrent mapping from
// cell coordinate to current value plus source expression. Reads must never
// block behind writes or observe a torn record, which a plain
// sync.RWMutex-guarded map only guarantees in the read-read case. The store
// is backed instead by github.com/puzpuzpuz/xsync/v3's lock-free MapOf.
package cellstore

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/cedarhh/rsheet/internal/domain"
)

// Store is the Cell Store. The zero value is not usable; construct with New.
type Store struct {
	cells *xsync.MapOf[domain.CellCoord, domain.CellRecord]
}

// New builds an empty Store.
func New() *Store {
	return &Store{cells: xsync.NewMapOf[domain.CellCoord, domain.CellRecord]()}
}

// Get returns a copy of coord's record, or the Empty record if coord was
// never set. Safe to call concurrently with Put and with other Gets.
func (s *Store) Get(coord domain.CellCoord) domain.CellRecord {
	rec, ok := s.cells.Load(coord)
	if !ok {
		return domain.EmptyRecord
	}
	return rec
}

// Put replaces coord's record. Called only by the Evaluation Engine, the
// store's sole writer; Put itself takes no lock of its own beyond what the
// underlying map provides, since the single-writer discipline rules out
// concurrent Put calls racing each other.
func (s *Store) Put(coord domain.CellCoord, rec domain.CellRecord) {
	s.cells.Store(coord, rec)
}
