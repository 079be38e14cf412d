package engine

import "skirmish/rules"

// Bound indicates what kind of bound a stored score represents.
type Bound uint8

const (
	BoundNone  Bound = 0
	BoundExact Bound = 1 // true minimax value (PV node)
	BoundLower Bound = 2 // true value >= score (beta cutoff occurred)
	BoundUpper Bound = 3 // true value <= score (no move raised alpha)
)

// TTEntry is a cached search result for one position.
type TTEntry struct {
	Hash     uint64 // full zobrist hash, compared on probe
	BestMove rules.Move
	Score    int32
	Depth    int8
	Bound    Bound
}

// DefaultTableSize is the number of entries a searcher's table holds.
const DefaultTableSize = 1 << 20

// TranspositionTable caches search results keyed by position hash.
// Fixed capacity, always-replace. Probes compare the full stored hash,
// so an index collision reads as a miss rather than a wrong entry.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
}

// NewTranspositionTable creates a table with the given number of
// entries, rounded down to a power of two. size <= 0 selects
// DefaultTableSize.
func NewTranspositionTable(size int) *TranspositionTable {
	if size <= 0 {
		size = DefaultTableSize
	}
	n := uint64(1)
	for n*2 <= uint64(size) {
		n *= 2
	}
	return &TranspositionTable{
		entries: make([]TTEntry, n),
		mask:    n - 1,
	}
}

// Probe looks up a position. The boolean is false on a miss or when the
// slot holds a different position.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	entry := &tt.entries[hash&tt.mask]
	if entry.Bound == BoundNone || entry.Hash != hash {
		return TTEntry{}, false
	}
	return *entry, true
}

// Store saves a search result, unconditionally replacing whatever the
// slot held.
func (tt *TranspositionTable) Store(hash uint64, score, depth int, bound Bound, bestMove rules.Move) {
	tt.entries[hash&tt.mask] = TTEntry{
		Hash:     hash,
		BestMove: bestMove,
		Score:    int32(score),
		Depth:    int8(depth),
		Bound:    bound,
	}
}

// Clear drops every entry.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
}

// Size returns the table capacity in entries.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}

// Hashfull returns the permille of used entries, sampled over the first
// thousand slots.
func (tt *TranspositionTable) Hashfull() int {
	sample := 1000
	if sample > len(tt.entries) {
		sample = len(tt.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Bound != BoundNone {
			used++
		}
	}
	return used * 1000 / sample
}
