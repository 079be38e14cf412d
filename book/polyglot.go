// Package book provides opening book support using the Polyglot binary
// format: big-endian 16-byte entries sorted by position key. Entry keys
// are matched against the hashes the rules package produces, so a book
// must be prepared with the same hashing scheme.
package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/pkg/errors"

	"skirmish/rules"
)

// Entry is a single opening book record.
type Entry struct {
	Key    uint64 // position hash
	Move   uint16 // encoded move
	Weight uint16 // move priority
	Learn  uint32 // learning data (unused)
}

// Book holds opening book entries sorted by key for binary search.
type Book struct {
	entries []Entry
}

// Load reads a book file. Callers treat any error as "no book" and
// search instead.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "book: open")
	}
	defer f.Close()

	b, err := FromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "book: read %s", path)
	}
	return b, nil
}

// FromReader reads Polyglot entries until EOF.
func FromReader(r io.Reader) (*Book, error) {
	var entries []Entry
	for {
		var e Entry
		err := binary.Read(r, binary.BigEndian, &e)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	// Files should already be sorted by key, but ensure it.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return &Book{entries: entries}, nil
}

// Size returns the number of entries in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Probe returns all entries stored for a position key.
func (b *Book) Probe(key uint64) []Entry {
	if b == nil || len(b.entries) == 0 {
		return nil
	}
	idx := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].Key >= key
	})
	var matches []Entry
	for idx < len(b.entries) && b.entries[idx].Key == key {
		matches = append(matches, b.entries[idx])
		idx++
	}
	return matches
}

// Find returns the highest-weighted entry for a key.
func (b *Book) Find(key uint64) (Entry, bool) {
	matches := b.Probe(key)
	if len(matches) == 0 {
		return Entry{}, false
	}
	best := matches[0]
	for _, e := range matches[1:] {
		if e.Weight > best.Weight {
			best = e
		}
	}
	return best, true
}

// ProbeRandom returns a random entry for a key, weighted by priority.
func (b *Book) ProbeRandom(key uint64, rng *rand.Rand) (Entry, bool) {
	matches := b.Probe(key)
	if len(matches) == 0 {
		return Entry{}, false
	}

	var totalWeight uint32
	for _, e := range matches {
		totalWeight += uint32(e.Weight)
	}
	if totalWeight == 0 {
		return matches[0], true
	}

	r := rng.Uint32() % totalWeight
	var cumulative uint32
	for _, e := range matches {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return e, true
		}
	}
	return matches[0], true
}

// MoveUCI decodes a Polyglot move encoding to UCI text.
// Encoding: bits 0-5 destination square, 6-11 origin square, 12-14
// promotion piece (0=none, 1=knight, 2=bishop, 3=rook, 4=queen).
func MoveUCI(raw uint16) string {
	to := int(raw & 0x3F)
	from := int((raw >> 6) & 0x3F)
	promo := int((raw >> 12) & 0x07)

	uci := rules.SquareName(from) + rules.SquareName(to)
	switch promo {
	case 1:
		uci += "n"
	case 2:
		uci += "b"
	case 3:
		uci += "r"
	case 4:
		uci += "q"
	}
	return uci
}

// Polyglot encodes castling as the king capturing its own rook.
var castleAlias = map[string]string{
	"e1h1": "e1g1",
	"e1a1": "e1c1",
	"e8h8": "e8g8",
	"e8a8": "e8c8",
}

// Lookup returns the book move for a position, if the book has one that
// is legal there. Implements the searcher's Book interface.
func (b *Book) Lookup(pos *rules.Position) (rules.Move, bool) {
	best, ok := b.Find(pos.Zobrist())
	if !ok {
		return rules.NullMove, false
	}
	uci := MoveUCI(best.Move)
	legal := pos.LegalMoves()
	if m, ok := matchUCI(legal, uci); ok {
		return m, true
	}
	if alias, ok := castleAlias[uci]; ok {
		if m, ok := matchUCI(legal, alias); ok {
			return m, true
		}
	}
	return rules.NullMove, false
}

func matchUCI(moves []rules.Move, uci string) (rules.Move, bool) {
	for _, m := range moves {
		if rules.UCI(m) == uci {
			return m, true
		}
	}
	return rules.NullMove, false
}
