package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMove(t *testing.T, pos *Position, uci string) Move {
	t.Helper()
	for _, m := range pos.LegalMoves() {
		if UCI(m) == uci {
			return m
		}
	}
	t.Fatalf("move %s not legal in %s", uci, pos.Fen())
	return NullMove
}

func TestNewPosition_TwentyLegalMoves(t *testing.T) {
	pos := NewPosition()
	assert.Len(t, pos.LegalMoves(), 20, "starting position has 20 legal moves")
	assert.True(t, pos.WhiteToMove())
}

func TestFromFEN_Invalid(t *testing.T) {
	_, err := FromFEN("not a fen")
	assert.Error(t, err)

	_, err = FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1")
	assert.Error(t, err, "side to move must be w or b")
}

func TestPushPop_RestoresPosition(t *testing.T) {
	pos := NewPosition()
	before := pos.Fen()
	hashBefore := pos.Zobrist()

	m := findMove(t, pos, "e2e4")
	pos.Push(m)
	assert.False(t, pos.WhiteToMove())
	assert.NotEqual(t, hashBefore, pos.Zobrist())
	pos.Pop()

	assert.Equal(t, before, pos.Fen())
	assert.Equal(t, hashBefore, pos.Zobrist())
}

func TestPushNull_FlipsSideOnly(t *testing.T) {
	pos := NewPosition()
	before := pos.Fen()

	pos.PushNull()
	assert.False(t, pos.WhiteToMove(), "null move passes the turn")
	assert.Len(t, pos.LegalMoves(), 20, "black has the mirror 20 moves")
	pos.Pop()

	assert.Equal(t, before, pos.Fen())
}

func TestPushNull_ClearsEnPassant(t *testing.T) {
	pos, err := FromFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	require.NoError(t, err)

	hasEP := func() bool {
		for _, m := range pos.LegalMoves() {
			if UCI(m) == "d4e3" {
				return true
			}
		}
		return false
	}
	require.True(t, hasEP(), "en passant capture available before the pass")

	// Two passes return the move to black, with the target gone.
	pos.PushNull()
	pos.PushNull()
	assert.False(t, hasEP(), "a null move forfeits the en passant right")

	pos.Pop()
	pos.Pop()
	assert.True(t, hasEP(), "popping the null moves restores it")
}

func TestZobrist_StableAcrossTranspositions(t *testing.T) {
	a := NewPosition()
	a.Push(findMove(t, a, "g1f3"))
	a.Push(findMove(t, a, "g8f6"))
	a.Push(findMove(t, a, "b1c3"))

	b := NewPosition()
	b.Push(findMove(t, b, "b1c3"))
	b.Push(findMove(t, b, "g8f6"))
	b.Push(findMove(t, b, "g1f3"))

	assert.Equal(t, a.Zobrist(), b.Zobrist(), "move order must not matter")
}

func TestIsCheckmate_FoolsMate(t *testing.T) {
	pos, err := FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3")
	require.NoError(t, err)
	assert.True(t, pos.InCheck())
	assert.True(t, pos.IsCheckmate())
	assert.False(t, pos.IsStalemate())
}

func TestIsStalemate(t *testing.T) {
	pos, err := FromFEN("k7/2Q5/1K6/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	assert.False(t, pos.InCheck())
	assert.True(t, pos.IsStalemate())
	assert.False(t, pos.IsCheckmate())
}

func TestIsInsufficientMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"k7/8/8/8/8/8/8/K7 w - - 0 1", true},                  // bare kings
		{"k7/8/8/8/8/8/8/KN6 w - - 0 1", true},                 // lone knight
		{"k7/8/8/8/8/8/8/KB6 w - - 0 1", true},                 // lone bishop
		{"kb6/8/8/8/8/8/8/K1B5 w - - 0 1", true},               // bishops, same color squares
		{"kb6/8/8/8/8/8/8/K2B4 w - - 0 1", false},              // bishops, opposite colors
		{"k7/8/8/8/8/8/8/KNN5 w - - 0 1", false},               // two knights
		{"k7/p7/8/8/8/8/8/K7 w - - 0 1", false},                // pawn on the board
		{"k7/8/8/8/8/8/8/KR6 w - - 0 1", false},                // rook mates
	}
	for _, tc := range cases {
		pos, err := FromFEN(tc.fen)
		require.NoError(t, err, tc.fen)
		assert.Equal(t, tc.want, pos.IsInsufficientMaterial(), tc.fen)
	}
}

func TestIsRepetition_KnightShuffle(t *testing.T) {
	pos := NewPosition()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	assert.False(t, pos.IsRepetition(2))
	for _, uci := range shuffle {
		pos.Push(findMove(t, pos, uci))
	}
	assert.True(t, pos.IsRepetition(2), "start position reached twice")
	assert.False(t, pos.IsRepetition(3))

	for _, uci := range shuffle {
		pos.Push(findMove(t, pos, uci))
	}
	assert.True(t, pos.IsRepetition(3), "start position reached three times")
}

func TestIsCapture(t *testing.T) {
	pos, err := FromFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	require.NoError(t, err)

	assert.True(t, pos.IsCapture(findMove(t, pos, "e4d5")))
	assert.False(t, pos.IsCapture(findMove(t, pos, "e4e5")))
	assert.False(t, pos.IsCapture(findMove(t, pos, "g1f3")))
}

func TestIsCapture_EnPassant(t *testing.T) {
	pos, err := FromFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	require.NoError(t, err)
	assert.True(t, pos.IsCapture(findMove(t, pos, "d4e3")), "en passant is a capture")
}

func TestGivesCheck(t *testing.T) {
	// Scholar's mate one move early: Qxf7 is mate, Qh4 gives no check.
	pos, err := FromFEN("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 0 1")
	require.NoError(t, err)

	before := pos.Fen()
	assert.True(t, pos.GivesCheck(findMove(t, pos, "h5f7")))
	assert.False(t, pos.GivesCheck(findMove(t, pos, "h5h4")))
	assert.Equal(t, before, pos.Fen(), "GivesCheck must not disturb the position")
}

func TestPieceAtAndCount(t *testing.T) {
	pos := NewPosition()

	piece, white := pos.PieceAt(4) // e1
	assert.Equal(t, King, piece)
	assert.True(t, white)

	piece, white = pos.PieceAt(59) // d8
	assert.Equal(t, Queen, piece)
	assert.False(t, white)

	piece, _ = pos.PieceAt(27) // d4
	assert.Equal(t, NoPiece, piece)

	assert.Equal(t, 8, pos.Count(Pawn, true))
	assert.Equal(t, 2, pos.Count(Knight, false))
	assert.Equal(t, 1, pos.Count(Queen, true))
}

func TestHasNonPawnMaterial(t *testing.T) {
	pos := NewPosition()
	assert.True(t, pos.HasNonPawnMaterial())

	pos, err := FromFEN("8/4k3/8/8/8/4K3/4P3/8 w - - 0 1")
	require.NoError(t, err)
	assert.False(t, pos.HasNonPawnMaterial(), "king and pawn only")
}

func TestCopy_Independent(t *testing.T) {
	pos := NewPosition()
	before := pos.Fen()
	cp := pos.Copy()

	cp.Push(findMove(t, cp, "e2e4"))
	assert.NotEqual(t, pos.Fen(), cp.Fen())
	assert.Equal(t, before, pos.Fen())
}

func TestSquareHelpers(t *testing.T) {
	assert.Equal(t, "a1", SquareName(0))
	assert.Equal(t, "h8", SquareName(63))
	assert.Equal(t, "e4", SquareName(28))
	assert.Equal(t, 4, SquareFile(28))
	assert.Equal(t, 3, SquareRank(28))
}
