package engine

import "skirmish/rules"

// pieceValue holds material values in centipawns, indexed by rules.Piece.
var pieceValue = [rules.King + 1]int{
	rules.Pawn:   100,
	rules.Knight: 300,
	rules.Bishop: 320,
	rules.Rook:   500,
	rules.Queen:  900,
	rules.King:   0,
}

// Evaluate scores a position in centipawns from the side to move's
// perspective: positive means the mover stands better. Pure and safe to
// call from multiple goroutines on distinct positions.
func Evaluate(pos *rules.Position) int {
	if pos.IsCheckmate() {
		return -ImmediateMate
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		return 0
	}

	diff := sideScore(pos, true) - sideScore(pos, false)
	if !pos.WhiteToMove() {
		diff = -diff
	}
	return int(diff)
}

// sideScore sums material and phase-interpolated square bonuses for one
// color. Each side's phase weight comes from its own remaining material.
func sideScore(pos *rules.Position, white bool) float64 {
	t := endgameWeight(pos, white)
	score := 0.0
	for sq := 0; sq < 64; sq++ {
		piece, isWhite := pos.PieceAt(sq)
		if piece == rules.NoPiece || isWhite != white {
			continue
		}
		idx := sq
		if !white {
			idx = sq ^ 56 // rank flip for black
		}
		mid, end := pieceSquare(piece, idx)
		score += float64(pieceValue[piece]) + float64(mid)*(1-t) + float64(end)*t
	}
	return score
}

// endgameWeight maps a side's non-pawn material (45 per queen, 20 per
// rook, 10 per minor) to [0,1]: 1-125/152 (about 0.18) with full
// material, 1 with none left.
func endgameWeight(pos *rules.Position, white bool) float64 {
	material := 45*pos.Count(rules.Queen, white) +
		20*pos.Count(rules.Rook, white) +
		10*pos.Count(rules.Bishop, white) +
		10*pos.Count(rules.Knight, white)
	t := 1 - float64(material)/152
	if t < 0 {
		return 0
	}
	return t
}
