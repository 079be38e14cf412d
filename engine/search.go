package engine

import (
	"math"
	"slices"
	"time"

	"skirmish/rules"
)

// Move ordering bonuses. The hash move short-circuits everything else;
// the rest are additive. Queen promotions deliberately score below
// under-promotions; the search was tuned with this weighting in place.
const (
	hashMoveScore       = 10_000_000
	captureBonus        = 10_000
	underPromotionBonus = 6_000
	queenPromotionBonus = 2_000
	killerBonus         = 4_000
)

// Book supplies prebuilt opening moves. Lookup returns false when it has
// nothing for the position; any internal failure is reported the same
// way.
type Book interface {
	Lookup(pos *rules.Position) (rules.Move, bool)
}

// Progress describes one completed iterative-deepening depth. Reported
// through the optional callback; its absence does not change the search.
type Progress struct {
	Depth   int
	Score   int
	Move    rules.Move
	Nodes   int64
	Elapsed time.Duration
}

// Searcher owns all mutable search state. It is single-threaded: run
// concurrent searches on separate Searcher instances.
type Searcher struct {
	tt       *TranspositionTable
	book     Book
	progress func(Progress)

	killers [MaxPly][2]rules.Move
	history [64][64]int32
	path    []uint64 // hashes of positions on the current search path

	nodes     int64
	bestMove  rules.Move
	bestScore int
	stopped   bool
	start     time.Time
	limit     time.Duration
}

// NewSearcher creates a searcher with its own transposition table. The
// table lives for the searcher's lifetime and carries over between
// FindMove calls; everything else resets per call.
func NewSearcher() *Searcher {
	return &Searcher{
		tt:   NewTranspositionTable(0),
		path: make([]uint64, 0, MaxPly),
	}
}

// SetBook installs an opening book, consulted before searching.
func (s *Searcher) SetBook(b Book) {
	s.book = b
}

// SetProgress installs a per-depth progress callback.
func (s *Searcher) SetProgress(f func(Progress)) {
	s.progress = f
}

// Nodes returns the node count of the most recent FindMove call.
func (s *Searcher) Nodes() int64 {
	return s.nodes
}

// BestScore returns the score of the last fully completed depth of the
// most recent FindMove call, from the mover's perspective.
func (s *Searcher) BestScore() int {
	return s.bestScore
}

// FindMove selects a move for the position within the given depth and
// wall-clock budget. Zero maxDepth or timeLimit select the defaults.
// The boolean is false only when the position has no legal moves. The
// caller's position is unchanged when FindMove returns.
func (s *Searcher) FindMove(pos *rules.Position, maxDepth int, timeLimit time.Duration) (rules.Move, bool) {
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	if maxDepth > MaxPly {
		maxDepth = MaxPly
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	s.reset(timeLimit)

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return rules.NullMove, false
	}

	if s.book != nil {
		if m, ok := s.book.Lookup(pos); ok && slices.Contains(moves, m) {
			log.Infof("book move %s", rules.UCI(m))
			return m, true
		}
	}

	// A forced move needs no search.
	if len(moves) == 1 {
		return moves[0], true
	}

	var lastCompleted rules.Move
	for depth := 1; depth <= maxDepth; depth++ {
		if time.Since(s.start) > s.limit {
			break
		}

		score := s.search(pos, depth, 0, NegInf, PosInf)

		if s.stopped || time.Since(s.start) > s.limit {
			// The interrupted depth searched an unreliable partial
			// tree; keep the previous depth's answer.
			log.Infof("depth %d incomplete (timeout), best score %d", depth, s.bestScore)
			break
		}

		s.bestScore = score
		lastCompleted = s.bestMove

		elapsed := time.Since(s.start)
		nps := int64(0)
		if elapsed > 0 {
			nps = s.nodes * int64(time.Second) / int64(elapsed)
		}
		if IsMateScore(score) {
			log.Infof("depth %d: mate in %d, move %s, %d nodes (%d nps)",
				depth, MatePly(score), rules.UCI(s.bestMove), s.nodes, nps)
		} else {
			log.Infof("depth %d: score %d, move %s, %d nodes (%d nps)",
				depth, score, rules.UCI(s.bestMove), s.nodes, nps)
		}
		if s.progress != nil {
			s.progress(Progress{
				Depth:   depth,
				Score:   score,
				Move:    s.bestMove,
				Nodes:   s.nodes,
				Elapsed: elapsed,
			})
		}

		// A proven mate within the horizon cannot be improved on.
		if IsMateScore(score) && MatePly(score) <= depth {
			break
		}
	}

	if lastCompleted != rules.NullMove {
		return lastCompleted, true
	}
	if s.bestMove != rules.NullMove {
		return s.bestMove, true
	}
	return moves[0], true
}

// reset clears per-call state. The transposition table survives.
func (s *Searcher) reset(timeLimit time.Duration) {
	s.killers = [MaxPly][2]rules.Move{}
	s.history = [64][64]int32{}
	s.path = s.path[:0]
	s.nodes = 0
	s.bestMove = rules.NullMove
	s.bestScore = 0
	s.stopped = false
	s.start = time.Now()
	s.limit = timeLimit
}

func (s *Searcher) timeUp() bool {
	return time.Since(s.start) > s.limit
}

// onPath reports whether hash is already on the current search path.
func (s *Searcher) onPath(hash uint64) bool {
	for _, h := range s.path {
		if h == hash {
			return true
		}
	}
	return false
}

// search is the negamax recursion. Scores are from the perspective of
// the side to move at this node.
func (s *Searcher) search(pos *rules.Position, depth, ply, alpha, beta int) int {
	if s.timeUp() {
		s.stopped = true
		return 0
	}
	s.nodes++
	hash := pos.Zobrist()

	// Repetitions on the search path or in the game history are draws.
	if s.onPath(hash) || pos.IsRepetition(3) {
		return 0
	}

	var ttMove rules.Move
	if entry, found := s.tt.Probe(hash); found {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			score := int(entry.Score)
			switch entry.Bound {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}

	if pos.IsCheckmate() {
		return -(ImmediateMate - ply)
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		return 0
	}
	if depth == 0 {
		return s.quiescence(pos, alpha, beta)
	}

	s.path = append(s.path, hash)
	defer func() { s.path = s.path[:len(s.path)-1] }()

	// Null-move pruning: if passing the move still fails high, the
	// position is good enough to cut. Unsound in check and with only
	// pawns left (zugzwang), so skipped there.
	if depth >= 3 && !pos.InCheck() && pos.HasNonPawnMaterial() {
		reduction := 2
		if depth >= 6 {
			reduction = 3
		}
		pos.PushNull()
		val := -s.search(pos, depth-1-reduction, ply+1, -beta, -beta+1)
		pos.Pop()
		if val >= beta && !IsMateScore(val) {
			return beta
		}
	}

	moves := pos.LegalMoves()
	s.orderMoves(pos, moves, ttMove, ply)

	origAlpha := alpha
	isPV := beta-alpha > 1
	bestVal := NegInf
	bestMove := rules.NullMove

	for i, m := range moves {
		if s.timeUp() {
			s.stopped = true
			break
		}
		moveCount := i + 1
		givesCheck := pos.GivesCheck(m)
		isCapture := pos.IsCapture(m)
		promotion := rules.Promotion(m)
		refutation := (ttMove != rules.NullMove && m == ttMove) || s.isKiller(ply, m)
		historyScore := int(s.history[m.From()][m.To()])

		pos.Push(m)

		val := 0
		fullSearch := true
		if depth >= 3 && moveCount > 2+2*b2i(isPV) &&
			!pos.InCheck() && !isCapture && promotion == rules.NoPiece {
			r := lmrReduction(depth, moveCount)
			if !isPV {
				r++
			}
			if !givesCheck {
				r++
			}
			if refutation {
				r -= 2
			}
			r -= historyScore / 4000
			if r < 1 {
				r = 1
			}
			if r > depth-1 {
				r = depth - 1
			}
			val = -s.search(pos, depth-r, ply+1, -alpha-1, -alpha)
			// Re-search at full depth only if the reduced search beat
			// alpha and actually reduced.
			fullSearch = val > alpha && r > 1
		}

		if fullSearch {
			if isPV && (moveCount == 1 || val > alpha) {
				val = -s.search(pos, depth-1, ply+1, -beta, -alpha)
			} else {
				val = -s.search(pos, depth-1, ply+1, -alpha-1, -alpha)
				if isPV && alpha < val && val < beta {
					val = -s.search(pos, depth-1, ply+1, -beta, -alpha)
				}
			}
		}

		pos.Pop()

		if s.stopped {
			break
		}

		if val > bestVal {
			bestVal = val
			bestMove = m
			if ply == 0 {
				s.bestMove = m
			}
		}
		if val > alpha {
			alpha = val
		}
		if alpha >= beta {
			if !isCapture && promotion == rules.NoPiece {
				s.storeKiller(ply, m)
				s.history[m.From()][m.To()] += int32(depth * depth)
			}
			break
		}
	}

	if !s.stopped {
		bound := BoundExact
		if bestVal <= origAlpha {
			bound = BoundUpper
		} else if bestVal >= beta {
			bound = BoundLower
		}
		s.tt.Store(hash, bestVal, depth, bound, bestMove)
	}
	return bestVal
}

// quiescence extends the search through captures and promotions until
// the position is quiet, using the static evaluation as a stand-pat
// lower bound.
func (s *Searcher) quiescence(pos *rules.Position, alpha, beta int) int {
	if s.timeUp() {
		return Evaluate(pos)
	}
	s.nodes++

	standPat := Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	for _, m := range pos.LegalMoves() {
		if s.timeUp() {
			return standPat
		}
		if !pos.IsCapture(m) && rules.Promotion(m) == rules.NoPiece {
			continue
		}
		pos.Push(m)
		score := -s.quiescence(pos, -beta, -alpha)
		pos.Pop()

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// lmrReduction is the base late-move reduction before adjustments.
func lmrReduction(depth, moveCount int) int {
	if depth < 3 {
		return 0
	}
	return int(0.75 + math.Log(float64(depth))*math.Log(float64(moveCount))/2.25)
}

// orderMoves sorts moves by descending heuristic score, keeping the
// generator's order for ties.
func (s *Searcher) orderMoves(pos *rules.Position, moves []rules.Move, ttMove rules.Move, ply int) {
	slices.SortStableFunc(moves, func(a, b rules.Move) int {
		return s.moveScore(pos, b, ttMove, ply) - s.moveScore(pos, a, ttMove, ply)
	})
}

// moveScore ranks a move for ordering: hash move, then captures by
// MVV-LVA, promotions, killers and the history credit.
func (s *Searcher) moveScore(pos *rules.Position, m, ttMove rules.Move, ply int) int {
	if ttMove != rules.NullMove && m == ttMove {
		return hashMoveScore
	}
	score := 0
	if pos.IsCapture(m) {
		victim, _ := pos.PieceAt(int(m.To()))
		attacker, _ := pos.PieceAt(int(m.From()))
		// En passant leaves the target square empty; no victim bonus.
		if victim != rules.NoPiece && attacker != rules.NoPiece {
			score += captureBonus + 10*pieceValue[victim] - pieceValue[attacker]
		}
	}
	switch rules.Promotion(m) {
	case rules.NoPiece:
	case rules.Queen:
		score += queenPromotionBonus
	default:
		score += underPromotionBonus
	}
	if s.isKiller(ply, m) {
		score += killerBonus
	}
	score += int(s.history[m.From()][m.To()])
	return score
}

// storeKiller records a quiet cutoff move, keeping the two most recent
// per ply with the newest last.
func (s *Searcher) storeKiller(ply int, m rules.Move) {
	if ply >= MaxPly {
		return
	}
	k := &s.killers[ply]
	if k[0] == m || k[1] == m {
		return
	}
	k[0] = k[1]
	k[1] = m
}

func (s *Searcher) isKiller(ply int, m rules.Move) bool {
	if ply >= MaxPly || m == rules.NullMove {
		return false
	}
	return s.killers[ply][0] == m || s.killers[ply][1] == m
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
