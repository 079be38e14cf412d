package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"skirmish/book"
	"skirmish/rules"
)

// DefaultBookFile is probed for an opening book when a game starts.
const DefaultBookFile = "book.bin"

// gameClock is the time each side starts with in interactive games.
const gameClock = 3 * time.Minute

// Play starts an interactive game in the terminal: the user enters UCI
// moves, and the 'engine' command has the engine play the side to move,
// with its thinking time taken from that side's game clock.
func Play() {
	pos := rules.NewPosition()
	searcher := NewSearcher()
	reader := bufio.NewReader(os.Stdin)

	if b, err := book.Load(DefaultBookFile); err != nil {
		log.Infof("playing without opening book: %v", err)
	} else {
		searcher.SetBook(b)
		fmt.Printf("Opening book loaded (%d entries)\n", b.Size())
	}

	var lastDepth Progress
	searcher.SetProgress(func(p Progress) { lastDepth = p })

	l, err := NewLogger("game.log")
	if err != nil {
		fmt.Printf("Warning: Could not create logger: %v\n", err)
		l = nil
	} else {
		defer l.Close()
		l.LogGameStart(fmt.Sprintf("clock %s", gameClock))
		fmt.Println("Logging moves to game.log")
	}

	wtime, btime := gameClock, gameClock
	plies := 0

	fmt.Println("=== Interactive Mode ===")
	fmt.Println("Enter moves in UCI format (e.g., e2e4, e7e8q for promotion)")
	fmt.Println("Commands: 'quit', 'undo', 'fen', 'moves', 'engine'")
	fmt.Println()

	for {
		legalMoves := pos.LegalMoves()
		if len(legalMoves) == 0 {
			if pos.InCheck() {
				if pos.WhiteToMove() {
					fmt.Println("Checkmate! Black wins!")
				} else {
					fmt.Println("Checkmate! White wins!")
				}
			} else {
				fmt.Println("Stalemate! Draw!")
			}
			break
		}
		if pos.IsRepetition(3) {
			fmt.Println("Draw by repetition!")
			break
		}
		if pos.IsInsufficientMaterial() {
			fmt.Println("Draw by insufficient material!")
			break
		}

		if pos.InCheck() {
			fmt.Println("Check!")
		}

		side := "White"
		if !pos.WhiteToMove() {
			side = "Black"
		}
		fmt.Printf("%s to move (%s / %s): ", side, wtime.Round(time.Second), btime.Round(time.Second))

		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			break
		}
		input = strings.ToLower(strings.TrimSpace(input))

		switch input {
		case "quit", "q":
			fmt.Println("Goodbye!")
			return
		case "undo", "u":
			if plies > 0 {
				pos.Pop()
				plies--
				fmt.Println("Move undone.")
			} else {
				fmt.Println("No moves to undo.")
			}
			continue
		case "fen":
			fmt.Printf("FEN: %s\n", pos.Fen())
			continue
		case "moves":
			fmt.Println("Legal moves:")
			for _, m := range legalMoves {
				fmt.Printf("  %s\n", rules.UCI(m))
			}
			continue
		case "engine", "e":
			// Let the engine move for the side to play.
		default:
			move, ok := matchUCIMove(input, legalMoves)
			if !ok {
				fmt.Printf("Invalid move: %s\n", input)
				fmt.Println("Type 'moves' to see legal moves.")
				continue
			}
			pos.Push(move)
			plies++
			continue
		}

		fmt.Println("Engine thinking...")
		white := pos.WhiteToMove()
		limit := AllocateTime(
			int(wtime/time.Millisecond), int(btime/time.Millisecond),
			0, 0, white, 0)

		lastDepth = Progress{}
		start := time.Now()
		move, ok := searcher.FindMove(pos, DefaultDepth, limit)
		elapsed := time.Since(start)

		if white {
			wtime -= elapsed
		} else {
			btime -= elapsed
		}

		if !ok {
			fmt.Println("Engine has no move!")
			continue
		}

		source := "Search"
		scoreStr := fmt.Sprintf("%d cp", lastDepth.Score)
		if lastDepth.Depth == 0 {
			// No depth completed: a book hit or a forced move.
			source = "Book"
			scoreStr = "book"
		} else if IsMateScore(lastDepth.Score) {
			scoreStr = fmt.Sprintf("Mate in %d", MatePly(lastDepth.Score))
		}
		fmt.Printf("Engine plays: %s (%s, %s)\n", rules.UCI(move), scoreStr, elapsed.Round(10*time.Millisecond))

		if l != nil {
			l.Log(LogInfo{
				Timestamp: time.Now(),
				FEN:       pos.Fen(),
				Move:      rules.UCI(move),
				Source:    source,
				Score:     scoreStr,
				Depth:     lastDepth.Depth,
				Nodes:     searcher.Nodes(),
				Duration:  elapsed,
			})
		}

		pos.Push(move)
		plies++
		fmt.Println()
	}
}

// matchUCIMove finds the entered move among the legal ones.
func matchUCIMove(uci string, legalMoves []rules.Move) (rules.Move, bool) {
	for _, m := range legalMoves {
		if rules.UCI(m) == uci {
			return m, true
		}
	}
	return rules.NullMove, false
}
