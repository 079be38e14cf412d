package engine

import "time"

// Emergency buffer to keep a clock-driven game from flagging on I/O
// overhead (in ms).
const emergencyBuffer = 200

// AllocateTime calculates how much wall-clock time to spend on a move
// in a clock-driven game. wtime/btime/winc/binc are in milliseconds;
// movestogo is 0 when the time control has no move counter.
func AllocateTime(wtime, btime, winc, binc int, isWhite bool, movestogo int) time.Duration {
	var myTime, myInc int
	if isWhite {
		myTime = wtime
		myInc = winc
	} else {
		myTime = btime
		myInc = binc
	}

	var allocated int

	if movestogo > 0 {
		allocated = myTime/movestogo + myInc*3/4
	} else {
		// Assume ~30 moves remaining.
		allocated = myTime/30 + myInc*3/4

		if allocated < 100 {
			allocated = 100
		}
		if allocated > myTime/3 {
			allocated = myTime / 3
		}
	}

	allocated -= emergencyBuffer
	if allocated < 50 {
		allocated = 50 // Absolute minimum
	}

	return time.Duration(allocated) * time.Millisecond
}
