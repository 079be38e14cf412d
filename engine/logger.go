package engine

import (
	"fmt"
	"os"
	"time"
)

// LogInfo contains the data points logged for one move of a game.
type LogInfo struct {
	Timestamp time.Time
	FEN       string
	Move      string
	Source    string // "Book" or "Search"
	Score     string // e.g. "30 cp", "Mate in 5"
	Depth     int
	Nodes     int64
	Duration  time.Duration
}

// Logger writes game logs to a file from a background goroutine so the
// engine never blocks on disk I/O.
type Logger struct {
	file  *os.File
	queue chan LogInfo
	done  chan bool
}

// NewLogger creates a logger appending to the given file.
func NewLogger(filename string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &Logger{
		file:  file,
		queue: make(chan LogInfo, 100), // Buffer up to 100 moves
		done:  make(chan bool),
	}

	go l.writer()

	return l, nil
}

// Log queues a log entry. Entries are dropped rather than blocking the
// engine when the queue is full.
func (l *Logger) Log(info LogInfo) {
	select {
	case l.queue <- info:
	default:
		fmt.Println("Warning: Log queue full, dropping entry")
	}
}

// LogGameStart writes a game separator line.
func (l *Logger) LogGameStart(params string) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("\n=== NEW GAME STARTED === %s | %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		params,
	)
	l.file.WriteString(line)
}

// Close flushes pending entries and closes the file.
func (l *Logger) Close() {
	close(l.queue)
	<-l.done // Wait for writer to finish
	l.file.Close()
}

// writer is the background goroutine that writes to the file.
func (l *Logger) writer() {
	for info := range l.queue {
		sourcePrefix := "S"
		if info.Source == "Book" {
			sourcePrefix = "B"
		}

		line := fmt.Sprintf("%s | M/%s: %-5s | Sc: %-8s | D: %d | Ns: %-8d | T: %-8s | FEN: %s\n",
			info.Timestamp.Format("01-02 15:04:05"),
			sourcePrefix,
			info.Move,
			info.Score,
			info.Depth,
			info.Nodes,
			info.Duration.Round(10*time.Millisecond),
			info.FEN,
		)
		l.file.WriteString(line)
	}
	l.done <- true
}
