package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry records one committed watchlist mutation.
type Entry struct {
	ID        string            `json:"id"`
	Time      time.Time         `json:"time"`
	Op        string            `json:"op"`
	Args      map[string]string `json:"args,omitempty"`
	Result    string            `json:"result,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Recorder accepts journal entries. Implementations must not block callers.
type Recorder interface {
	Record(e Entry) error
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(Entry) error { return nil }

// Writer appends entries as JSON lines to date-organized files:
// baseDir/2006-01-02/journal.jsonl, rotated by size.
type Writer struct {
	baseDir     string
	maxSizeMB   int
	writeCh     chan Entry
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
	currentDate string
	logger      *lumberjack.Logger
	mu          sync.Mutex
	now         func() time.Time
}

// NewWriter starts the background writer goroutine.
func NewWriter(baseDir string, bufferSize, maxSizeMB int) *Writer {
	if bufferSize < 1 {
		bufferSize = 1
	}
	w := &Writer{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan Entry, bufferSize),
		done:      make(chan struct{}),
		now:       time.Now,
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Record queues e. ID and Time are filled in when empty. A full buffer drops
// the entry rather than block the request that produced it.
func (w *Writer) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = w.now().UTC()
	}
	select {
	case <-w.done:
		return fmt.Errorf("journal writer is closed")
	default:
	}
	select {
	case w.writeCh <- e:
		return nil
	default:
		slog.Warn("journal buffer full, dropping entry", "op", e.Op, "id", e.ID)
		return fmt.Errorf("journal buffer full")
	}
}

// Close stops the writer after flushing queued entries.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		case <-w.done:
			for {
				select {
				case e := <-w.writeCh:
					w.writeEntry(e)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) writeEntry(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("journal marshal failed", "error", err, "op", e.Op)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := e.Time.UTC().Format("2006-01-02")
	if date != w.currentDate || w.logger == nil {
		if err := w.rotateForDate(date); err != nil {
			slog.Error("journal rotate failed", "error", err, "date", date)
			return
		}
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("journal write failed", "error", err, "op", e.Op)
	}
}

func (w *Writer) rotateForDate(date string) error {
	if w.logger != nil {
		if err := w.logger.Close(); err != nil {
			slog.Debug("journal close previous file failed", "error", err)
		}
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := filepath.Join(dir, "journal.jsonl")
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
		Compress:   false,
		LocalTime:  false,
	}
	w.currentDate = date
	slog.Info("journal file opened", "file", filename)
	return nil
}
