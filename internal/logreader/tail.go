package logreader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Follower tails a log file, emitting new lines as the client appends
// them. It reacts to file system write events and additionally polls on an
// interval, which covers platforms where the client's buffered writes do
// not surface as distinct events. Log rotation (the file shrinking) resets
// the read position to the start.
type Follower struct {
	path     string
	interval time.Duration
	fromEnd  bool

	lines chan string
	pos   int64
}

// FollowerConfig holds configuration for a Follower.
type FollowerConfig struct {
	// Path is the log file to follow.
	Path string

	// Interval is the polling fallback cadence. Default: 2 seconds.
	Interval time.Duration

	// FromStart makes the follower replay the existing file contents
	// before waiting for new lines. Default is to start at the end.
	FromStart bool

	// BufferSize is the line channel capacity. Default: 100.
	BufferSize int
}

// NewFollower creates a follower for the given file.
func NewFollower(config FollowerConfig) (*Follower, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if config.Interval == 0 {
		config.Interval = 2 * time.Second
	}
	if config.BufferSize == 0 {
		config.BufferSize = 100
	}

	return &Follower{
		path:     config.Path,
		interval: config.Interval,
		fromEnd:  !config.FromStart,
		lines:    make(chan string, config.BufferSize),
	}, nil
}

// Lines returns the channel new lines are delivered on. It is closed when
// Run returns.
func (f *Follower) Lines() <-chan string {
	return f.lines
}

// Run follows the file until the context is canceled. It blocks; run it on
// its own goroutine.
func (f *Follower) Run(ctx context.Context) error {
	defer close(f.lines)

	if f.fromEnd {
		info, err := os.Stat(f.path)
		if err != nil {
			return fmt.Errorf("stat log file: %w", err)
		}
		f.pos = info.Size()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		return fmt.Errorf("watch log file: %w", err)
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// Drain whatever is already pending when starting from the beginning.
	if err := f.drain(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-watcher.Events:
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := f.drain(ctx); err != nil {
					return err
				}
			}

		case err := <-watcher.Errors:
			return fmt.Errorf("file watcher: %w", err)

		case <-ticker.C:
			if err := f.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain reads all complete lines appended since the last position.
func (f *Follower) drain(ctx context.Context) error {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < f.pos {
		// Rotated or truncated; start over.
		f.pos = 0
	}

	if _, err := file.Seek(f.pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	// Only complete lines are emitted; a partially written final line stays
	// unconsumed so the next drain picks it up whole.
	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}

		f.pos += int64(len(line))
		text := strings.ToValidUTF8(strings.TrimRight(line, "\r\n"), "")

		select {
		case f.lines <- text:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
