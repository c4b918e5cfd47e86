// Package logreader provides access to the Arena Player.log file: line
// reading with lenient decoding, platform log discovery, match discovery,
// and incremental tailing for the live monitor.
package logreader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// LogEntry represents one line from the Player.log file. The log mixes JSON
// events with plain text timestamps and metadata.
type LogEntry struct {
	Raw       string                 // the original line, undecodable bytes dropped
	Timestamp string                 // extracted prefix before the JSON payload, if any
	JSON      map[string]interface{} // parsed payload when the line carries valid JSON
	IsJSON    bool
}

// Reader reads and parses Player.log files sequentially.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewReader opens the log file for reading.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Reader{
		file:    file,
		scanner: NewLineScanner(file),
	}, nil
}

// NewLineScanner wraps a reader in a line scanner sized for Player.log;
// detailed game state lines exceed bufio's default token limit.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return scanner
}

// Close closes the underlying log file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadEntry reads the next entry. It returns io.EOF at end of file.
func (r *Reader) ReadEntry() (*LogEntry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan log file: %w", err)
		}
		return nil, io.EOF
	}

	entry := &LogEntry{
		Raw: strings.ToValidUTF8(r.scanner.Text(), ""),
	}
	entry.parseJSON()

	return entry, nil
}

// parseJSON extracts and parses the JSON payload of the line, if any.
// Lines commonly have the form "[UnityCrossThreadLogger]timestamp JSON".
func (e *LogEntry) parseJSON() {
	line := e.Raw

	jsonStart := strings.Index(line, "{")
	if jsonStart == -1 {
		jsonStart = strings.Index(line, "[")
	}
	if jsonStart == -1 {
		return
	}

	if jsonStart > 0 {
		e.Timestamp = strings.TrimSpace(line[:jsonStart])
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(line[jsonStart:]), &data); err == nil {
		e.JSON = data
		e.IsJSON = true
	}
}

// ReadAll reads every remaining entry.
func (r *Reader) ReadAll() ([]*LogEntry, error) {
	var entries []*LogEntry

	for {
		entry, err := r.ReadEntry()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// detailedLogProbeSize bounds how much of the file header is inspected for
// the detailed-logging banner.
const detailedLogProbeSize = 1000

// DetailedLoggingEnabled reports whether the client wrote the log with
// detailed logging (plugin support) turned on. Without it the log carries
// no game state and the parser cannot reconstruct anything.
func DetailedLoggingEnabled(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	head := make([]byte, detailedLogProbeSize)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read log file: %w", err)
	}

	return !strings.Contains(string(head[:n]), "DETAILED LOGS: DISABLED"), nil
}
