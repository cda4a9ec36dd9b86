// Package eventlog reads and writes the user-facing activity log, one line per
// event in the form "<timestamp> + <message>".
package eventlog

import (
	"bufio"
	"context"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hpcloud/tail"

	"github.com/grovetools/idler/errors"
)

// FileName is the log file inside the app log directory.
const FileName = "log.txt"

// TimestampFormat is used for new entries.
const TimestampFormat = "2006-01-02 15:04:05"

const separator = " + "

// Entry is one parsed log line.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// IsError reports whether the entry describes a failure.
func (e Entry) IsError() bool {
	return strings.Contains(e.Message, "Error")
}

// Path returns the log file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

var appendMu sync.Mutex

// Append writes one entry stamped with now to the log file inside dir.
func Append(dir string, now time.Time, message string) error {
	appendMu.Lock()
	defer appendMu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "create log directory").WithDetail("dir", dir)
	}
	f, err := os.OpenFile(Path(dir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "open event log").WithDetail("path", Path(dir))
	}
	defer f.Close()

	line := now.Format(TimestampFormat) + separator + strings.ReplaceAll(message, "\n", " ") + "\n"
	if _, err := f.WriteString(line); err != nil {
		return errors.Wrap(err, errors.ErrCodeStateIO, "write event log").WithDetail("path", Path(dir))
	}
	return nil
}

// ParseLine splits a raw line. ok is false for blank lines.
func ParseLine(line string) (Entry, bool) {
	if strings.TrimSpace(line) == "" {
		return Entry{}, false
	}
	ts, msg, found := strings.Cut(line, separator)
	if !found {
		return Entry{Message: line}, true
	}
	return Entry{Timestamp: ts, Message: msg}, true
}

// Parse reads every entry from r.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if e, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanner.Err()
}

// Read returns every entry in the log file inside dir. A missing file has no
// entries.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Follow streams entries from the log file inside dir, starting at the
// beginning when fromStart is set and at the end otherwise. The channel is
// closed when ctx is done.
func Follow(ctx context.Context, dir string, fromStart bool) (<-chan Entry, error) {
	whence := io.SeekEnd
	if fromStart {
		whence = io.SeekStart
	}

	t, err := tail.TailFile(Path(dir), tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Entry)
	go func() {
		defer close(out)
		defer t.Cleanup()
		defer t.Stop() //nolint:errcheck

		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-t.Lines:
				if !ok {
					return
				}
				if line.Err != nil {
					continue
				}
				e, ok := ParseLine(line.Text)
				if !ok {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
