package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultLogFile = "wcolor_debug.log"
	maxSizeBytes   = 10 * 1024 * 1024 // 10 MB
	maxArchives    = 3
)

// Options selects where log output goes. With neither set, logs are
// discarded so stdout carries only the picked color.
type Options struct {
	Verbose bool   // mirror logs to stderr
	File    bool   // append to a size-rotated log file
	Path    string // log file path, DefaultLogFile when empty
}

// Setup configures the standard logger. The returned function closes the log
// file, if any.
func Setup(opts Options) (func() error, error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var writers []io.Writer
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}

	closeFn := func() error { return nil }
	var openErr error
	if opts.File {
		path := opts.Path
		if path == "" {
			path = DefaultLogFile
		}
		if rw, err := openRotating(path, maxSizeBytes); err != nil {
			openErr = fmt.Errorf("open log file: %w", err)
		} else {
			writers = append(writers, rw)
			closeFn = rw.Close
		}
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return closeFn, openErr
}

// rotatingWriter rotates path to path.1 .. path.N once it would grow past max.
type rotatingWriter struct {
	mu   sync.Mutex
	path string
	max  int64
	f    *os.File
}

func openRotating(path string, max int64) (*rotatingWriter, error) {
	rotateIfNeeded(path, max)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{path: path, max: max, f: f}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.max {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func rotateIfNeeded(path string, max int64) {
	if st, err := os.Stat(path); err == nil && st.Size() > max {
		rotate(path)
	}
}

// rotate shifts path.1 .. path.N up by one, dropping the oldest, and moves
// path to path.1.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.%d", filepath.Base(path), n))
}
