// Package archive writes and reads the gzip-compressed tar container used for
// .unitypackage files.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// GzipName is the file name recorded in the gzip header of every package
const GzipName = "archtemp.tar"

// ErrClosed is returned by writes after Close
var ErrClosed = errors.New("archive writer closed")

// epoch is the fixed modification time of every member
var epoch = time.Unix(0, 0)

// Level selects the gzip compression level
type Level string

const (
	LevelDefault Level = "default"
	LevelFastest Level = "fastest"
	LevelBest    Level = "best"
	LevelNone    Level = "none"
)

// ParseLevel validates a configured compression level
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LevelDefault, nil
	case LevelDefault, LevelFastest, LevelBest, LevelNone:
		return l, nil
	default:
		return "", fmt.Errorf("unknown compression level %q", s)
	}
}

func (l Level) gzipLevel() int {
	switch l {
	case LevelFastest:
		return gzip.BestSpeed
	case LevelBest:
		return gzip.BestCompression
	case LevelNone:
		return gzip.NoCompression
	default:
		return gzip.DefaultCompression
	}
}

// Writer appends members to a compressed tar stream. It is safe for use by
// multiple goroutines; member writes are serialized.
type Writer struct {
	mu      sync.Mutex
	gz      *gzip.Writer
	tw      *tar.Writer
	closed  bool
	members int
}

// NewWriter wraps w in a gzip-compressed tar writer
func NewWriter(w io.Writer, level Level) (*Writer, error) {
	gz, err := gzip.NewWriterLevel(w, level.gzipLevel())
	if err != nil {
		return nil, fmt.Errorf("create gzip writer: %w", err)
	}
	gz.Name = GzipName

	return &Writer{
		gz: gz,
		tw: tar.NewWriter(gz),
	}, nil
}

func header(name string, size int64) *tar.Header {
	return &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  epoch,
		Typeflag: tar.TypeReg,
	}
}

// WriteMember writes one regular-file member with the given content
func (w *Writer) WriteMember(name string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.tw.WriteHeader(header(name, int64(len(data)))); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := w.tw.Write(data); err != nil {
		return fmt.Errorf("write member %s: %w", name, err)
	}
	w.members++
	return nil
}

// WriteFile streams the file at path into a member called name
func (w *Writer) WriteFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.tw.WriteHeader(header(name, info.Size())); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	n, err := io.Copy(w.tw, f)
	if err != nil {
		return fmt.Errorf("write member %s: %w", name, err)
	}
	if n != info.Size() {
		return fmt.Errorf("write member %s: file changed size while reading", name)
	}
	w.members++
	return nil
}

// Members returns the number of members written so far
func (w *Writer) Members() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.members
}

// Close flushes the tar and gzip trailers. It does not close the underlying writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.tw.Close(); err != nil {
		_ = w.gz.Close()
		return fmt.Errorf("close tar stream: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return nil
}
