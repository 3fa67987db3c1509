package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Member is one decoded archive entry
type Member struct {
	Name string
	Data []byte
}

// Reader iterates the members of a package
type Reader struct {
	gz *gzip.Reader
	tr *tar.Reader
}

// NewReader opens a gzip-compressed tar stream
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &Reader{gz: gz, tr: tar.NewReader(gz)}, nil
}

// GzipName returns the name stored in the gzip header
func (r *Reader) GzipName() string {
	return r.gz.Name
}

// Next returns the next member, or io.EOF after the last one
func (r *Reader) Next() (*Member, error) {
	for {
		hdr, err := r.tr.Next()
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(r.tr)
		if err != nil {
			return nil, fmt.Errorf("read member %s: %w", hdr.Name, err)
		}
		return &Member{Name: hdr.Name, Data: data}, nil
	}
}

// Close releases the gzip reader
func (r *Reader) Close() error {
	return r.gz.Close()
}

// ReadAll decodes every member of the stream in archive order
func ReadAll(r io.Reader) ([]Member, error) {
	ar, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	var members []Member
	for {
		m, err := ar.Next()
		if errors.Is(err, io.EOF) {
			return members, nil
		}
		if err != nil {
			return members, err
		}
		members = append(members, *m)
	}
}
