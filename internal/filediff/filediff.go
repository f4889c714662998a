// Package filediff compares files on disk without building a tree.
package filediff

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"dirmerge/internal/diff"
	"dirmerge/internal/model"

	"github.com/cespare/xxhash/v2"
)

const (
	bufferSize = 32 * 1024
	sniffSize  = 8000
)

func read(r model.Role, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.NotFoundError{Role: r, Kind: model.KindFile, Path: path, Err: err}
	}
	return data, nil
}

// Compare diffs the files at local and remote.
func Compare(opts diff.Options, local, remote string) (*diff.Result, error) {
	l, err := read(model.Local, local)
	if err != nil {
		return nil, err
	}
	r, err := read(model.Remote, remote)
	if err != nil {
		return nil, err
	}

	return diff.Compare(l, r, opts), nil
}

// Compare3 diffs local and remote against base. An empty base path stands
// for an empty base file.
func Compare3(opts diff.Options, base, local, remote string) (*diff.Result3, error) {
	var b []byte
	if base != "" {
		var err error
		if b, err = read(model.Base, base); err != nil {
			return nil, err
		}
	}
	l, err := read(model.Local, local)
	if err != nil {
		return nil, err
	}
	r, err := read(model.Remote, remote)
	if err != nil {
		return nil, err
	}

	return diff.Compare3(b, l, r, opts), nil
}

// IsBinary reports whether the file holds a NUL byte near its start.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// Hash returns the xxHash of the file content.
func Hash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, bufferSize)); err != nil {
		return 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return h.Sum64(), nil
}
