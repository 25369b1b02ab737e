package storage

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// writeFrame writes an 8-byte big-endian length followed by data.
func writeFrame(w *gzip.Writer, data []byte) error {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return nil
}

// readFrame returns io.EOF only on a clean boundary.
func readFrame(r io.Reader, maxLen uint64) ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated frame header: %w", err)
		}
		return nil, err
	}
	l := binary.BigEndian.Uint64(lenBuf[:])
	if l > maxLen {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit %d", l, maxLen)
	}
	data := make([]byte, l)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("truncated frame: %w", err)
	}
	return data, nil
}
