package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"tavern/internal/models"
)

const maxExportFrame = 1 << 20

// ExportRoom compresses a room's messages newer than since into a gzip
// stream of length-prefixed JSON frames. It also returns the timestamp
// of the last exported message so the next export can resume from it.
func (s *Store) ExportRoom(ctx context.Context, roomJID string, since time.Time, limit int) (payload []byte, last time.Time, err error) {
	msgs, err := s.MessagesSince(ctx, roomJID, since, limit)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(msgs) == 0 {
		return nil, since, nil
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			_ = gw.Close()
			return nil, time.Time{}, err
		}
		if err := writeFrame(gw, data); err != nil {
			_ = gw.Close()
			return nil, time.Time{}, err
		}
		last = m.Timestamp
	}
	if err := gw.Close(); err != nil {
		return nil, time.Time{}, err
	}
	return buf.Bytes(), last, nil
}

// ReadExport decodes a payload produced by ExportRoom.
func ReadExport(payload []byte) ([]models.StoredMessage, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	gr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer gr.Close()

	var out []models.StoredMessage
	for {
		data, err := readFrame(gr, maxExportFrame)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var m models.StoredMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		out = append(out, m)
	}
}
