package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Snapshot codecs.
const (
	codecLZ4 = "lz4"
	codecRaw = "raw"
)

// ErrSnapshotNotFound is returned by LoadSnapshot for an unknown name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SaveSnapshot stores blob under name, replacing any previous snapshot of
// that name. seq is the engine clock position the blob was taken at.
//
// Blobs are LZ4 block-compressed; input LZ4 cannot shrink is stored as is.
func (s *Store) SaveSnapshot(ctx context.Context, name string, seq int64, blob []byte) error {
	data, codec := compressBlob(blob)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, seq, codec, raw_size, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			seq = excluded.seq,
			codec = excluded.codec,
			raw_size = excluded.raw_size,
			data = excluded.data
	`, name, seq, codec, len(blob), data)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	return nil
}

// LoadSnapshot returns the blob and seq stored under name.
// Returns ErrSnapshotNotFound if there is none.
func (s *Store) LoadSnapshot(ctx context.Context, name string) ([]byte, int64, error) {
	var (
		seq     int64
		codec   string
		rawSize int
		data    []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, codec, raw_size, data FROM snapshots WHERE name = ?
	`, name).Scan(&seq, &codec, &rawSize, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("load snapshot %q: %w", name, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot %q: %w", name, err)
	}

	blob, err := decompressBlob(codec, data, rawSize)
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return blob, seq, nil
}

// ListSnapshots returns the stored snapshot names in name order.
func (s *Store) ListSnapshots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM snapshots ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return names, nil
}

func compressBlob(blob []byte) ([]byte, string) {
	compressed := make([]byte, lz4.CompressBlockBound(len(blob)))
	written, err := lz4.CompressBlock(blob, compressed, nil)
	if err != nil || written == 0 || written >= len(blob) {
		return append([]byte{}, blob...), codecRaw
	}
	return compressed[:written], codecLZ4
}

func decompressBlob(codec string, data []byte, rawSize int) ([]byte, error) {
	switch codec {
	case codecRaw:
		return data, nil
	case codecLZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		if n != rawSize {
			return nil, fmt.Errorf("decompress: got %d bytes, expected %d", n, rawSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}
