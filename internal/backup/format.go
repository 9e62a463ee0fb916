// Package backup snapshots the cache's queue entries and edges to a
// compressed file and restores them, for disaster recovery of the
// Redis-backed state if it is ever flushed (spec §4.4 cache is the sole
// source of truth for in-flight matching state).
package backup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roomie-match/matchcore/internal/domain"
)

// FormatVersion is the only snapshot format this package writes or reads.
const FormatVersion = 1

// MaxDecompressedSize bounds a restored snapshot's in-memory size.
const MaxDecompressedSize = 200 * 1024 * 1024

// Snapshot is the full payload of a backup file: every live QueueEntry
// and Edge at the moment it was taken.
type Snapshot struct {
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
	Queue     []domain.QueueEntry `json:"queue"`
	Edges     []domain.Edge       `json:"edges"`
}

// Header is the plain-text first line of a snapshot file.
type Header struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	Checksum   string    `json:"checksum"`
	QueueCount int       `json:"queue_count"`
	EdgeCount  int       `json:"edge_count"`
}

// Write writes snap as a header line followed by a gzip-compressed,
// checksummed payload.
func Write(path string, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("backup: marshal payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.DefaultCompression)
	if err != nil {
		return fmt.Errorf("backup: gzip writer: %w", err)
	}
	if _, err := gzw.Write(payload); err != nil {
		return fmt.Errorf("backup: compress payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("backup: close gzip writer: %w", err)
	}

	hash := sha256.Sum256(compressed.Bytes())
	header := Header{
		Version:    FormatVersion,
		CreatedAt:  snap.CreatedAt,
		Checksum:   "sha256:" + hex.EncodeToString(hash[:]),
		QueueCount: len(snap.Queue),
		EdgeCount:  len(snap.Edges),
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("backup: marshal header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("backup: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("backup: create file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(headerBytes); err != nil {
		return fmt.Errorf("backup: write header: %w", err)
	}
	if _, err := f.Write([]byte("\n")); err != nil {
		return fmt.Errorf("backup: write header newline: %w", err)
	}
	if _, err := f.Write(compressed.Bytes()); err != nil {
		return fmt.Errorf("backup: write payload: %w", err)
	}
	return nil
}

// Read reads a snapshot file, verifying its checksum before decompressing.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backup: open file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	headerLine, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("backup: read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(headerLine), &header); err != nil {
		return nil, fmt.Errorf("backup: parse header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("backup: expected version %d, got %d", FormatVersion, header.Version)
	}

	compressedData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("backup: read payload: %w", err)
	}

	hash := sha256.Sum256(compressedData)
	actualChecksum := "sha256:" + hex.EncodeToString(hash[:])
	if actualChecksum != header.Checksum {
		return nil, fmt.Errorf("backup: checksum mismatch: expected %s, got %s", header.Checksum, actualChecksum)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, fmt.Errorf("backup: gzip reader: %w", err)
	}
	defer gzr.Close()

	limited := io.LimitReader(gzr, MaxDecompressedSize+1)
	decompressed, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("backup: decompress payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return nil, fmt.Errorf("backup: decompressed payload exceeds %d bytes", MaxDecompressedSize)
	}

	var snap Snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return nil, fmt.Errorf("backup: parse payload: %w", err)
	}
	return &snap, nil
}

// ReadHeader reads only the header line without decompressing the payload.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backup: open file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	headerLine, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("backup: read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(headerLine), &header); err != nil {
		return nil, fmt.Errorf("backup: parse header: %w", err)
	}
	return &header, nil
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, "roomie-match-backup-") && strings.HasSuffix(name, ".json.gz")
}
