package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/roomie-match/matchcore/internal/cache"
	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/pathutil"
)

// collectSnapshot reads every QueueEntry and Edge currently in the cache.
func collectSnapshot(ctx context.Context, c cache.Client, now time.Time) (*Snapshot, error) {
	queueKeys, err := c.Keys(ctx, domain.QueuePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("backup: list queue keys: %w", err)
	}
	queue, err := decodeValues[domain.QueueEntry](ctx, c, queueKeys)
	if err != nil {
		return nil, err
	}

	edgeKeys, err := c.Keys(ctx, domain.EdgePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("backup: list edge keys: %w", err)
	}
	edges, err := decodeValues[domain.Edge](ctx, c, edgeKeys)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Version:   FormatVersion,
		CreatedAt: now,
		Queue:     queue,
		Edges:     edges,
	}, nil
}

// Create snapshots the live cache state and writes it to outputPath. If
// allowedDirs is non-empty, outputPath is validated against them.
func Create(ctx context.Context, c cache.Client, outputPath string, now time.Time, allowedDirs ...string) (*Snapshot, error) {
	if len(allowedDirs) > 0 {
		if err := pathutil.ValidatePath(outputPath, allowedDirs); err != nil {
			return nil, fmt.Errorf("backup path rejected: %w", err)
		}
		if err := pathutil.ValidateBackupFilename(outputPath); err != nil {
			return nil, fmt.Errorf("backup path rejected: %w", err)
		}
	}

	snap, err := collectSnapshot(ctx, c, now)
	if err != nil {
		return nil, err
	}
	if err := Write(outputPath, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// RestoreResult summarizes what a Restore call wrote back to the cache.
type RestoreResult struct {
	QueueRestored int `json:"queue_restored"`
	EdgesRestored int `json:"edges_restored"`
}

// Restore reads the snapshot at inputPath and writes every entry back into
// the cache, overwriting whatever is currently there for those keys. If
// allowedDirs is non-empty, inputPath is validated against them.
func Restore(ctx context.Context, c cache.Client, inputPath string, allowedDirs ...string) (*RestoreResult, error) {
	if len(allowedDirs) > 0 {
		if err := pathutil.ValidatePath(inputPath, allowedDirs); err != nil {
			return nil, fmt.Errorf("restore path rejected: %w", err)
		}
	}

	snap, err := Read(inputPath)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	for _, e := range snap.Queue {
		if err := encodeAndSet(ctx, c, domain.QueueKey(e.UserID), e); err != nil {
			return nil, fmt.Errorf("backup: restore queue entry %s: %w", e.UserID, err)
		}
		result.QueueRestored++
	}
	for _, e := range snap.Edges {
		a, b := e.Endpoints()
		if err := encodeAndSet(ctx, c, domain.EdgeKey(a, b), e); err != nil {
			return nil, fmt.Errorf("backup: restore edge %s-%s: %w", a, b, err)
		}
		result.EdgesRestored++
	}
	return result, nil
}

// GeneratePath creates a timestamped snapshot filename in dir.
func GeneratePath(dir string) string {
	ts := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("roomie-match-backup-%s.json.gz", ts))
}

// DefaultBackupDir returns the default snapshot directory under the
// operator's home (~/.roomie-match/backups/).
func DefaultBackupDir() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".roomie-match", "backups"), nil
}
