package engine

import (
	"log/slog"
	"os"
	"path/filepath"
)

// SweepArtifacts deletes files in dir matching pattern and returns how many were removed.
// Failures on individual files are logged and skipped.
func SweepArtifacts(dir, pattern string) int {
	if pattern == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		slog.Debug("sweep: bad pattern", slog.String("pattern", pattern), slog.Any("error", err))
		return 0
	}
	removed := 0
	for _, path := range matches {
		if info, err := os.Lstat(path); err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Debug("sweep: remove failed", slog.String("path", path), slog.Any("error", err))
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.ArtifactsSwept.Add(int64(removed))
		slog.Info("sweep: removed stray artifacts", slog.Int("count", removed), slog.String("dir", dir))
	}
	return removed
}
